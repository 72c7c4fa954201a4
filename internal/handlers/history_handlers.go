package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"maintitrack/internal/ledger"
	"maintitrack/internal/models"
)

// HistoryHandlers handles transaction log HTTP requests
type HistoryHandlers struct {
	ledger *ledger.Ledger
}

// NewHistoryHandlers creates a new history handlers instance
func NewHistoryHandlers(l *ledger.Ledger) *HistoryHandlers {
	return &HistoryHandlers{ledger: l}
}

// ListHistoryRequest represents query parameters for listing the log
type ListHistoryRequest struct {
	Type  string `query:"type"`
	Limit int    `query:"limit"`
}

// ListHistory returns the transaction log, newest first.
func (h *HistoryHandlers) ListHistory(c echo.Context) error {
	var req ListHistoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	history := h.ledger.History()
	if req.Type != "" {
		filtered := make([]*models.TransactionLog, 0, len(history))
		for _, entry := range history {
			if entry.Type == req.Type {
				filtered = append(filtered, entry)
			}
		}
		history = filtered
	}
	if req.Limit > 0 && req.Limit < len(history) {
		history = history[:req.Limit]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"history": history})
}

// ListIncidents returns only the returns flagged PARTIAL, DAMAGED, or LOST.
func (h *HistoryHandlers) ListIncidents(c echo.Context) error {
	incidents := make([]*models.TransactionLog, 0)
	for _, entry := range h.ledger.History() {
		if entry.Type == models.TxReturn && models.IncidentCondition(entry.Condition) {
			incidents = append(incidents, entry)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"incidents": incidents})
}

var csvHeader = []string{"timestamp", "type", "item", "quantity", "user", "operator", "condition", "notes"}

// ExportCSV streams the full transaction log as a CSV download.
func (h *HistoryHandlers) ExportCSV(c echo.Context) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}
	for _, entry := range h.ledger.History() {
		record := []string{
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.Type,
			entry.ItemName,
			strconv.Itoa(entry.Quantity),
			entry.User,
			entry.Operator,
			entry.Condition,
			entry.Notes,
		}
		if err := w.Write(record); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}

	filename := fmt.Sprintf("transaction-log-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
