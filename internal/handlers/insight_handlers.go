package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"maintitrack/internal/services"
)

// InsightHandlers handles AI insight HTTP requests
type InsightHandlers struct {
	insights services.InsightService
}

// NewInsightHandlers creates a new insight handlers instance
func NewInsightHandlers(insights services.InsightService) *InsightHandlers {
	return &InsightHandlers{insights: insights}
}

// GetInsights returns the current insight report, cached or freshly generated.
// This endpoint never fails; collaborator outages serve the fallback report.
func (h *InsightHandlers) GetInsights(c echo.Context) error {
	return c.JSON(http.StatusOK, h.insights.Report(c.Request().Context()))
}

// RefreshInsights forces regeneration from a fresh ledger snapshot.
func (h *InsightHandlers) RefreshInsights(c echo.Context) error {
	return c.JSON(http.StatusOK, h.insights.Refresh(c.Request().Context()))
}
