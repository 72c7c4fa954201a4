package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintitrack/internal/ledger"
	"maintitrack/internal/models"
)

func TestExportCSVContainsLogEntries(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewHistoryHandlers(l)

	_, err := l.Receive(context.Background(), ledger.ReceiveRequest{
		SKU: "TOL-050", Name: "Torque Wrench", Category: "Tools", Quantity: 5, Operator: "alice",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/history/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ExportCSV(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "transaction-log-")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2) // header plus the receive entry
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, models.TxReceive, records[1][1])
	assert.Equal(t, "Torque Wrench", records[1][2])
	assert.Equal(t, "5", records[1][3])
}

func TestListIncidentsFiltersConditions(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewHistoryHandlers(l)

	ctx := context.Background()
	items := l.Items()
	loan, err := l.Borrow(ctx, ledger.BorrowRequest{ItemID: items[0].ID, Quantity: 2, BorrowerName: "bob", Operator: "alice"})
	require.NoError(t, err)
	require.NoError(t, l.Return(ctx, loan.ID, models.ConditionDamaged, 1, "", "alice"))
	require.NoError(t, l.Return(ctx, loan.ID, models.ConditionGood, 1, "", "alice"))

	req := httptest.NewRequest(http.MethodGet, "/v1/history/incidents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListIncidents(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, models.ConditionDamaged)
	assert.NotContains(t, body, `"condition":"GOOD"`)
}
