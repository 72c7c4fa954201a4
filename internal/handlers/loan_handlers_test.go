package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maintitrack/internal/common"
	"maintitrack/internal/ledger"
	"maintitrack/internal/models"
	"maintitrack/internal/persistence"
)

type mockProofService struct {
	mock.Mock
}

func (m *mockProofService) UploadProof(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockProofService) ProofURL(objectName string) (string, error) {
	args := m.Called(objectName)
	return args.String(0), args.Error(1)
}

func (m *mockProofService) DeleteProof(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *mockProofService) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockProofService) Healthy(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

type memorySnapshotStore struct {
	state *persistence.State
}

func (m *memorySnapshotStore) Load(_ context.Context) (*persistence.State, error) {
	if m.state == nil {
		return &persistence.State{}, nil
	}
	return m.state, nil
}

func (m *memorySnapshotStore) Save(_ context.Context, state *persistence.State) error {
	m.state = state
	return nil
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(&memorySnapshotStore{}, nil)
	require.NoError(t, l.Restore(context.Background()))
	return l
}

func newJSONContext(e *echo.Echo, method, target, body, operator string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if operator != "" {
		req = req.WithContext(context.WithValue(req.Context(), common.OperatorKey, operator))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedItemID(t *testing.T, l *ledger.Ledger) string {
	t.Helper()
	items := l.Items()
	require.NotEmpty(t, items)
	return items[0].ID.String()
}

func TestBorrowRejectedWithoutProofImage(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	body := `{"item_id":"` + seedItemID(t, l) + `","quantity":1,"borrower_name":"bob","acknowledged":true}`
	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans", body, "alice")

	require.NoError(t, h.Borrow(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "proof image")
	assert.Empty(t, l.Loans())
}

func TestBorrowRejectedWithoutAcknowledgement(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	body := `{"item_id":"` + seedItemID(t, l) + `","quantity":1,"borrower_name":"bob","proof_image":"proof-abc"}`
	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans", body, "alice")

	require.NoError(t, h.Borrow(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "acknowledge")
	assert.Empty(t, l.Loans())
}

func TestBorrowCreatesLoan(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	body := `{"item_id":"` + seedItemID(t, l) + `","quantity":2,"borrower_name":"bob","department":"Maintenance","proof_image":"proof-abc","acknowledged":true}`
	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans", body, "alice")

	require.NoError(t, h.Borrow(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var loan models.LoanRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, 2, loan.Quantity)
	assert.Equal(t, "bob", loan.BorrowerName)
	assert.Contains(t, loan.AcknowledgementToken, "bob-Signed-")
}

func TestBorrowInsufficientStockIsConflict(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	// The first seed item has 3 available.
	body := `{"item_id":"` + seedItemID(t, l) + `","quantity":99,"borrower_name":"bob","proof_image":"proof-abc","acknowledged":true}`
	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans", body, "alice")

	require.NoError(t, h.Borrow(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_STOCK")
}

func TestReturnSettlesLoan(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	items := l.Items()
	loan, err := l.Borrow(context.Background(), ledger.BorrowRequest{
		ItemID: items[0].ID, Quantity: 1, BorrowerName: "bob", Operator: "alice",
	})
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans/"+loan.ID.String()+"/return", `{"condition":"good","quantity":1,"proof_image":"proof-ret"}`, "alice")
	c.SetParamNames("id")
	c.SetParamValues(loan.ID.String())

	require.NoError(t, h.Return(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, l.Loans())
}

func TestReturnRejectedWithoutProofImage(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	items := l.Items()
	loan, err := l.Borrow(context.Background(), ledger.BorrowRequest{
		ItemID: items[0].ID, Quantity: 1, BorrowerName: "bob", Operator: "alice",
	})
	require.NoError(t, err)

	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans/"+loan.ID.String()+"/return", `{"condition":"GOOD","quantity":1}`, "alice")
	c.SetParamNames("id")
	c.SetParamValues(loan.ID.String())

	require.NoError(t, h.Return(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "proof image")

	// The loan is untouched and the return was not logged.
	require.Len(t, l.Loans(), 1)
	assert.Equal(t, 1, l.Loans()[0].Quantity)
	for _, entry := range l.History() {
		assert.NotEqual(t, models.TxReturn, entry.Type)
	}
}

func TestDeleteProofRemovesStoredImage(t *testing.T) {
	e := echo.New()
	proofs := new(mockProofService)
	proofs.On("DeleteProof", mock.Anything, "proof-abc").Return(nil)
	h := NewLoanHandlers(newTestLedger(t), proofs)

	req := httptest.NewRequest(http.MethodDelete, "/v1/proofs/proof-abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("object")
	c.SetParamValues("proof-abc")

	require.NoError(t, h.DeleteProof(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	proofs.AssertExpectations(t)
}

func TestBorrowWithoutOperatorIsUnauthorized(t *testing.T) {
	e := echo.New()
	l := newTestLedger(t)
	h := NewLoanHandlers(l, nil)

	body := `{"item_id":"` + seedItemID(t, l) + `","quantity":1,"borrower_name":"bob","proof_image":"proof-abc","acknowledged":true}`
	c, rec := newJSONContext(e, http.MethodPost, "/v1/loans", body, "")

	require.NoError(t, h.Borrow(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
