package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"maintitrack/internal/common"
	"maintitrack/internal/ledger"
	"maintitrack/internal/models"
	"maintitrack/internal/services"
)

// LoanHandlers handles loan-related HTTP requests
type LoanHandlers struct {
	ledger *ledger.Ledger
	proofs services.ProofService
}

// NewLoanHandlers creates a new loan handlers instance
func NewLoanHandlers(l *ledger.Ledger, proofs services.ProofService) *LoanHandlers {
	return &LoanHandlers{ledger: l, proofs: proofs}
}

// ListLoansRequest represents query parameters for listing loans
type ListLoansRequest struct {
	Overdue bool `query:"overdue"`
}

// ListLoans returns the active loan registry, optionally only overdue loans.
func (h *LoanHandlers) ListLoans(c echo.Context) error {
	var req ListLoansRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	loans := h.ledger.Loans()
	if req.Overdue {
		now := time.Now()
		overdue := make([]*models.LoanRecord, 0, len(loans))
		for _, loan := range loans {
			if loan.Overdue(now) {
				overdue = append(overdue, loan)
			}
		}
		loans = overdue
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"loans": loans})
}

// BorrowRequest represents the checkout payload
type BorrowRequest struct {
	ItemID             string `json:"item_id" validate:"required"`
	Quantity           int    `json:"quantity" validate:"required"`
	BorrowerName       string `json:"borrower_name" validate:"required"`
	Department         string `json:"department"`
	ExpectedReturnDate string `json:"expected_return_date"`
	ProofImage         string `json:"proof_image"`
	Acknowledged       bool   `json:"acknowledged"`
}

// Borrow checks units out. A stored proof image and the borrower's explicit
// acknowledgement are both required before the checkout reaches the ledger.
func (h *LoanHandlers) Borrow(c echo.Context) error {
	ctx := c.Request().Context()

	var req BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.ProofImage == "" {
		return common.SendValidationError(c, "a proof image is required to borrow equipment")
	}
	if !req.Acknowledged {
		return common.SendValidationError(c, "the borrower must acknowledge responsibility for the equipment")
	}

	itemID, err := common.ValidateUUID(req.ItemID, "item_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var expectedReturn time.Time
	if req.ExpectedReturnDate != "" {
		expectedReturn, err = time.Parse(time.RFC3339, req.ExpectedReturnDate)
		if err != nil {
			return common.SendValidationError(c, "expected_return_date must be RFC 3339")
		}
	}

	operator, ok := common.GetOperatorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	loan, err := h.ledger.Borrow(ctx, ledger.BorrowRequest{
		ItemID:             itemID,
		Quantity:           req.Quantity,
		BorrowerName:       strings.TrimSpace(req.BorrowerName),
		Department:         strings.TrimSpace(req.Department),
		ExpectedReturnDate: expectedReturn,
		ProofImage:         req.ProofImage,
		Operator:           operator,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, loan)
}

// ReturnRequest represents the return payload
type ReturnRequest struct {
	Condition  string `json:"condition" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required"`
	ProofImage string `json:"proof_image"`
}

// Return settles units of a loan with a condition assessment. Like Borrow, a
// stored proof image is required before the settlement reaches the ledger.
func (h *LoanHandlers) Return(c echo.Context) error {
	ctx := c.Request().Context()

	loanID, err := common.ValidateUUID(c.Param("id"), "loan id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.ProofImage == "" {
		return common.SendValidationError(c, "a return proof image is required to process a return")
	}

	operator, ok := common.GetOperatorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.ledger.Return(ctx, loanID, strings.ToUpper(req.Condition), req.Quantity, req.ProofImage, operator); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadProof stores a proof-of-condition photo and returns its object name
// for use in a subsequent borrow or return request.
func (h *LoanHandlers) UploadProof(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("proof")
	if err != nil {
		return common.SendValidationError(c, "a proof file is required")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	objectName, err := h.proofs.UploadProof(ctx, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store proof image")
	}

	return c.JSON(http.StatusCreated, map[string]string{"proof_image": objectName})
}

// DeleteProof removes a stored proof image, for retakes before the borrow or
// return is submitted.
func (h *LoanHandlers) DeleteProof(c echo.Context) error {
	objectName := c.Param("object")
	if objectName == "" {
		return common.SendValidationError(c, "object name is required")
	}

	if err := h.proofs.DeleteProof(c.Request().Context(), objectName); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete proof image")
	}
	return c.NoContent(http.StatusNoContent)
}

// ProofURL hands out a short-lived URL for viewing a stored proof image.
func (h *LoanHandlers) ProofURL(c echo.Context) error {
	objectName := c.Param("object")
	if objectName == "" {
		return common.SendValidationError(c, "object name is required")
	}

	url, err := h.proofs.ProofURL(objectName)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate proof URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
