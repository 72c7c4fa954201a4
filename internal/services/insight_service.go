package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"maintitrack/internal/models"
	"maintitrack/internal/persistence"
	"maintitrack/pkg/clients/anthropic"
)

const insightCacheTTL = 30 * time.Minute

// Snapshotter provides the current ledger state for analysis.
type Snapshotter interface {
	Snapshot() *persistence.State
}

// InsightService produces AI-generated inventory analysis. Any failure of the
// text-generation collaborator degrades to a fixed fallback report; the
// dashboard never surfaces an error for it.
type InsightService interface {
	Report(ctx context.Context) *models.InsightReport
	Refresh(ctx context.Context) *models.InsightReport
}

type insightService struct {
	ledger Snapshotter
	client anthropic.Client
	cache  persistence.InsightCache
	logger *zap.Logger
}

// NewInsightService wires the insight pipeline. A nil client means no API key
// was configured; the service then always serves the fallback report.
func NewInsightService(ledger Snapshotter, client anthropic.Client, cache persistence.InsightCache, logger *zap.Logger) InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &insightService{ledger: ledger, client: client, cache: cache, logger: logger}
}

// Report serves the cached insight when one exists, refreshing otherwise.
func (s *insightService) Report(ctx context.Context) *models.InsightReport {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("insight cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached
		}
	}
	return s.Refresh(ctx)
}

// Refresh regenerates the insight from a fresh ledger snapshot and caches the
// result. Fallback reports are not cached so the next request retries.
func (s *insightService) Refresh(ctx context.Context) *models.InsightReport {
	if s.client == nil {
		return models.FallbackInsightReport()
	}

	snapshot := s.ledger.Snapshot()
	payload := buildAnalysisPayload(snapshot)

	insight, err := s.client.AnalyzeInventory(ctx, payload)
	if err != nil {
		s.logger.Warn("inventory analysis failed, serving fallback", zap.Error(err))
		return models.FallbackInsightReport()
	}

	report := &models.InsightReport{
		Summary:         insight.Summary,
		Alerts:          insight.Alerts,
		Recommendations: insight.Recommendations,
	}
	if report.Alerts == nil {
		report.Alerts = []string{}
	}
	if report.Recommendations == nil {
		report.Recommendations = []string{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, report, insightCacheTTL); err != nil {
			s.logger.Warn("insight cache write failed", zap.Error(err))
		}
	}
	return report
}

// analysisPayload is the compact snapshot sent to the model. History is
// truncated to recent entries to keep the prompt small.
type analysisPayload struct {
	Items   []analysisItem `json:"items"`
	Loans   []analysisLoan `json:"active_loans"`
	History []analysisTx   `json:"recent_history"`
}

type analysisItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

type analysisLoan struct {
	Item       string `json:"item"`
	Borrower   string `json:"borrower"`
	Department string `json:"department,omitempty"`
	Quantity   int    `json:"quantity"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date,omitempty"`
}

type analysisTx struct {
	Type      string `json:"type"`
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition,omitempty"`
	Timestamp string `json:"timestamp"`
}

const maxHistoryForAnalysis = 50

func buildAnalysisPayload(state *persistence.State) analysisPayload {
	payload := analysisPayload{
		Items:   make([]analysisItem, 0, len(state.Items)),
		Loans:   make([]analysisLoan, 0, len(state.Loans)),
		History: make([]analysisTx, 0, maxHistoryForAnalysis),
	}

	for _, item := range state.Items {
		payload.Items = append(payload.Items, analysisItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Category:  item.Category,
			Total:     item.Quantity,
			Available: item.AvailableQuantity,
		})
	}

	for _, loan := range state.Loans {
		out := analysisLoan{
			Item:       loan.ItemName,
			Borrower:   loan.BorrowerName,
			Department: loan.Department,
			Quantity:   loan.Quantity,
			BorrowDate: loan.BorrowDate.Format(time.RFC3339),
		}
		if !loan.ExpectedReturnDate.IsZero() {
			out.DueDate = loan.ExpectedReturnDate.Format(time.RFC3339)
		}
		payload.Loans = append(payload.Loans, out)
	}

	for i, entry := range state.History {
		if i >= maxHistoryForAnalysis {
			break
		}
		payload.History = append(payload.History, analysisTx{
			Type:      entry.Type,
			Item:      entry.ItemName,
			Quantity:  entry.Quantity,
			Condition: entry.Condition,
			Timestamp: entry.Timestamp.Format(time.RFC3339),
		})
	}

	return payload
}
