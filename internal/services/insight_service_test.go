package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maintitrack/internal/models"
	"maintitrack/internal/persistence"
	"maintitrack/pkg/clients/anthropic"
)

type mockAnalysisClient struct {
	mock.Mock
}

func (m *mockAnalysisClient) AnalyzeInventory(ctx context.Context, snapshot any) (*anthropic.Insight, error) {
	args := m.Called(ctx, snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Insight), args.Error(1)
}

type memoryInsightCache struct {
	report *models.InsightReport
	getErr error
}

func (c *memoryInsightCache) Get(_ context.Context) (*models.InsightReport, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.report, nil
}

func (c *memoryInsightCache) Set(_ context.Context, report *models.InsightReport, _ time.Duration) error {
	c.report = report
	return nil
}

type staticSnapshotter struct {
	state *persistence.State
}

func (s *staticSnapshotter) Snapshot() *persistence.State { return s.state }

func testState() *persistence.State {
	return &persistence.State{
		Items: []*models.InventoryItem{
			{SKU: "TOL-001", Name: "Fluke Multimeter", Category: "Testing", Quantity: 5, AvailableQuantity: 1},
		},
		Loans:      []*models.LoanRecord{},
		History:    []*models.TransactionLog{},
		Categories: []string{"Testing"},
	}
}

func TestInsightReportServedFromCache(t *testing.T) {
	cached := &models.InsightReport{Summary: "All quiet."}
	cache := &memoryInsightCache{report: cached}
	client := new(mockAnalysisClient)
	svc := NewInsightService(&staticSnapshotter{state: testState()}, client, cache, nil)

	report := svc.Report(context.Background())

	assert.Equal(t, "All quiet.", report.Summary)
	client.AssertNotCalled(t, "AnalyzeInventory")
}

func TestInsightCacheMissTriggersRefreshAndCachesResult(t *testing.T) {
	cache := &memoryInsightCache{}
	client := new(mockAnalysisClient)
	client.On("AnalyzeInventory", mock.Anything, mock.Anything).Return(&anthropic.Insight{
		Summary:         "One item is nearly depleted.",
		Alerts:          []string{"TOL-001 down to 1 available"},
		Recommendations: []string{"Restock multimeters"},
	}, nil)

	svc := NewInsightService(&staticSnapshotter{state: testState()}, client, cache, nil)
	report := svc.Report(context.Background())

	assert.Equal(t, "One item is nearly depleted.", report.Summary)
	require.NotNil(t, cache.report)
	assert.Equal(t, report, cache.report)
	client.AssertExpectations(t)
}

func TestInsightFailureDegradesToFallback(t *testing.T) {
	cache := &memoryInsightCache{}
	client := new(mockAnalysisClient)
	client.On("AnalyzeInventory", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("api timeout"))

	svc := NewInsightService(&staticSnapshotter{state: testState()}, client, cache, nil)
	report := svc.Report(context.Background())

	assert.Equal(t, models.FallbackInsightReport(), report)
	assert.Nil(t, cache.report, "fallback reports must not be cached")
}

func TestInsightWithoutClientAlwaysFallsBack(t *testing.T) {
	svc := NewInsightService(&staticSnapshotter{state: testState()}, nil, &memoryInsightCache{}, nil)
	report := svc.Report(context.Background())
	assert.Equal(t, models.FallbackInsightReport(), report)
}

func TestInsightCacheReadFailureStillRefreshes(t *testing.T) {
	cache := &memoryInsightCache{getErr: fmt.Errorf("redis down")}
	client := new(mockAnalysisClient)
	client.On("AnalyzeInventory", mock.Anything, mock.Anything).Return(&anthropic.Insight{Summary: "Fresh analysis."}, nil)

	svc := NewInsightService(&staticSnapshotter{state: testState()}, client, cache, nil)
	report := svc.Report(context.Background())

	assert.Equal(t, "Fresh analysis.", report.Summary)
}

func TestAnalysisPayloadTruncatesHistory(t *testing.T) {
	state := testState()
	for i := 0; i < maxHistoryForAnalysis+10; i++ {
		state.History = append(state.History, &models.TransactionLog{Type: models.TxReceive, ItemName: "x", Timestamp: time.Now()})
	}

	payload := buildAnalysisPayload(state)
	assert.Len(t, payload.History, maxHistoryForAnalysis)
	assert.Len(t, payload.Items, 1)
}
