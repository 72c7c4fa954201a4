package background

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"maintitrack/internal/jobs"
	"maintitrack/internal/services"
)

// Intervals configures how often each job runs. Zero values fall back to the
// defaults.
type Intervals struct {
	Alerts  time.Duration
	Insight time.Duration
}

// JobScheduler manages the periodic background jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *jobs.AlertService
	insights  services.InsightService
	intervals Intervals
	logger    *zap.Logger
	jobsByID  map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers all jobs.
func NewJobScheduler(alerts *jobs.AlertService, insights services.InsightService, intervals Intervals, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if intervals.Alerts <= 0 {
		intervals.Alerts = 30 * time.Minute
	}
	if intervals.Insight <= 0 {
		intervals.Insight = 6 * time.Hour
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		insights:  insights,
		intervals: intervals,
		logger:    logger,
		jobsByID:  make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	alertJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.intervals.Alerts),
		gocron.NewTask(js.alerts.RunChecks),
		gocron.WithName("inventory-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create inventory alerts job", zap.Error(err))
	} else {
		js.jobsByID["alerts"] = alertJob
	}

	insightJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.intervals.Insight),
		gocron.NewTask(js.refreshInsights),
		gocron.WithName("insight-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create insight refresh job", zap.Error(err))
	} else {
		js.jobsByID["insights"] = insightJob
	}
}

func (js *JobScheduler) refreshInsights() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	js.insights.Refresh(ctx)
}
