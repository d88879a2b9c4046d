package jobs

import (
	"toolcrib-backend/internal/config"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
	"toolcrib-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store  *repository.Store
	email  service.EmailService
	clock  service.Clock
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *repository.Store, email service.EmailService, clock service.Clock, cfg *config.Config) *JobRunner {
	if clock == nil {
		clock = service.SystemClock()
	}
	return &JobRunner{
		store:  store,
		email:  email,
		clock:  clock,
		config: cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs every daily job (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.SendOverdueReminders()
	jr.SendLowStockAlerts()
}
