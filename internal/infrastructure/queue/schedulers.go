package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bookrental-backend/internal/config"
	rentalJob "bookrental-backend/internal/domains/rental/job"
	"bookrental-backend/internal/shared"
	"bookrental-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisConnOpt, jobConfig config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// periodicJob describes one cron entry
type periodicJob struct {
	name     string
	cron     string
	taskType string
	payload  interface{}
	queue    string
	maxRetry int
	timeout  time.Duration
}

func (s *Scheduler) periodicJobs() []periodicJob {
	return []periodicJob{
		{
			// only refreshes the stored status column, reads derive it anyway
			name:     "SweepOverdueRentals",
			cron:     s.jobConfig.SweepOverdueCron,
			taskType: shared.TypeSweepOverdueRentals,
			queue:    shared.QueueMaintenance,
			maxRetry: 1,
			timeout:  2 * time.Minute,
		},
		{
			name:     "ReconcileInventory",
			cron:     s.jobConfig.ReconcileCron,
			taskType: shared.TypeReconcileInventory,
			queue:    shared.QueueMaintenance,
			maxRetry: 0,
			timeout:  5 * time.Minute,
		},
		{
			name:     "NightlyRentalReport",
			cron:     s.jobConfig.NightlyReportCron,
			taskType: shared.TypeNightlyReport,
			payload:  rentalJob.NightlyReportPayload{},
			queue:    shared.QueueReports,
			maxRetry: 3,
			timeout:  10 * time.Minute,
		},
	}
}

// RegisterPeriodicJobs registers every cron entry. A blank cron expression disables the job.
func (s *Scheduler) RegisterPeriodicJobs() error {
	for _, job := range s.periodicJobs() {
		if job.cron == "" {
			logger.Warn("Periodic job disabled", map[string]interface{}{"job": job.name})
			continue
		}
		if err := s.register(job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) register(job periodicJob) error {
	var payload []byte
	if job.payload != nil {
		var err error
		if payload, err = json.Marshal(job.payload); err != nil {
			return fmt.Errorf("marshal %s payload: %w", job.name, err)
		}
	}

	task := asynq.NewTask(job.taskType, payload)

	_, err := s.scheduler.Register(
		job.cron,
		task,
		asynq.Queue(job.queue),
		asynq.MaxRetry(job.maxRetry),
		asynq.Timeout(job.timeout),
	)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to register %s job", job.name), err)
		return fmt.Errorf("register %s: %w", job.name, err)
	}

	logger.Info("Registered periodic job", map[string]interface{}{
		"job":  job.name,
		"cron": job.cron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
