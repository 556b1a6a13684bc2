// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - Tasks are enqueued with asynq.Client.
//   - asynq.Server runs the workers that process them.
//   - asynq.Scheduler enqueues periodic tasks from cron specs.
package job

import (
	"time"

	"github.com/deppfellow/go-commerce/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client, worker server and scheduler.
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	cron      string

	logger  *zerolog.Logger
	ratings RatingRefresher
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks the largest worker share.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Jobs.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: scheduler,
		cron:      cfg.Jobs.ReportsRatingCron,
		logger:    logger,
	}
}

// Mux returns the task routes.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReportsRatingPos, j.handleRatingPosTask)
	return mux
}

// Start starts the worker server and, when a cron schedule is configured,
// the scheduler that enqueues the nightly rating refresh.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return err
	}

	if j.cron == "" {
		return nil
	}

	task, err := NewRatingPosTask()
	if err != nil {
		return err
	}
	entryID, err := j.scheduler.Register(j.cron, task)
	if err != nil {
		return err
	}

	j.logger.Info().
		Str("entry_id", entryID).
		Str("cron", j.cron).
		Str("type", TaskReportsRatingPos).
		Msg("Scheduled periodic task")

	return j.scheduler.Start()
}

// Stop shuts down the scheduler and worker server and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	if j.cron != "" {
		j.scheduler.Shutdown()
	}
	j.server.Shutdown()
	j.Client.Close()
}
