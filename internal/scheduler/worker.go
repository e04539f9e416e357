package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leaddesk_backend/internal/followups"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReminderNotifier turns a due follow-up task into an inbox notification.
type ReminderNotifier interface {
	NotifyTaskDue(ctx context.Context, task followups.Task) error
}

// Worker consumes the redis task queue and delivers follow-up reminders.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	tasks    *followups.Repository
	notifier ReminderNotifier
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, notifier ReminderNotifier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		tasks:    followups.NewRepository(pool),
		notifier: notifier,
		log:      log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

// handleFollowUpReminder re-checks the task at delivery time: reminders for
// tasks that were completed, rescheduled, or deleted since enqueue are dropped.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	followUp, err := w.tasks.GetByID(ctx, tenantID, taskID)
	if err != nil {
		if errors.Is(err, followups.ErrTaskNotFound) {
			return nil
		}
		return err
	}

	if !followUp.IsOpen() {
		return nil
	}

	if w.notifier == nil {
		return nil
	}

	if err := w.notifier.NotifyTaskDue(ctx, followUp); err != nil {
		return err
	}

	w.log.Info("follow-up reminder delivered", "taskId", followUp.ID, "leadId", followUp.LeadID)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
