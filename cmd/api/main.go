package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leaddesk_backend/internal/appointments"
	apptrepo "leaddesk_backend/internal/appointments/repository"
	"leaddesk_backend/internal/dashboard"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/followups"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/internal/notifications"
	"leaddesk_backend/internal/scheduler"
	"leaddesk_backend/internal/search"
	"leaddesk_backend/internal/sla"
	"leaddesk_backend/internal/workflow"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/db"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	reminders, cleanupReminders := initReminderScheduler(cfg, log)
	if cleanupReminders != nil {
		defer cleanupReminders()
	}

	var outreach followups.OutreachTrigger
	if client := workflow.NewClient(cfg, log); client != nil {
		outreach = client
	} else {
		log.Warn("WORKFLOW_WEBHOOK_URL not configured; outreach triggers disabled")
	}

	followupsModule := followups.NewModule(pool, outreach, reminders, eventBus, val, log)

	appointmentRepo := apptrepo.New(pool)
	leadsModule := leads.NewModule(pool, appointmentRepo, followupsModule.Service(), eventBus, val, log)
	appointmentsModule := appointments.NewModule(pool, leadsModule.Service(), eventBus, val, log)

	evaluator := sla.NewEvaluator(leadsModule.Repository(), followupsModule.Repository(), eventBus, log, cfg.SLAEvalInterval)
	evaluator.SubscribeTriggers(eventBus)
	go evaluator.Run(ctx)

	var devices *sla.DeviceState
	if rdb != nil {
		devices = sla.NewDeviceState(rdb)
	}

	notificationsModule := notifications.NewModule(pool, followupsModule.Service(), eventBus, val, log)
	dashboardModule := dashboard.NewModule(followupsModule.Service(), appointmentRepo)
	searchModule := search.NewModule(leadsModule.Repository(), rdb, log)
	slaModule := sla.NewModule(evaluator, devices, val)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			followupsModule,
			appointmentsModule,
			slaModule,
			notificationsModule,
			dashboardModule,
			searchModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; alert suppression and search history disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		return nil
	}

	return redis.NewClient(opt)
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (followups.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
