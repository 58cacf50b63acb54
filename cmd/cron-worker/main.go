package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tresmarias-build/procure-backend/internal/cron"
	"github.com/tresmarias-build/procure-backend/internal/materialrequests"
	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/purchaseorders"
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/config"
	"github.com/tresmarias-build/procure-backend/pkg/db"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
	"github.com/tresmarias-build/procure-backend/pkg/metrics"
	"github.com/tresmarias-build/procure-backend/pkg/migrate"
	"github.com/tresmarias-build/procure-backend/pkg/redis"
)

const lockKeyFormat = "procure:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.TickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*cron.Registry, error) {
	gdb := dbClient.DB()

	notificationRepo := notifications.NewRepository(gdb)
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		return nil, err
	}

	workflowService, err := workflow.NewService(workflow.NewRepository(gdb))
	if err != nil {
		return nil, err
	}

	cleanup, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationRepo,
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	reminder, err := cron.NewApprovalReminderJob(cron.ApprovalReminderJobParams{
		Logger:      logg,
		Requests:    materialrequests.NewRepository(gdb),
		Orders:      purchaseorders.NewRepository(gdb),
		Workflow:    workflowService,
		Notifier:    notificationService,
		MaxAgeHours: int(cfg.Cron.PendingReminderAge.Hours()),
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(cleanup, reminder), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
