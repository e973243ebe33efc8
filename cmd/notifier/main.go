// Command notifier runs one pass of task reminders (due soon and overdue).
// It is meant to be scheduled by cron or a Kubernetes CronJob.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/estatehub/backend/internal/infrastructure/logger"
	"github.com/estatehub/backend/internal/infrastructure/notify"
	"github.com/estatehub/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		dryRun  bool
		timeout time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "Log the reminders that would be sent without sending or recording them")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Upper bound for one pass")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)
	log = log.With(zap.String("component", "task_notifier"))

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	senders := buildSenders(cfg.Notifier, log)
	if len(senders) == 0 {
		log.Warn("No delivery channel enabled, reminders are stored in-app only")
	}

	notifier := notificationapp.NewTaskNotifier(
		persistence.NewGormTaskRepository(db.DB),
		persistence.NewGormMemberRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		persistence.NewGormNotificationRepository(db.DB),
		senders,
		notificationapp.TaskNotifierConfig{
			DueWindow: cfg.Notifier.DueWindow,
			BatchSize: cfg.Notifier.BatchSize,
			DryRun:    dryRun,
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, err := notifier.Run(ctx)
	if err != nil {
		log.Error("Task notifier pass failed", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
	if report.Failed > 0 {
		log.Warn("Some reminders could not be delivered", zap.Int("failed", report.Failed))
	}
}

// buildSenders creates the enabled channels; a misconfigured channel is logged and skipped
func buildSenders(cfg config.NotifierConfig, log *zap.Logger) []notify.Sender {
	var senders []notify.Sender
	if cfg.SMTP.Enabled {
		email, err := notify.NewEmailAdapter(cfg.SMTP)
		if err != nil {
			log.Error("Email channel disabled", zap.Error(err))
		} else {
			senders = append(senders, email)
		}
	}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramAdapter(cfg.Telegram)
		if err != nil {
			log.Error("Telegram channel disabled", zap.Error(err))
		} else {
			senders = append(senders, tg)
		}
	}
	return senders
}
