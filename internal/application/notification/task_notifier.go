package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/infrastructure/notify"
	"go.uber.org/zap"
)

const defaultNotifierBatch = 200

// TaskNotifierConfig controls one notifier pass
type TaskNotifierConfig struct {
	DueWindow time.Duration
	BatchSize int
	// DryRun logs what would be sent without sending or marking anything
	DryRun bool
}

// RunReport summarises a notifier pass
type RunReport struct {
	Due       int
	Overdue   int
	Notified  int
	Delivered int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// TaskNotifier sends due and overdue task reminders to assignees
type TaskNotifier struct {
	taskRepo   crm.TaskRepository
	memberRepo agency.MemberRepository
	userRepo   identity.UserRepository
	notifRepo  notification.Repository
	senders    []notify.Sender
	config     TaskNotifierConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewTaskNotifier creates a task notifier
func NewTaskNotifier(
	taskRepo crm.TaskRepository,
	memberRepo agency.MemberRepository,
	userRepo identity.UserRepository,
	notifRepo notification.Repository,
	senders []notify.Sender,
	config TaskNotifierConfig,
	logger *zap.Logger,
) *TaskNotifier {
	if config.BatchSize <= 0 {
		config.BatchSize = defaultNotifierBatch
	}
	if config.DueWindow <= 0 {
		config.DueWindow = time.Hour
	}
	return &TaskNotifier{
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		senders:    senders,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one pass. Only a failure to load tasks is returned as an error;
// per-task and per-channel failures are logged and counted.
func (n *TaskNotifier) Run(ctx context.Context) (*RunReport, error) {
	start := n.now()
	now := start.UTC()
	report := &RunReport{}

	due, err := n.taskRepo.FindDueForReminder(ctx, now, now.Add(n.config.DueWindow), n.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("load due tasks: %w", err)
	}
	overdue, err := n.taskRepo.FindOverdueUnnotified(ctx, now, n.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("load overdue tasks: %w", err)
	}
	report.Due = len(due)
	report.Overdue = len(overdue)

	n.logger.Info("Task notifier pass started",
		zap.Int("due", report.Due),
		zap.Int("overdue", report.Overdue),
		zap.Bool("dry_run", n.config.DryRun))

	for i := range due {
		if ctx.Err() != nil {
			break
		}
		n.process(ctx, &due[i], notification.TypeTaskDue, now, report)
	}
	for i := range overdue {
		if ctx.Err() != nil {
			break
		}
		n.process(ctx, &overdue[i], notification.TypeTaskOverdue, now, report)
	}

	report.Duration = n.now().Sub(start)
	n.logger.Info("Task notifier pass completed",
		zap.Int("notified", report.Notified),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (n *TaskNotifier) process(ctx context.Context, task *crm.Task, typ notification.Type, now time.Time, report *RunReport) {
	log := n.logger.With(
		zap.String("task_id", task.ID.String()),
		zap.String("type", string(typ)))

	member, err := n.memberRepo.FindByID(ctx, task.AssigneeID)
	if err != nil {
		log.Warn("Skipping task: assignee not found", zap.Error(err))
		report.Skipped++
		return
	}
	user, err := n.userRepo.FindByID(ctx, member.UserID)
	if err != nil {
		log.Warn("Skipping task: assignee user not found", zap.Error(err))
		report.Skipped++
		return
	}

	title, body := taskMessage(task, typ, now)
	agencyID := task.AgencyID
	notif, err := notification.New(user.ID, &agencyID, typ, title, body)
	if err != nil {
		log.Error("Failed to build notification", zap.Error(err))
		report.Failed++
		return
	}
	notif.About("task", task.ID)

	recipient := notify.Recipient{Name: user.FullName, Email: user.Email, TelegramChatID: user.TelegramChatID}
	if n.config.DryRun {
		log.Info("Dry run: would notify",
			zap.String("user_id", user.ID.String()),
			zap.Strings("channels", n.channelsFor(recipient)))
		report.Notified++
		return
	}

	if err := n.notifRepo.Save(ctx, notif); err != nil {
		log.Error("Failed to save notification", zap.Error(err))
		report.Failed++
		return
	}

	msg := notify.MessageFor(notif)
	for _, sender := range n.senders {
		if !sender.Accepts(recipient) {
			continue
		}
		if err := sender.Send(ctx, recipient, msg); err != nil {
			log.Warn("Delivery failed",
				zap.String("channel", string(sender.Channel())),
				zap.Error(err))
			report.Failed++
			continue
		}
		notif.MarkDelivered(sender.Channel(), n.now())
		report.Delivered++
	}
	if err := n.notifRepo.Save(ctx, notif); err != nil {
		log.Warn("Failed to record delivery timestamps", zap.Error(err))
	}

	if typ == notification.TypeTaskDue {
		task.MarkReminderSent(now)
	} else {
		task.MarkOverdueNotified(now)
	}
	if err := n.taskRepo.Save(ctx, task); err != nil {
		log.Error("Failed to mark task notified", zap.Error(err))
		report.Failed++
		return
	}
	report.Notified++
}

func (n *TaskNotifier) channelsFor(r notify.Recipient) []string {
	channels := make([]string, 0, len(n.senders))
	for _, s := range n.senders {
		if s.Accepts(r) {
			channels = append(channels, string(s.Channel()))
		}
	}
	return channels
}

func taskMessage(task *crm.Task, typ notification.Type, now time.Time) (string, string) {
	due := ""
	if task.DueAt != nil {
		due = task.DueAt.UTC().Format("2006-01-02 15:04 MST")
	}
	if typ == notification.TypeTaskOverdue {
		body := fmt.Sprintf("Task %q was due %s.", task.Title, due)
		if task.DueAt != nil {
			body = fmt.Sprintf("Task %q was due %s (%s ago).", task.Title, due, now.Sub(*task.DueAt).Truncate(time.Minute))
		}
		return "Task overdue: " + task.Title, appendDescription(body, task.Description)
	}
	return "Task due soon: " + task.Title, appendDescription(fmt.Sprintf("Task %q is due %s.", task.Title, due), task.Description)
}

func appendDescription(body, description string) string {
	if description == "" {
		return body
	}
	return body + "\n\n" + description
}
