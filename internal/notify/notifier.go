package notify

import (
	"context"
	"fmt"

	"taskManager/internal/clock"
	"taskManager/internal/events"
	"taskManager/internal/logger"
	"taskManager/internal/mail"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, n *notification.Notification) error
}

type Dispatcher interface {
	Dispatch(msg mail.Message) error
}

// Notifier пишет уведомления и решает, кому и что отправить по событиям задач.
type Notifier struct {
	repo    Repository
	mailer  Dispatcher
	clock   clock.Clock
	product string
}

func New(repo Repository, mailer Dispatcher, clk clock.Clock, product string) *Notifier {
	return &Notifier{
		repo:    repo,
		mailer:  mailer,
		clock:   clk,
		product: product,
	}
}

// CreateNotification сохраняет непрочитанное уведомление. Ошибка хранилища возвращается вызывающему.
func (n *Notifier) CreateNotification(ctx context.Context, target *user.User, related *task.Task, message string, typ notification.Type) (*notification.Notification, error) {
	if target == nil {
		return nil, fmt.Errorf("создание уведомления: не указан получатель")
	}

	record := notification.New(target.ID, message, typ, n.clock.Now())
	if related != nil {
		taskID := related.ID
		record.TaskID = &taskID
		record.TaskTitle = related.Title
	}

	if err := n.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("создание уведомления: %w", err)
	}

	logger.Debug("Service: Уведомление создано",
		zap.String("user_id", target.ID.String()),
		zap.String("type", string(typ)))
	return record, nil
}

func (n *Notifier) Handle(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.TaskAssigned:
		return n.onAssigned(ctx, e)
	case events.TaskCompleted:
		return n.onCompleted(ctx, e)
	case events.TaskCommented:
		return n.onCommented(ctx, e)
	}
	return nil
}

func (n *Notifier) onAssigned(ctx context.Context, e events.Event) error {
	if e.Assignee == nil {
		return nil
	}

	message := "New task assigned: " + e.Task.Title
	if e.Reassigned {
		message = "Task reassigned: " + e.Task.Title
	}
	if _, err := n.CreateNotification(ctx, e.Assignee, e.Task, message, notification.TypeTaskAssigned); err != nil {
		return err
	}

	msg := mail.AssignmentMessage(e.Assignee.Email, e.Task, n.product)
	events.AfterCommit(ctx, func() { n.send(msg) })
	return nil
}

// onCompleted уведомляет автора, только если у задачи есть исполнитель.
func (n *Notifier) onCompleted(ctx context.Context, e events.Event) error {
	if !e.Task.HasAssignee() || e.Task.CreatedBy == nil {
		return nil
	}
	_, err := n.CreateNotification(ctx, e.Task.CreatedBy, e.Task, "Task completed: "+e.Task.Title, notification.TypeTaskCompleted)
	return err
}

// onCommented уведомляет автора и исполнителя задачи, если комментарий оставил не он сам.
func (n *Notifier) onCommented(ctx context.Context, e events.Event) error {
	if e.Actor == nil {
		return nil
	}
	message := e.Actor.FullName + " commented on: " + e.Task.Title

	if creator := e.Task.CreatedBy; creator != nil && creator.ID != e.Actor.ID {
		if _, err := n.CreateNotification(ctx, creator, e.Task, message, notification.TypeTaskComment); err != nil {
			return err
		}
	}
	if assignee := e.Task.AssignedTo; assignee != nil && assignee.ID != e.Actor.ID {
		if _, err := n.CreateNotification(ctx, assignee, e.Task, message, notification.TypeTaskComment); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(msg mail.Message) {
	if err := n.mailer.Dispatch(msg); err != nil {
		logger.Warn("Service: Письмо не поставлено в очередь",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}
