package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"go.uber.org/zap"
)

type Type string

const (
	TaskAssigned  Type = "task.assigned"
	TaskCompleted Type = "task.completed"
	TaskCommented Type = "task.commented"
)

type Event struct {
	Type       Type
	Task       *task.Task
	Actor      *user.User
	Assignee   *user.User
	Comment    *comment.Comment
	Reassigned bool
	OccurredAt time.Time
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Handler interface {
	Handle(ctx context.Context, e Event) error
}

type HandlerFunc func(ctx context.Context, e Event) error

func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Bus синхронно передаёт событие подписчикам по порядку и останавливается на первой ошибке.
type Bus struct {
	mtx      sync.RWMutex
	handlers []Handler
}

func NewBus(handlers ...Handler) *Bus {
	return &Bus{handlers: handlers}
}

func (b *Bus) Subscribe(h Handler) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mtx.RLock()
	handlers := b.handlers
	b.mtx.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, e); err != nil {
			logger.Error("Events: Ошибка обработки события", err, zap.String("type", string(e.Type)))
			return fmt.Errorf("обработка события %s: %w", e.Type, err)
		}
	}
	return nil
}

// LogHandler пишет каждое событие в лог.
type LogHandler struct{}

func (LogHandler) Handle(ctx context.Context, e Event) error {
	fields := []zap.Field{zap.String("type", string(e.Type))}
	if e.Task != nil {
		fields = append(fields, zap.String("task_id", e.Task.ID.String()))
	}
	if e.Actor != nil {
		fields = append(fields, zap.String("actor", e.Actor.Username))
	}
	if e.Assignee != nil {
		fields = append(fields, zap.String("assignee", e.Assignee.Username))
	}
	logger.Info("Events: Событие", fields...)
	return nil
}
