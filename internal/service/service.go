package service

import (
	"context"
	"errors"
	"fmt"

	"taskManager/internal/clock"
	"taskManager/internal/events"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/permission"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps собирает зависимости сервисов. Пустые Tx, Events, Policy и Clock заменяются значениями по умолчанию.
type Deps struct {
	Tasks         TaskRepository
	Users         UserRepository
	Comments      CommentRepository
	Attachments   AttachmentRepository
	Notifications NotificationRepository
	Tx            Transactor
	Events        events.Publisher
	Policy        permission.Policy
	Clock         clock.Clock
}

func (d Deps) withDefaults() Deps {
	if d.Tx == nil {
		d.Tx = noTx{}
	}
	if _, ok := d.Tx.(afterCommitTx); !ok {
		d.Tx = afterCommitTx{inner: d.Tx}
	}
	if d.Events == nil {
		d.Events = events.NewBus()
	}
	if d.Policy == nil {
		d.Policy = permission.RolePolicy{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	return d
}

// afterCommitTx выполняет отложенные через events.AfterCommit действия только после успешного fn.
type afterCommitTx struct {
	inner Transactor
}

func (t afterCommitTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, flush := events.WithAfterCommit(ctx)
	if err := t.inner.WithinTx(ctx, fn); err != nil {
		return err
	}
	flush()
	return nil
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// resolveCaller находит пользователя по имени из токена.
func resolveCaller(ctx context.Context, users UserRepository, username string) (*user.User, error) {
	if username == "" {
		return nil, NewUnauthorized("пользователь не аутентифицирован")
	}

	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, username)
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	if !u.Enabled {
		logger.Warn("Service: Запрос от отключённого пользователя", zap.String("username", username))
		return nil, NewForbidden("учётная запись отключена", ResourceUser)
	}
	return u, nil
}

func loadUser(ctx context.Context, users UserRepository, id uuid.UUID) (*user.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ResourceUser, id, "получение пользователя")
	}
	return u, nil
}

func loadTask(ctx context.Context, tasks TaskRepository, id uuid.UUID) (*task.Task, error) {
	t, err := tasks.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ResourceTask, id, "получение задачи")
	}
	return t, nil
}

// mapRepoError переводит ошибки репозитория в бизнес-ошибки, остальное оборачивает.
func mapRepoError(err error, resource Resource, id uuid.UUID, op string) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound(resource, id.String())
	case errors.Is(err, repo.ErrVersionConflict):
		return NewVersionConflict(resource, id.String(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
