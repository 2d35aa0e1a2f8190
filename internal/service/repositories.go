package service

import (
	"context"
	"time"

	"taskManager/internal/models/attachment"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context) ([]*task.Task, error)
	GetByStatus(ctx context.Context, status task.Status) ([]*task.Task, error)
	GetByAssignee(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	GetByCreator(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	GetByAssigneeAndStatus(ctx context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error)
	// GetDueBetween возвращает задачи с дедлайном в полуинтервале [from, to).
	GetDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error)
	HealthCheck(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context) ([]*user.User, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *comment.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*comment.Comment, error)
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *attachment.Attachment) error
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]*attachment.Attachment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	// MarkRead меняет только непрочитанное уведомление и сообщает, было ли изменение.
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	// GetByUser возвращает уведомления пользователя, новые первыми.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	GetUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error)
}

// Transactor выполняет fn в одной единице работы. Репозитории, вызванные с переданным ctx, работают в ней же.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
