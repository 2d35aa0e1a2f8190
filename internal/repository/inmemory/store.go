package inmemory

import (
	"context"
	"sync"

	"taskManager/internal/logger"
	"taskManager/internal/models/attachment"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// Store держит все сущности под одним мьютексом, чтобы каскадное удаление задачи было атомарным.
type Store struct {
	mtx *sync.RWMutex

	users   map[uuid.UUID]*user.User
	userIDs []uuid.UUID

	tasks   map[uuid.UUID]*task.Task
	taskIDs []uuid.UUID

	comments   map[uuid.UUID]*comment.Comment
	commentIDs []uuid.UUID

	attachments   map[uuid.UUID]*attachment.Attachment
	attachmentIDs []uuid.UUID

	notifications   map[uuid.UUID]*notification.Notification
	notificationIDs []uuid.UUID
}

func NewStore() *Store {
	return &Store{
		mtx:           &sync.RWMutex{},
		users:         make(map[uuid.UUID]*user.User),
		tasks:         make(map[uuid.UUID]*task.Task),
		comments:      make(map[uuid.UUID]*comment.Comment),
		attachments:   make(map[uuid.UUID]*attachment.Attachment),
		notifications: make(map[uuid.UUID]*notification.Notification),
	}
}

func (s *Store) Users() *UserStorage {
	return &UserStorage{s: s}
}

func (s *Store) Tasks() *TaskStorage {
	return &TaskStorage{s: s}
}

func (s *Store) Comments() *CommentStorage {
	return &CommentStorage{s: s}
}

func (s *Store) Attachments() *AttachmentStorage {
	return &AttachmentStorage{s: s}
}

func (s *Store) Notifications() *NotificationStorage {
	return &NotificationStorage{s: s}
}

// WithinTx просто выполняет fn: отдельные операции хранилища и так атомарны.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, val := range ids {
		if val == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func cloneUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// resolveUser отдаёт актуальную копию пользователя из хранилища. Вызывать под мьютексом.
func (s *Store) resolveUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	if stored, ok := s.users[u.ID]; ok {
		return cloneUser(stored)
	}
	return cloneUser(u)
}
