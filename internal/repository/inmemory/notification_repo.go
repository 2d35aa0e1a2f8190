package inmemory

import (
	"context"
	"slices"
	"time"

	"taskManager/internal/models/notification"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type NotificationStorage struct {
	s *Store
}

func (r *NotificationStorage) Create(ctx context.Context, n *notification.Notification) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.users[n.UserID]; !ok {
		return repo.ErrNotFound
	}

	stored := *n
	r.s.notifications[n.ID] = &stored
	r.s.notificationIDs = append(r.s.notificationIDs, n.ID)
	return nil
}

// MarkRead отмечает уведомление прочитанным. false означает, что оно уже было прочитано и readAt не менялся.
func (r *NotificationStorage) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	existing, ok := r.s.notifications[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	return existing.MarkRead(at), nil
}

func (r *NotificationStorage) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.hydrate(n), nil
}

func (r *NotificationStorage) GetByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.newestFirst(func(n *notification.Notification) bool { return n.UserID == userID }), nil
}

func (r *NotificationStorage) GetUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.newestFirst(func(n *notification.Notification) bool { return n.UserID == userID && !n.IsRead }), nil
}

func (r *NotificationStorage) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationStorage) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	updated := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.MarkRead(at) {
			updated++
		}
	}
	return updated, nil
}

func (r *NotificationStorage) newestFirst(match func(*notification.Notification) bool) []*notification.Notification {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	res := []*notification.Notification{}
	for i := len(r.s.notificationIDs) - 1; i >= 0; i-- {
		if n := r.s.notifications[r.s.notificationIDs[i]]; match(n) {
			res = append(res, r.hydrate(n))
		}
	}
	slices.SortStableFunc(res, func(a, b *notification.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res
}

// hydrate подставляет заголовок связанной задачи. Вызывать под мьютексом.
func (r *NotificationStorage) hydrate(n *notification.Notification) *notification.Notification {
	cp := *n
	cp.TaskTitle = ""
	if n.TaskID != nil {
		if t, ok := r.s.tasks[*n.TaskID]; ok {
			cp.TaskTitle = t.Title
		}
	}
	return &cp
}
