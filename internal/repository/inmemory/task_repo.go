package inmemory

import (
	"context"
	"time"

	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	s *Store
}

func (r *TaskStorage) HealthCheck(ctx context.Context) error {
	return r.s.HealthCheck(ctx)
}

func (r *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.tasks[t.ID]; ok {
		return repo.ErrAlreadyExists
	}

	t.Version = 1
	stored := *t
	r.s.tasks[t.ID] = &stored
	r.s.taskIDs = append(r.s.taskIDs, t.ID)
	return nil
}

func (r *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	existing, ok := r.s.tasks[t.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Version != t.Version {
		return repo.ErrVersionConflict
	}

	t.Version++
	stored := *t
	r.s.tasks[t.ID] = &stored
	return nil
}

func (r *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.hydrate(t), nil
}

// Delete удаляет задачу вместе с комментариями и вложениями. Уведомления теряют ссылку на задачу.
func (r *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return repo.ErrNotFound
	}

	for _, commentID := range append([]uuid.UUID(nil), r.s.commentIDs...) {
		if r.s.comments[commentID].TaskID == id {
			delete(r.s.comments, commentID)
			r.s.commentIDs = removeID(r.s.commentIDs, commentID)
		}
	}
	for _, attachmentID := range append([]uuid.UUID(nil), r.s.attachmentIDs...) {
		if r.s.attachments[attachmentID].TaskID == id {
			delete(r.s.attachments, attachmentID)
			r.s.attachmentIDs = removeID(r.s.attachmentIDs, attachmentID)
		}
	}
	for _, n := range r.s.notifications {
		if n.TaskID != nil && *n.TaskID == id {
			n.TaskID = nil
		}
	}

	delete(r.s.tasks, id)
	r.s.taskIDs = removeID(r.s.taskIDs, id)
	return nil
}

func (r *TaskStorage) GetAll(ctx context.Context) ([]*task.Task, error) {
	return r.filter(func(*task.Task) bool { return true }), nil
}

func (r *TaskStorage) GetByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return r.filter(func(t *task.Task) bool { return t.Status == status }), nil
}

func (r *TaskStorage) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.filter(func(t *task.Task) bool { return t.IsAssignedTo(userID) }), nil
}

func (r *TaskStorage) GetByCreator(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.filter(func(t *task.Task) bool { return t.IsCreatedBy(userID) }), nil
}

func (r *TaskStorage) GetByAssigneeAndStatus(ctx context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error) {
	return r.filter(func(t *task.Task) bool { return t.IsAssignedTo(userID) && t.Status == status }), nil
}

func (r *TaskStorage) GetDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	return r.filter(func(t *task.Task) bool {
		return !t.Deadline.Before(from) && t.Deadline.Before(to)
	}), nil
}

func (r *TaskStorage) filter(match func(*task.Task) bool) []*task.Task {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range r.s.taskIDs {
		if t := r.s.tasks[id]; match(t) {
			res = append(res, r.hydrate(t))
		}
	}
	return res
}

// hydrate возвращает копию задачи со свежими данными автора и исполнителя. Вызывать под мьютексом.
func (r *TaskStorage) hydrate(t *task.Task) *task.Task {
	c := *t
	c.CreatedBy = r.s.resolveUser(t.CreatedBy)
	c.AssignedTo = r.s.resolveUser(t.AssignedTo)
	return &c
}
