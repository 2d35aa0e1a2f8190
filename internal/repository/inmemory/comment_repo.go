package inmemory

import (
	"context"

	"taskManager/internal/models/comment"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type CommentStorage struct {
	s *Store
}

func (r *CommentStorage) Create(ctx context.Context, c *comment.Comment) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.tasks[c.TaskID]; !ok {
		return repo.ErrNotFound
	}

	stored := *c
	r.s.comments[c.ID] = &stored
	r.s.commentIDs = append(r.s.commentIDs, c.ID)
	return nil
}

func (r *CommentStorage) GetByID(ctx context.Context, id uuid.UUID) (*comment.Comment, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.hydrate(c), nil
}

func (r *CommentStorage) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	res := []*comment.Comment{}
	for _, id := range r.s.commentIDs {
		if c := r.s.comments[id]; c.TaskID == taskID {
			res = append(res, r.hydrate(c))
		}
	}
	return res, nil
}

func (r *CommentStorage) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.comments, id)
	r.s.commentIDs = removeID(r.s.commentIDs, id)
	return nil
}

func (r *CommentStorage) hydrate(c *comment.Comment) *comment.Comment {
	cp := *c
	cp.Author = r.s.resolveUser(c.Author)
	return &cp
}
