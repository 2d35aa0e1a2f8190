package inmemory

import (
	"context"
	"strings"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	s *Store
}

func (r *UserStorage) Create(ctx context.Context, u *user.User) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return repo.ErrAlreadyExists
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrAlreadyExists
		}
	}

	r.s.users[u.ID] = cloneUser(u)
	r.s.userIDs = append(r.s.userIDs, u.ID)
	return nil
}

func (r *UserStorage) Update(ctx context.Context, u *user.User) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	for _, id := range r.s.userIDs {
		if u := r.s.users[id]; u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserStorage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == repo.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *UserStorage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserStorage) GetAll(ctx context.Context) ([]*user.User, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	res := make([]*user.User, 0, len(r.s.userIDs))
	for _, id := range r.s.userIDs {
		res = append(res, cloneUser(r.s.users[id]))
	}
	return res, nil
}
