package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, password_hash, full_name, role, enabled, created_at, updated_at`

type UserRepo struct {
	s *Storage
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer logSlow("users.create", start)

	query := `INSERT INTO users (id, username, email, password_hash, full_name, role, enabled, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.s.conn(ctx).Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Role, u.Enabled, u.CreatedAt)
	if err != nil {
		err = mapError(err)
		if err != repo.ErrAlreadyExists {
			logger.Error("Repository: Не удалось создать пользователя", err, zap.String("username", u.Username))
		}
		return fmt.Errorf("создание пользователя: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer logSlow("users.update", start)

	query := `UPDATE users
			SET email = $1,
				password_hash = $2,
				full_name = $3,
				role = $4,
				enabled = $5,
				updated_at = $6
			WHERE id = $7`

	tag, err := r.s.conn(ctx).Exec(ctx, query,
		u.Email, u.PasswordHash, u.FullName, u.Role, u.Enabled, u.UpdatedAt, u.ID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить пользователя", err, zap.String("user_id", u.ID.String()))
		return fmt.Errorf("обновление пользователя: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, "users.get_by_username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
}

func (r *UserRepo) GetAll(ctx context.Context) ([]*user.User, error) {
	start := time.Now()
	defer logSlow("users.get_all", start)

	rows, err := r.s.conn(ctx).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	res := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение пользователя: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение пользователей: %w", err)
	}
	return res, nil
}

func (r *UserRepo) getOne(ctx context.Context, op, query string, arg any) (*user.User, error) {
	start := time.Now()
	defer logSlow(op, start)

	u, err := scanUser(r.s.conn(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		err = mapError(err)
		if err == repo.ErrNotFound {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.String("op", op))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (r *UserRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.s.conn(ctx).QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		logger.Error("Repository: Ошибка проверки существования пользователя", err)
		return false, fmt.Errorf("проверка пользователя: %w", err)
	}
	return exists, nil
}
