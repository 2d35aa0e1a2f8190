package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskSelect = `SELECT t.id, t.title, t.description, t.priority, t.status, t.deadline, t.category, t.tags,
		t.created_at, t.updated_at, t.completed_at, t.version,
		c.id, c.username, c.email, c.full_name, c.role, c.enabled, c.created_at,
		a.id, a.username, a.email, a.full_name, a.role, a.enabled, a.created_at
	FROM tasks t
	JOIN users c ON c.id = t.created_by
	LEFT JOIN users a ON a.id = t.assigned_to`

type TaskRepo struct {
	s *Storage
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t       task.Task
		creator user.User

		assigneeID        *uuid.UUID
		assigneeUsername  *string
		assigneeEmail     *string
		assigneeFullName  *string
		assigneeRole      *string
		assigneeEnabled   *bool
		assigneeCreatedAt *time.Time
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.Deadline, &t.Category, &t.Tags,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.Version,
		&creator.ID, &creator.Username, &creator.Email, &creator.FullName, &creator.Role, &creator.Enabled, &creator.CreatedAt,
		&assigneeID, &assigneeUsername, &assigneeEmail, &assigneeFullName, &assigneeRole, &assigneeEnabled, &assigneeCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedBy = &creator
	if assigneeID != nil {
		t.AssignedTo = &user.User{
			ID:        *assigneeID,
			Username:  deref(assigneeUsername),
			Email:     deref(assigneeEmail),
			FullName:  deref(assigneeFullName),
			Role:      user.Role(deref(assigneeRole)),
			Enabled:   assigneeEnabled != nil && *assigneeEnabled,
			CreatedAt: derefTime(assigneeCreatedAt),
		}
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func refID(u *user.User) *uuid.UUID {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

func (r *TaskRepo) HealthCheck(ctx context.Context) error {
	return r.s.HealthCheck(ctx)
}

func (r *TaskRepo) Create(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer logSlow("tasks.create", start)

	query := `INSERT INTO tasks (id, title, description, priority, status, deadline, category, tags,
				assigned_to, created_by, created_at, completed_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)`

	_, err := r.s.conn(ctx).Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.Deadline, t.Category, t.Tags,
		refID(t.AssignedTo), refID(t.CreatedBy), t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		logger.Error("Repository: Не удалось создать задачу", err, zap.String("task_id", t.ID.String()))
		return fmt.Errorf("создание задачи: %w", mapError(err))
	}

	t.Version = 1
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer logSlow("tasks.update", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				status = $4,
				deadline = $5,
				category = $6,
				tags = $7,
				assigned_to = $8,
				updated_at = $9,
				completed_at = $10,
				version = version + 1
			WHERE id = $11 AND version = $12
			RETURNING version`

	err := r.s.conn(ctx).QueryRow(ctx, query,
		t.Title, t.Description, t.Priority, t.Status, t.Deadline, t.Category, t.Tags,
		refID(t.AssignedTo), t.UpdatedAt, t.CompletedAt, t.ID, t.Version,
	).Scan(&t.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: Конфликт версий при обновлении задачи",
				zap.String("task_id", t.ID.String()),
				zap.Int("expected_version", t.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", mapError(err))
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer logSlow("tasks.get_by_id", start)

	t, err := scanTask(r.s.conn(ctx).QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		err = mapError(err)
		if err == repo.ErrNotFound {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// Delete удаляет задачу. Комментарии и вложения удаляются каскадом на уровне схемы.
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer logSlow("tasks.delete", start)

	tag, err := r.s.conn(ctx).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.String("task_id", id.String()))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) GetAll(ctx context.Context) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_all", taskSelect+` ORDER BY t.created_at, t.id`)
}

func (r *TaskRepo) GetByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_by_status", taskSelect+` WHERE t.status = $1 ORDER BY t.created_at, t.id`, status)
}

func (r *TaskRepo) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_by_assignee", taskSelect+` WHERE t.assigned_to = $1 ORDER BY t.created_at, t.id`, userID)
}

func (r *TaskRepo) GetByCreator(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_by_creator", taskSelect+` WHERE t.created_by = $1 ORDER BY t.created_at, t.id`, userID)
}

func (r *TaskRepo) GetByAssigneeAndStatus(ctx context.Context, userID uuid.UUID, status task.Status) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_by_assignee_status",
		taskSelect+` WHERE t.assigned_to = $1 AND t.status = $2 ORDER BY t.created_at, t.id`, userID, status)
}

func (r *TaskRepo) GetDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	return r.list(ctx, "tasks.get_due_between",
		taskSelect+` WHERE t.deadline >= $1 AND t.deadline < $2 ORDER BY t.deadline, t.id`, from, to)
}

func (r *TaskRepo) list(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow(op, start)

	rows, err := r.s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.String("op", op))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	res := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение задач: %w", err)
	}
	return res, nil
}
