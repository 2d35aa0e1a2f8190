package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const commentSelect = `SELECT c.id, c.content, c.task_id, c.created_at,
		u.id, u.username, u.email, u.full_name, u.role, u.enabled, u.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

type CommentRepo struct {
	s *Storage
}

func scanComment(row rowScanner) (*comment.Comment, error) {
	var (
		c      comment.Comment
		author user.User
	)
	err := row.Scan(&c.ID, &c.Content, &c.TaskID, &c.CreatedAt,
		&author.ID, &author.Username, &author.Email, &author.FullName, &author.Role, &author.Enabled, &author.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Author = &author
	return &c, nil
}

func (r *CommentRepo) Create(ctx context.Context, c *comment.Comment) error {
	start := time.Now()
	defer logSlow("comments.create", start)

	query := `INSERT INTO comments (id, content, task_id, user_id, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.s.conn(ctx).Exec(ctx, query, c.ID, c.Content, c.TaskID, refID(c.Author), c.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось создать комментарий", err, zap.String("task_id", c.TaskID.String()))
		return fmt.Errorf("создание комментария: %w", mapError(err))
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*comment.Comment, error) {
	start := time.Now()
	defer logSlow("comments.get_by_id", start)

	c, err := scanComment(r.s.conn(ctx).QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		err = mapError(err)
		if err == repo.ErrNotFound {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить комментарий", err)
		return nil, fmt.Errorf("получение комментария: %w", err)
	}
	return c, nil
}

func (r *CommentRepo) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error) {
	start := time.Now()
	defer logSlow("comments.get_by_task", start)

	rows, err := r.s.conn(ctx).Query(ctx, commentSelect+` WHERE c.task_id = $1 ORDER BY c.created_at, c.id`, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить комментарии", err)
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	defer rows.Close()

	res := []*comment.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение комментария: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение комментариев: %w", err)
	}
	return res, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.s.conn(ctx).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить комментарий", err)
		return fmt.Errorf("удаление комментария: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
