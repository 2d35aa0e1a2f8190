package postgres

import (
	"context"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/attachment"

	"github.com/google/uuid"
)

type AttachmentRepo struct {
	s *Storage
}

func (r *AttachmentRepo) Create(ctx context.Context, a *attachment.Attachment) error {
	query := `INSERT INTO attachments (id, task_id, file_name, url, size, uploaded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.s.conn(ctx).Exec(ctx, query, a.ID, a.TaskID, a.FileName, a.URL, a.Size, a.UploadedBy, a.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить вложение", err)
		return fmt.Errorf("создание вложения: %w", mapError(err))
	}
	return nil
}

func (r *AttachmentRepo) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*attachment.Attachment, error) {
	query := `SELECT id, task_id, file_name, url, size, uploaded_by, created_at
			FROM attachments WHERE task_id = $1 ORDER BY created_at, id`

	rows, err := r.s.conn(ctx).Query(ctx, query, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить вложения", err)
		return nil, fmt.Errorf("получение вложений: %w", err)
	}
	defer rows.Close()

	res := []*attachment.Attachment{}
	for rows.Next() {
		var a attachment.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.FileName, &a.URL, &a.Size, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение вложения: %w", err)
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}
