package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/notification"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notificationSelect = `SELECT n.id, n.message, n.type, n.user_id, n.task_id, COALESCE(t.title, ''),
		n.is_read, n.created_at, n.read_at
	FROM notifications n
	LEFT JOIN tasks t ON t.id = n.task_id`

type NotificationRepo struct {
	s *Storage
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.ID, &n.Message, &n.Type, &n.UserID, &n.TaskID, &n.TaskTitle, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	start := time.Now()
	defer logSlow("notifications.create", start)

	query := `INSERT INTO notifications (id, message, type, user_id, task_id, is_read, created_at, read_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.s.conn(ctx).Exec(ctx, query, n.ID, n.Message, n.Type, n.UserID, n.TaskID, n.IsRead, n.CreatedAt, n.ReadAt)
	if err != nil {
		logger.Error("Repository: Не удалось создать уведомление", err, zap.String("user_id", n.UserID.String()))
		return fmt.Errorf("создание уведомления: %w", mapError(err))
	}
	return nil
}

// MarkRead отмечает уведомление прочитанным. false означает, что оно уже было прочитано и readAt не менялся.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	conn := r.s.conn(ctx)
	tag, err := conn.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE id = $1 AND NOT is_read`, id, at)
	if err != nil {
		logger.Error("Repository: Не удалось обновить уведомление", err)
		return false, fmt.Errorf("обновление уведомления: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists); err != nil {
		logger.Error("Repository: Не удалось проверить уведомление", err)
		return false, fmt.Errorf("проверка уведомления: %w", err)
	}
	if !exists {
		return false, repo.ErrNotFound
	}
	return false, nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	n, err := scanNotification(r.s.conn(ctx).QueryRow(ctx, notificationSelect+` WHERE n.id = $1`, id))
	if err != nil {
		err = mapError(err)
		if err == repo.ErrNotFound {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить уведомление", err)
		return nil, fmt.Errorf("получение уведомления: %w", err)
	}
	return n, nil
}

func (r *NotificationRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.list(ctx, notificationSelect+` WHERE n.user_id = $1 ORDER BY n.created_at DESC, n.id`, userID)
}

func (r *NotificationRepo) GetUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return r.list(ctx, notificationSelect+` WHERE n.user_id = $1 AND NOT n.is_read ORDER BY n.created_at DESC, n.id`, userID)
}

func (r *NotificationRepo) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.s.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать уведомления", err)
		return 0, fmt.Errorf("подсчёт уведомлений: %w", err)
	}
	return count, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	tag, err := r.s.conn(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE user_id = $1 AND NOT is_read`, userID, at)
	if err != nil {
		logger.Error("Repository: Не удалось отметить уведомления", err)
		return 0, fmt.Errorf("отметка уведомлений: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepo) list(ctx context.Context, query string, args ...any) ([]*notification.Notification, error) {
	start := time.Now()
	defer logSlow("notifications.list", start)

	rows, err := r.s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить уведомления", err)
		return nil, fmt.Errorf("получение уведомлений: %w", err)
	}
	defer rows.Close()

	res := []*notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение уведомления: %w", err)
		}
		res = append(res, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение уведомлений: %w", err)
	}
	return res, nil
}
