package service

import (
	"context"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService struct {
	deps Deps
}

func NewNotificationService(deps Deps) *NotificationService {
	return &NotificationService{deps: deps.withDefaults()}
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, caller string) ([]*notification.Notification, error) {
	owner, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return nil, err
	}
	list, err := s.deps.Notifications.GetByUser(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("получение уведомлений: %w", err)
	}
	return list, nil
}

func (s *NotificationService) GetUnreadNotifications(ctx context.Context, caller string) ([]*notification.Notification, error) {
	owner, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return nil, err
	}
	list, err := s.deps.Notifications.GetUnreadByUser(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("получение непрочитанных уведомлений: %w", err)
	}
	return list, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, caller string) (int, error) {
	owner, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return 0, err
	}
	count, err := s.deps.Notifications.CountUnreadByUser(ctx, owner.ID)
	if err != nil {
		return 0, fmt.Errorf("подсчёт уведомлений: %w", err)
	}
	return count, nil
}

// MarkAsRead отмечает уведомление прочитанным. Чужие уведомления трогать нельзя.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, caller string) (*notification.Notification, error) {
	var result *notification.Notification
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.deps.Notifications.GetByID(ctx, id)
		if err != nil {
			return mapRepoError(err, ResourceNotification, id, "получение уведомления")
		}
		owner, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if n.UserID != owner.ID {
			logger.Warn("Service: Попытка прочитать чужое уведомление",
				zap.String("notification_id", id.String()),
				zap.String("username", caller))
			return NewForbidden("чтение уведомления", ResourceNotification)
		}

		if n.IsRead {
			result = n
			return nil
		}

		now := s.deps.Clock.Now()
		changed, err := s.deps.Notifications.MarkRead(ctx, id, now)
		if err != nil {
			return mapRepoError(err, ResourceNotification, id, "обновление уведомления")
		}
		if changed {
			n.MarkRead(now)
			result = n
			return nil
		}

		// прочитано параллельным запросом, отдаём сохранённый readAt
		if result, err = s.deps.Notifications.GetByID(ctx, id); err != nil {
			return mapRepoError(err, ResourceNotification, id, "получение уведомления")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, caller string) (int, error) {
	owner, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return 0, err
	}
	updated, err := s.deps.Notifications.MarkAllRead(ctx, owner.ID, s.deps.Clock.Now())
	if err != nil {
		return 0, fmt.Errorf("отметка уведомлений: %w", err)
	}

	logger.Info("Service: Уведомления отмечены прочитанными",
		zap.String("username", caller),
		zap.Int("count", updated))
	return updated, nil
}
