package service

import (
	"context"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	deps Deps
}

func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps.withDefaults()}
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	users, err := s.deps.Users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return loadUser(ctx, s.deps.Users, id)
}

func (s *UserService) GetCurrentUser(ctx context.Context, caller string) (*user.User, error) {
	return resolveCaller(ctx, s.deps.Users, caller)
}

func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role, caller string) (*user.User, error) {
	if !role.Valid() {
		return nil, NewValidationError("role", "неизвестная роль "+string(role))
	}
	return s.administer(ctx, id, caller, "смена роли", func(u *user.User) {
		u.Role = role
	})
}

func (s *UserService) UpdateEnabled(ctx context.Context, id uuid.UUID, enabled bool, caller string) (*user.User, error) {
	return s.administer(ctx, id, caller, "смена статуса", func(u *user.User) {
		u.Enabled = enabled
	})
}

// administer применяет change к пользователю id, если caller администратор.
func (s *UserService) administer(ctx context.Context, id uuid.UUID, caller, action string, change func(*user.User)) (*user.User, error) {
	var result *user.User
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		admin, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if !s.deps.Policy.Allowed(admin, permission.ActionManageUsers, nil) {
			logger.Warn("Service: Отказано в администрировании",
				zap.String("username", caller),
				zap.String("action", action))
			return NewForbidden(action, ResourceUser)
		}

		target, err := loadUser(ctx, s.deps.Users, id)
		if err != nil {
			return err
		}

		change(target)
		now := s.deps.Clock.Now()
		target.UpdatedAt = &now
		if err := s.deps.Users.Update(ctx, target); err != nil {
			return mapRepoError(err, ResourceUser, id, "обновление пользователя")
		}
		result = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Пользователь изменён администратором",
		zap.String("user_id", id.String()),
		zap.String("action", action),
		zap.String("admin", caller))
	return result, nil
}
