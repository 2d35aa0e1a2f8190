package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type TokenIssuer interface {
	Issue(u *user.User) (string, time.Time, error)
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

type AuthResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	deps   Deps
	tokens TokenIssuer
	cost   int
}

func NewAuthService(deps Deps, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{deps: deps.withDefaults(), tokens: tokens, cost: bcryptCost}
}

// Register создаёт пользователя с ролью VIEWER. Занятые имя или почта дают CONFLICT.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	switch {
	case username == "":
		return nil, NewValidationError("username", "обязательное поле")
	case email == "" || !strings.Contains(email, "@"):
		return nil, NewValidationError("email", "некорректный адрес")
	case len(req.Password) < minPasswordLen:
		return nil, NewValidationError("password", fmt.Sprintf("не короче %d символов", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := user.New(username, email, string(hash), strings.TrimSpace(req.FullName))
	u.CreatedAt = s.deps.Clock.Now()

	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.deps.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("проверка имени пользователя: %w", err)
		}
		if taken {
			return NewConflict("username", username)
		}

		taken, err = s.deps.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("проверка почты: %w", err)
		}
		if taken {
			return NewConflict("email", email)
		}

		if err := s.deps.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrAlreadyExists) {
				return NewConflict("username", username)
			}
			return fmt.Errorf("создание пользователя: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("username", username))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	u, err := s.deps.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Service: Вход с неизвестным именем", zap.String("username", username))
			return nil, NewUnauthorized("неверное имя пользователя или пароль")
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return nil, NewUnauthorized("неверное имя пользователя или пароль")
	}
	if !u.Enabled {
		return nil, NewForbidden("учётная запись отключена", ResourceUser)
	}

	return s.issue(u)
}

func (s *AuthService) issue(u *user.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}
