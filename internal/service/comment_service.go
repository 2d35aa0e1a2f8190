package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"taskManager/internal/events"
	"taskManager/internal/logger"
	"taskManager/internal/models/comment"
	"taskManager/internal/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const commentMaxLen = 5000

type CommentRequest struct {
	TaskID  uuid.UUID
	Content string
}

type CommentService struct {
	deps Deps
}

func NewCommentService(deps Deps) *CommentService {
	return &CommentService{deps: deps.withDefaults()}
}

// AddComment сохраняет комментарий и публикует событие для уведомления участников задачи.
func (s *CommentService) AddComment(ctx context.Context, req CommentRequest, caller string) (*comment.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, NewValidationError("content", "обязательное поле")
	}
	if utf8.RuneCountInString(content) > commentMaxLen {
		return nil, NewValidationError("content", fmt.Sprintf("не более %d символов", commentMaxLen))
	}

	var created *comment.Comment
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		author, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		t, err := loadTask(ctx, s.deps.Tasks, req.TaskID)
		if err != nil {
			return err
		}

		c := comment.New(content, t.ID, author)
		c.CreatedAt = s.deps.Clock.Now()
		if err := s.deps.Comments.Create(ctx, c); err != nil {
			return mapRepoError(err, ResourceTask, t.ID, "создание комментария")
		}

		err = s.deps.Events.Publish(ctx, events.Event{
			Type:       events.TaskCommented,
			Task:       t,
			Actor:      author,
			Comment:    c,
			OccurredAt: c.CreatedAt,
		})
		if err != nil {
			return err
		}

		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Комментарий добавлен",
		zap.String("comment_id", created.ID.String()),
		zap.String("task_id", req.TaskID.String()))
	return created, nil
}

func (s *CommentService) GetCommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error) {
	if _, err := loadTask(ctx, s.deps.Tasks, taskID); err != nil {
		return nil, err
	}
	comments, err := s.deps.Comments.GetByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	return comments, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, id uuid.UUID, caller string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.deps.Comments.GetByID(ctx, id)
		if err != nil {
			return mapRepoError(err, ResourceComment, id, "получение комментария")
		}
		actor, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if !s.deps.Policy.Allowed(actor, permission.ActionDeleteComment, c) {
			logger.Warn("Service: Отказано в удалении комментария",
				zap.String("comment_id", id.String()),
				zap.String("username", caller))
			return NewForbidden("удаление комментария", ResourceComment)
		}

		if err := s.deps.Comments.Delete(ctx, id); err != nil {
			return mapRepoError(err, ResourceComment, id, "удаление комментария")
		}
		return nil
	})
}
