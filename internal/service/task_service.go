package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/events"
	"taskManager/internal/logger"
	"taskManager/internal/models/attachment"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 200
	descriptionMaxLen = 2000
)

// TaskRequest полностью описывает изменяемые поля задачи. Update перезаписывает все поля.
type TaskRequest struct {
	Title       string
	Description string
	Priority    task.Priority
	Status      task.Status
	Deadline    time.Time
	Category    string
	Tags        string
	AssigneeID  *uuid.UUID
}

type AttachmentRequest struct {
	FileName string
	URL      string
	Size     int64
}

type TaskService struct {
	deps Deps
}

func NewTaskService(deps Deps) *TaskService {
	return &TaskService{deps: deps.withDefaults()}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.deps.Tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTask создаёт задачу от имени caller. Статус всегда TODO.
func (s *TaskService) CreateTask(ctx context.Context, req TaskRequest, caller string) (*task.Task, error) {
	now := s.deps.Clock.Now()
	if err := validateTaskRequest(req, now, false); err != nil {
		return nil, err
	}

	var created *task.Task
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		creator, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}

		var assignee *user.User
		if req.AssigneeID != nil {
			if assignee, err = loadUser(ctx, s.deps.Users, *req.AssigneeID); err != nil {
				return err
			}
		}

		t := task.New(strings.TrimSpace(req.Title), creator, req.Deadline,
			task.WithDescription(req.Description),
			task.WithPriority(req.Priority),
			task.WithCategory(req.Category),
			task.WithTags(req.Tags),
			task.WithAssignee(assignee),
		)
		t.CreatedAt = now

		if err := s.deps.Tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("создание задачи: %w", err)
		}

		if assignee != nil {
			err := s.deps.Events.Publish(ctx, events.Event{
				Type:       events.TaskAssigned,
				Task:       t,
				Actor:      creator,
				Assignee:   assignee,
				OccurredAt: now,
			})
			if err != nil {
				return err
			}
		}

		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.String("creator", caller))
	return created, nil
}

// UpdateTask перезаписывает все изменяемые поля. Исполнитель меняется, только если в запросе указан другой.
// Порядок проверок: задача существует, caller имеет право, затем валидность запроса.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req TaskRequest, caller string) (*task.Task, error) {
	now := s.deps.Clock.Now()

	var updated *task.Task
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := loadTask(ctx, s.deps.Tasks, id)
		if err != nil {
			return err
		}
		actor, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if !s.deps.Policy.Allowed(actor, permission.ActionModifyTask, t) {
			logger.Warn("Service: Отказано в изменении задачи",
				zap.String("task_id", id.String()),
				zap.String("username", caller))
			return NewForbidden("изменение задачи", ResourceTask)
		}
		if err := validateTaskRequest(req, now, true); err != nil {
			return err
		}

		t.Title = strings.TrimSpace(req.Title)
		t.Description = req.Description
		t.Priority = req.Priority
		t.Status = req.Status
		t.Deadline = req.Deadline
		t.Category = req.Category
		if t.Category == "" {
			t.Category = task.DefaultCategory
		}
		t.Tags = req.Tags

		var newAssignee *user.User
		if req.AssigneeID != nil && !t.IsAssignedTo(*req.AssigneeID) {
			if newAssignee, err = loadUser(ctx, s.deps.Users, *req.AssigneeID); err != nil {
				return err
			}
			t.AssignedTo = newAssignee
		}

		if t.Status == task.StatusCompleted {
			completedAt := now
			t.CompletedAt = &completedAt
		}
		t.UpdatedAt = &now

		if err := s.deps.Tasks.Update(ctx, t); err != nil {
			return mapRepoError(err, ResourceTask, id, "обновление задачи")
		}

		if newAssignee != nil {
			err := s.deps.Events.Publish(ctx, events.Event{
				Type:       events.TaskAssigned,
				Task:       t,
				Actor:      actor,
				Assignee:   newAssignee,
				Reassigned: true,
				OccurredAt: now,
			})
			if err != nil {
				return err
			}
		}

		if t.Status == task.StatusCompleted {
			err := s.deps.Events.Publish(ctx, events.Event{
				Type:       events.TaskCompleted,
				Task:       t,
				Actor:      actor,
				OccurredAt: now,
			})
			if err != nil {
				return err
			}
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID, caller string) error {
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := loadTask(ctx, s.deps.Tasks, id)
		if err != nil {
			return err
		}
		actor, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if !s.deps.Policy.Allowed(actor, permission.ActionDeleteTask, t) {
			logger.Warn("Service: Отказано в удалении задачи",
				zap.String("task_id", id.String()),
				zap.String("username", caller))
			return NewForbidden("удаление задачи", ResourceTask)
		}

		if err := s.deps.Tasks.Delete(ctx, id); err != nil {
			return mapRepoError(err, ResourceTask, id, "удаление задачи")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := loadTask(ctx, s.deps.Tasks, id)
	if err != nil {
		if IsNotFound(err) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		}
		return nil, err
	}
	return t, nil
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.deps.Tasks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTasksByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "неизвестный статус "+string(status))
	}
	tasks, err := s.deps.Tasks.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("получение задач по статусу: %w", err)
	}
	return tasks, nil
}

// GetMyTasks возвращает задачи, назначенные на caller. Пустой status означает любой статус.
func (s *TaskService) GetMyTasks(ctx context.Context, caller string, status task.Status) ([]*task.Task, error) {
	actor, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	if status == "" {
		tasks, err = s.deps.Tasks.GetByAssignee(ctx, actor.ID)
	} else {
		if !status.Valid() {
			return nil, NewValidationError("status", "неизвестный статус "+string(status))
		}
		tasks, err = s.deps.Tasks.GetByAssigneeAndStatus(ctx, actor.ID, status)
	}
	if err != nil {
		return nil, fmt.Errorf("получение задач пользователя: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTasksCreatedBy(ctx context.Context, caller string) ([]*task.Task, error) {
	actor, err := resolveCaller(ctx, s.deps.Users, caller)
	if err != nil {
		return nil, err
	}
	tasks, err := s.deps.Tasks.GetByCreator(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("получение созданных задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) AddAttachment(ctx context.Context, taskID uuid.UUID, req AttachmentRequest, caller string) (*attachment.Attachment, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, NewValidationError("fileName", "обязательное поле")
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, NewValidationError("url", "обязательное поле")
	}
	if req.Size < 0 {
		return nil, NewValidationError("size", "размер не может быть отрицательным")
	}

	var created *attachment.Attachment
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := loadTask(ctx, s.deps.Tasks, taskID)
		if err != nil {
			return err
		}
		actor, err := resolveCaller(ctx, s.deps.Users, caller)
		if err != nil {
			return err
		}
		if !s.deps.Policy.Allowed(actor, permission.ActionModifyTask, t) {
			return NewForbidden("добавление вложения", ResourceTask)
		}

		a := attachment.New(t.ID, req.FileName, req.URL, req.Size, actor.ID)
		a.CreatedAt = s.deps.Clock.Now()
		if err := s.deps.Attachments.Create(ctx, a); err != nil {
			return mapRepoError(err, ResourceTask, taskID, "создание вложения")
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TaskService) GetAttachments(ctx context.Context, taskID uuid.UUID) ([]*attachment.Attachment, error) {
	if _, err := loadTask(ctx, s.deps.Tasks, taskID); err != nil {
		return nil, err
	}
	attachments, err := s.deps.Attachments.GetByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("получение вложений: %w", err)
	}
	return attachments, nil
}

func validateTaskRequest(req TaskRequest, now time.Time, requireStatus bool) error {
	titleLen := utf8.RuneCountInString(strings.TrimSpace(req.Title))
	switch {
	case titleLen == 0:
		return NewValidationError("title", "обязательное поле")
	case titleLen < titleMinLen || titleLen > titleMaxLen:
		return NewValidationError("title", fmt.Sprintf("длина должна быть от %d до %d символов", titleMinLen, titleMaxLen))
	}
	if utf8.RuneCountInString(req.Description) > descriptionMaxLen {
		return NewValidationError("description", fmt.Sprintf("не более %d символов", descriptionMaxLen))
	}
	if !req.Priority.Valid() {
		return NewValidationError("priority", "неизвестный приоритет "+string(req.Priority))
	}
	if req.Deadline.IsZero() {
		return NewValidationError("deadline", "обязательное поле")
	}
	if !req.Deadline.After(now) {
		return NewValidationError("deadline", "дедлайн должен быть в будущем")
	}
	if requireStatus && !req.Status.Valid() {
		return NewValidationError("status", "неизвестный статус "+string(req.Status))
	}
	return nil
}
