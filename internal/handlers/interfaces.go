package handlers

import (
	"context"

	"taskManager/internal/models/attachment"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, req service.TaskRequest, caller string) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req service.TaskRequest, caller string) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID, caller string) error
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	GetAllTasks(ctx context.Context) ([]*task.Task, error)
	GetTasksByStatus(ctx context.Context, status task.Status) ([]*task.Task, error)
	GetMyTasks(ctx context.Context, caller string, status task.Status) ([]*task.Task, error)
	GetTasksCreatedBy(ctx context.Context, caller string) ([]*task.Task, error)
	AddAttachment(ctx context.Context, taskID uuid.UUID, req service.AttachmentRequest, caller string) (*attachment.Attachment, error)
	GetAttachments(ctx context.Context, taskID uuid.UUID) ([]*attachment.Attachment, error)
}

type CommentService interface {
	AddComment(ctx context.Context, req service.CommentRequest, caller string) (*comment.Comment, error)
	GetCommentsByTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID, caller string) error
}

type NotificationService interface {
	GetMyNotifications(ctx context.Context, caller string) ([]*notification.Notification, error)
	GetUnreadNotifications(ctx context.Context, caller string) ([]*notification.Notification, error)
	CountUnread(ctx context.Context, caller string) (int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, caller string) (*notification.Notification, error)
	MarkAllAsRead(ctx context.Context, caller string) (int, error)
}

type UserService interface {
	GetAllUsers(ctx context.Context) ([]*user.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetCurrentUser(ctx context.Context, caller string) (*user.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role user.Role, caller string) (*user.User, error)
	UpdateEnabled(ctx context.Context, id uuid.UUID, enabled bool, caller string) (*user.User, error)
}

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
}

var (
	_ TaskService         = (*service.TaskService)(nil)
	_ CommentService      = (*service.CommentService)(nil)
	_ NotificationService = (*service.NotificationService)(nil)
	_ UserService         = (*service.UserService)(nil)
	_ AuthService         = (*service.AuthService)(nil)
)
