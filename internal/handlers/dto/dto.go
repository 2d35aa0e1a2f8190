package dto

import (
	"time"

	"taskManager/internal/models/attachment"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type TaskRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	Priority     string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	Status       string     `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS REVIEW COMPLETED BLOCKED"`
	Deadline     time.Time  `json:"deadline" validate:"required"`
	Category     string     `json:"category" validate:"max=50"`
	Tags         string     `json:"tags" validate:"max=500"`
	AssignedToID *uuid.UUID `json:"assignedToId"`
}

func (r TaskRequest) ToService() service.TaskRequest {
	return service.TaskRequest{
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		Status:      task.Status(r.Status),
		Deadline:    r.Deadline,
		Category:    r.Category,
		Tags:        r.Tags,
		AssigneeID:  r.AssignedToID,
	}
}

type CommentRequest struct {
	TaskID  uuid.UUID `json:"taskId" validate:"required"`
	Content string    `json:"content" validate:"required,max=5000"`
}

type AttachmentRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url"`
	Size     int64  `json:"size" validate:"gte=0"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"fullName" validate:"max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN EDITOR VIEWER"`
}

type StatusRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	Deadline       time.Time  `json:"deadline"`
	Category       string     `json:"category"`
	Tags           string     `json:"tags"`
	AssignedToID   *uuid.UUID `json:"assignedToId,omitempty"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	CreatedByID    *uuid.UUID `json:"createdById,omitempty"`
	CreatedByName  string     `json:"createdByName,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Version        int        `json:"version"`
}

func FromTask(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Deadline:    t.Deadline,
		Category:    t.Category,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
		Version:     t.Version,
	}
	if t.AssignedTo != nil {
		id := t.AssignedTo.ID
		resp.AssignedToID = &id
		resp.AssignedToName = t.AssignedTo.FullName
	}
	if t.CreatedBy != nil {
		id := t.CreatedBy.ID
		resp.CreatedByID = &id
		resp.CreatedByName = t.CreatedBy.FullName
	}
	return resp
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	TaskID    uuid.UUID `json:"taskId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromComment(c *comment.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		resp.UserID = c.Author.ID
		resp.UserName = c.Author.FullName
	}
	return resp
}

func FromCommentList(comments []*comment.Comment) []CommentResponse {
	result := make([]CommentResponse, len(comments))
	for i, c := range comments {
		result[i] = FromComment(c)
	}
	return result
}

type AttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"taskId"`
	FileName   string    `json:"fileName"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromAttachment(a *attachment.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		TaskID:     a.TaskID,
		FileName:   a.FileName,
		URL:        a.URL,
		Size:       a.Size,
		UploadedBy: a.UploadedBy,
		CreatedAt:  a.CreatedAt,
	}
}

func FromAttachmentList(attachments []*attachment.Attachment) []AttachmentResponse {
	result := make([]AttachmentResponse, len(attachments))
	for i, a := range attachments {
		result[i] = FromAttachment(a)
	}
	return result
}

type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"isRead"`
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
	TaskTitle string     `json:"taskTitle,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

func FromNotification(n *notification.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
	if n.TaskID != nil {
		resp.TaskID = n.TaskID
		resp.TaskTitle = n.TaskTitle
	}
	return resp
}

func FromNotificationList(notifications []*notification.Notification) []NotificationResponse {
	result := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		result[i] = FromNotification(n)
	}
	return result
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
	}
}

func FromUserList(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

type AuthResponse struct {
	Token     string       `json:"token"`
	Type      string       `json:"type"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func FromAuthResult(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     res.Token,
		Type:      "Bearer",
		ExpiresAt: res.ExpiresAt,
		User:      FromUser(res.User),
	}
}
