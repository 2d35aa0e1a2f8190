package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeTaskAssigned     Type = "TASK_ASSIGNED"
	TypeTaskUpdated      Type = "TASK_UPDATED"
	TypeTaskComment      Type = "TASK_COMMENT"
	TypeDeadlineReminder Type = "DEADLINE_REMINDER"
	TypeTaskCompleted    Type = "TASK_COMPLETED"
	TypeMention          Type = "MENTION"
)

type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Message   string     `json:"message" db:"message"`
	Type      Type       `json:"type" db:"type"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TaskID    *uuid.UUID `json:"task_id,omitempty" db:"task_id"`
	TaskTitle string     `json:"task_title,omitempty"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
}

func New(userID uuid.UUID, message string, typ Type, createdAt time.Time) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Message:   message,
		Type:      typ,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// MarkRead переводит уведомление в прочитанные. readAt выставляется только при первом прочтении.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &at
	return true
}
