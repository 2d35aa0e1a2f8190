package task

import (
	"time"

	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type Priority string
type Status string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusCompleted  Status = "COMPLETED"
	StatusBlocked    Status = "BLOCKED"
)

const DefaultCategory = "General"

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Task хранит ссылки на исполнителя и автора. Репозитории заполняют их актуальными данными пользователей.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	Deadline    time.Time  `json:"deadline" db:"deadline"`
	Category    string     `json:"category" db:"category"`
	Tags        string     `json:"tags" db:"tags"`
	AssignedTo  *user.User `json:"assigned_to,omitempty"`
	CreatedBy   *user.User `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Version     int        `json:"version" db:"version"`
}

// New собирает задачу в статусе TODO с приоритетом MEDIUM и категорией по умолчанию.
func New(title string, creator *user.User, deadline time.Time, opts ...TaskOption) *Task {
	t := &Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  PriorityMedium,
		Status:    StatusTodo,
		Deadline:  deadline,
		Category:  DefaultCategory,
		CreatedBy: creator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Task) HasAssignee() bool {
	return t.AssignedTo != nil
}

func (t *Task) IsAssignedTo(id uuid.UUID) bool {
	return t.AssignedTo != nil && t.AssignedTo.ID == id
}

func (t *Task) IsCreatedBy(id uuid.UUID) bool {
	return t.CreatedBy != nil && t.CreatedBy.ID == id
}

func (t *Task) AssigneeID() *uuid.UUID {
	if t.AssignedTo == nil {
		return nil
	}
	id := t.AssignedTo.ID
	return &id
}
