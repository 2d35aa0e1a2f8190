package comment

import (
	"time"

	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Content   string     `json:"content" db:"content"`
	TaskID    uuid.UUID  `json:"task_id" db:"task_id"`
	Author    *user.User `json:"author"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func New(content string, taskID uuid.UUID, author *user.User) *Comment {
	return &Comment{
		ID:      uuid.New(),
		Content: content,
		TaskID:  taskID,
		Author:  author,
	}
}

func (c *Comment) IsAuthoredBy(id uuid.UUID) bool {
	return c.Author != nil && c.Author.ID == id
}
