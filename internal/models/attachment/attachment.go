package attachment

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TaskID     uuid.UUID `json:"task_id" db:"task_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	URL        string    `json:"url" db:"url"`
	Size       int64     `json:"size" db:"size"`
	UploadedBy uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func New(taskID uuid.UUID, fileName, url string, size int64, uploadedBy uuid.UUID) *Attachment {
	return &Attachment{
		ID:         uuid.New(),
		TaskID:     taskID,
		FileName:   fileName,
		URL:        url,
		Size:       size,
		UploadedBy: uploadedBy,
	}
}
