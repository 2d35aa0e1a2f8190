package inmemory

import (
	"context"

	"taskManager/internal/models/attachment"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type AttachmentStorage struct {
	s *Store
}

func (r *AttachmentStorage) Create(ctx context.Context, a *attachment.Attachment) error {
	r.s.mtx.Lock()
	defer r.s.mtx.Unlock()

	if _, ok := r.s.tasks[a.TaskID]; !ok {
		return repo.ErrNotFound
	}

	stored := *a
	r.s.attachments[a.ID] = &stored
	r.s.attachmentIDs = append(r.s.attachmentIDs, a.ID)
	return nil
}

func (r *AttachmentStorage) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*attachment.Attachment, error) {
	r.s.mtx.RLock()
	defer r.s.mtx.RUnlock()

	res := []*attachment.Attachment{}
	for _, id := range r.s.attachmentIDs {
		if a := r.s.attachments[id]; a.TaskID == taskID {
			cp := *a
			res = append(res, &cp)
		}
	}
	return res, nil
}
