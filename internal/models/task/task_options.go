package task

import (
	"taskManager/internal/models/user"
)

type TaskOption func(*Task)

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(t *Task) {
		t.Description = description
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(t *Task) {
		t.Priority = priority
	}
}

func WithCategory(category string) TaskOption {
	if category == "" {
		return nil
	}
	return func(t *Task) {
		t.Category = category
	}
}

func WithTags(tags string) TaskOption {
	if tags == "" {
		return nil
	}
	return func(t *Task) {
		t.Tags = tags
	}
}

func WithAssignee(assignee *user.User) TaskOption {
	if assignee == nil {
		return nil
	}
	return func(t *Task) {
		t.AssignedTo = assignee
	}
}
