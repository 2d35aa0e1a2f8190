package permission

import (
	"taskManager/internal/models/comment"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type Action string

const (
	ActionModifyTask    Action = "modify_task"
	ActionDeleteTask    Action = "delete_task"
	ActionDeleteComment Action = "delete_comment"
	ActionManageUsers   Action = "manage_users"
)

// Policy решает, может ли subject выполнить action над resource.
type Policy interface {
	Allowed(subject *user.User, action Action, resource any) bool
}

// RolePolicy реализует правила на основе ролей ADMIN/EDITOR/VIEWER.
type RolePolicy struct{}

func (RolePolicy) Allowed(subject *user.User, action Action, resource any) bool {
	switch action {
	case ActionModifyTask:
		t, ok := resource.(*task.Task)
		return ok && CanModify(t, subject)
	case ActionDeleteTask:
		t, ok := resource.(*task.Task)
		return ok && CanDelete(t, subject)
	case ActionDeleteComment:
		c, ok := resource.(*comment.Comment)
		return ok && CanDeleteComment(c, subject)
	case ActionManageUsers:
		return CanManageUsers(subject)
	}
	return false
}

func CanModify(t *task.Task, u *user.User) bool {
	if t == nil || u == nil {
		return false
	}
	if u.IsAdmin() || t.IsCreatedBy(u.ID) {
		return true
	}
	return u.IsEditor() && t.IsAssignedTo(u.ID)
}

func CanDelete(t *task.Task, u *user.User) bool {
	if t == nil || u == nil {
		return false
	}
	return u.IsAdmin() || t.IsCreatedBy(u.ID)
}

func CanDeleteComment(c *comment.Comment, u *user.User) bool {
	if c == nil || u == nil {
		return false
	}
	return c.IsAuthoredBy(u.ID) || u.IsAdmin()
}

func CanManageUsers(u *user.User) bool {
	return u.IsAdmin()
}
