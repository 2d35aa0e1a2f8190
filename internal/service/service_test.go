package service_test

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/clock"
	"taskManager/internal/events"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

var _ events.Publisher = (*MockPublisher)(nil)

func eventOf(typ events.Type, check func(events.Event) bool) any {
	return mock.MatchedBy(func(e events.Event) bool {
		return e.Type == typ && (check == nil || check(e))
	})
}

type testEnv struct {
	store     *inmemory.Store
	clock     *clock.Fixed
	publisher *MockPublisher
	deps      service.Deps

	admin    *user.User
	editor   *user.User
	editor2  *user.User
	viewer   *user.User
	disabled *user.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := inmemory.NewStore()
	clk := clock.NewFixed(now)
	pub := new(MockPublisher)

	env := &testEnv{
		store:     store,
		clock:     clk,
		publisher: pub,
		deps: service.Deps{
			Tasks:         store.Tasks(),
			Users:         store.Users(),
			Comments:      store.Comments(),
			Attachments:   store.Attachments(),
			Notifications: store.Notifications(),
			Tx:            store,
			Events:        pub,
			Clock:         clk,
		},
	}

	env.admin = env.seedUser(t, "admin", user.RoleAdmin, true)
	env.editor = env.seedUser(t, "editor", user.RoleEditor, true)
	env.editor2 = env.seedUser(t, "editor2", user.RoleEditor, true)
	env.viewer = env.seedUser(t, "viewer", user.RoleViewer, true)
	env.disabled = env.seedUser(t, "disabled", user.RoleAdmin, false)
	return env
}

func (e *testEnv) seedUser(t *testing.T, username string, role user.Role, enabled bool) *user.User {
	t.Helper()
	u := user.New(username, username+"@example.com", "hash", "Full "+username)
	u.Role = role
	u.Enabled = enabled
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

// seedTask stores a task directly, bypassing the service and its events.
func (e *testEnv) seedTask(t *testing.T, title string, creator, assignee *user.User) *task.Task {
	t.Helper()
	tsk := task.New(title, creator, now.Add(48*time.Hour), task.WithAssignee(assignee))
	tsk.CreatedAt = now
	require.NoError(t, e.store.Tasks().Create(context.Background(), tsk))
	return tsk
}

func validRequest() service.TaskRequest {
	return service.TaskRequest{
		Title:       "Prepare release",
		Description: "cut the branch",
		Priority:    task.PriorityHigh,
		Deadline:    now.Add(24 * time.Hour),
		Tags:        "release,q2",
	}
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

// TestTaskService_CreateTask covers creation, assignment events and validation.
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		caller    string
		modify    func(env *testEnv, req *service.TaskRequest)
		setupMock func(env *testEnv)
		checkErr  func(error) bool
		check     func(t *testing.T, env *testEnv, created *task.Task)
	}{
		{
			name:   "success - without assignee emits nothing",
			caller: "viewer",
			check: func(t *testing.T, env *testEnv, created *task.Task) {
				assert.Equal(t, task.StatusTodo, created.Status)
				assert.Equal(t, task.DefaultCategory, created.Category)
				assert.Equal(t, env.viewer.ID, created.CreatedBy.ID)
				assert.Nil(t, created.AssignedTo)
				assert.Equal(t, now, created.CreatedAt)
				assert.Nil(t, created.CompletedAt)
			},
		},
		{
			name:   "success - status in request is ignored",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.Status = task.StatusCompleted
				req.Category = "Ops"
			},
			check: func(t *testing.T, env *testEnv, created *task.Task) {
				assert.Equal(t, task.StatusTodo, created.Status)
				assert.Equal(t, "Ops", created.Category)
				assert.Nil(t, created.CompletedAt)
			},
		},
		{
			name:   "success - assignee gets exactly one assignment event",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.AssigneeID = idPtr(env.editor.ID)
			},
			setupMock: func(env *testEnv) {
				env.publisher.On("Publish", mock.Anything, eventOf(events.TaskAssigned, func(e events.Event) bool {
					return e.Assignee.ID == env.editor.ID && e.Actor.ID == env.admin.ID && !e.Reassigned
				})).Return(nil).Once()
			},
			check: func(t *testing.T, env *testEnv, created *task.Task) {
				require.NotNil(t, created.AssignedTo)
				assert.Equal(t, env.editor.ID, created.AssignedTo.ID)
			},
		},
		{
			name:   "error - unknown assignee",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.AssigneeID = idPtr(uuid.New())
			},
			checkErr: service.IsNotFound,
		},
		{
			name:     "error - unknown caller",
			caller:   "ghost",
			checkErr: service.IsNotFound,
		},
		{
			name:     "error - disabled caller",
			caller:   "disabled",
			checkErr: service.IsForbidden,
		},
		{
			name:   "error - title too short",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.Title = "ab"
			},
			checkErr: service.IsValidation,
		},
		{
			name:   "error - deadline in the past",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.Deadline = now.Add(-time.Minute)
			},
			checkErr: service.IsValidation,
		},
		{
			name:   "error - deadline equal to now",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.Deadline = now
			},
			checkErr: service.IsValidation,
		},
		{
			name:   "error - unknown priority",
			caller: "admin",
			modify: func(env *testEnv, req *service.TaskRequest) {
				req.Priority = "CRITICAL"
			},
			checkErr: service.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := validRequest()
			if tt.modify != nil {
				tt.modify(env, &req)
			}
			if tt.setupMock != nil {
				tt.setupMock(env)
			}

			svc := service.NewTaskService(env.deps)
			created, err := svc.CreateTask(ctx, req, tt.caller)

			if tt.checkErr != nil {
				require.Error(t, err)
				assert.True(t, tt.checkErr(err), "unexpected error: %v", err)
				all, _ := env.store.Tasks().GetAll(ctx)
				assert.Empty(t, all)
			} else {
				require.NoError(t, err)
				tt.check(t, env, created)
				stored, err := env.store.Tasks().GetByID(ctx, created.ID)
				require.NoError(t, err)
				assert.Equal(t, created.Title, stored.Title)
			}
			env.publisher.AssertExpectations(t)
		})
	}
}

// TestTaskService_UpdateTask covers permissions, completion stamping and reassignment.
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("error - viewer who is neither creator nor assignee", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)

		req := validRequest()
		req.Status = task.StatusInProgress
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "viewer")

		assert.True(t, service.IsForbidden(err))
		stored, _ := env.store.Tasks().GetByID(ctx, tsk.ID)
		assert.Equal(t, "Task X", stored.Title)
	})

	t.Run("error - editor not assigned", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)

		req := validRequest()
		req.Status = task.StatusInProgress
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "editor2")
		assert.True(t, service.IsForbidden(err))
	})

	t.Run("error - task not found", func(t *testing.T) {
		env := newTestEnv(t)
		req := validRequest()
		req.Status = task.StatusTodo
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, uuid.New(), req, "admin")
		assert.True(t, service.IsNotFound(err))
	})

	t.Run("error - unknown task wins over a stale deadline", func(t *testing.T) {
		env := newTestEnv(t)
		req := validRequest()
		req.Status = task.StatusTodo
		req.Deadline = now.Add(-time.Hour)
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, uuid.New(), req, "admin")
		assert.True(t, service.IsNotFound(err))
	})

	t.Run("error - permission checked before the request", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)
		req := validRequest()
		req.Deadline = now.Add(-time.Hour)
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "viewer")
		assert.True(t, service.IsForbidden(err))
	})

	t.Run("error - missing status", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, nil)
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, validRequest(), "admin")
		assert.True(t, service.IsValidation(err))
	})

	t.Run("success - assignee editor completes task", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)
		env.clock.Advance(time.Hour)

		env.publisher.On("Publish", mock.Anything, eventOf(events.TaskCompleted, func(e events.Event) bool {
			return e.Task.ID == tsk.ID && e.Actor.ID == env.editor.ID
		})).Return(nil).Once()

		req := validRequest()
		req.Status = task.StatusCompleted
		req.Deadline = env.clock.Now().Add(time.Hour)
		updated, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "editor")
		require.NoError(t, err)

		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, now.Add(time.Hour), *updated.CompletedAt)
		assert.Equal(t, "Prepare release", updated.Title)
		assert.Equal(t, task.DefaultCategory, updated.Category)
		assert.Equal(t, env.editor.ID, updated.AssignedTo.ID, "assignee is kept")
		env.publisher.AssertExpectations(t)
	})

	t.Run("success - completion is reported on every completed update", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)
		env.publisher.On("Publish", mock.Anything, eventOf(events.TaskCompleted, nil)).Return(nil).Twice()

		svc := service.NewTaskService(env.deps)
		req := validRequest()
		req.Status = task.StatusCompleted
		_, err := svc.UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)

		env.clock.Advance(time.Minute)
		second, err := svc.UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Minute), *second.CompletedAt)
		env.publisher.AssertExpectations(t)
	})

	t.Run("success - non completed status leaves completedAt alone", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, nil)
		svc := service.NewTaskService(env.deps)

		req := validRequest()
		req.Status = task.StatusReview
		updated, err := svc.UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)
		assert.Equal(t, task.StatusReview, updated.Status)

		env.publisher.On("Publish", mock.Anything, eventOf(events.TaskCompleted, nil)).Return(nil).Once()
		req.Status = task.StatusCompleted
		completed, err := svc.UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)
		stamp := *completed.CompletedAt

		env.clock.Advance(time.Hour)
		req.Status = task.StatusBlocked
		reopened, err := svc.UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)
		require.NotNil(t, reopened.CompletedAt, "completedAt is never cleared")
		assert.Equal(t, stamp, *reopened.CompletedAt)
	})

	t.Run("success - new assignee gets one reassignment event", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)
		env.publisher.On("Publish", mock.Anything, eventOf(events.TaskAssigned, func(e events.Event) bool {
			return e.Assignee.ID == env.editor2.ID && e.Reassigned
		})).Return(nil).Once()

		req := validRequest()
		req.Status = task.StatusInProgress
		req.AssigneeID = idPtr(env.editor2.ID)
		updated, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "admin")
		require.NoError(t, err)
		assert.Equal(t, env.editor2.ID, updated.AssignedTo.ID)
		env.publisher.AssertExpectations(t)
	})

	t.Run("success - first assignee on unassigned task", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.viewer, nil)
		env.publisher.On("Publish", mock.Anything, eventOf(events.TaskAssigned, nil)).Return(nil).Once()

		req := validRequest()
		req.Status = task.StatusTodo
		req.AssigneeID = idPtr(env.editor.ID)
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "viewer")
		require.NoError(t, err)
		env.publisher.AssertExpectations(t)
	})

	t.Run("success - same assignee emits nothing", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, env.editor)

		req := validRequest()
		req.Status = task.StatusInProgress
		req.AssigneeID = idPtr(env.editor.ID)
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "editor")
		require.NoError(t, err)
		env.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("error - unknown new assignee", func(t *testing.T) {
		env := newTestEnv(t)
		tsk := env.seedTask(t, "Task X", env.admin, nil)

		req := validRequest()
		req.Status = task.StatusTodo
		req.AssigneeID = idPtr(uuid.New())
		_, err := service.NewTaskService(env.deps).UpdateTask(ctx, tsk.ID, req, "admin")
		assert.True(t, service.IsNotFound(err))
	})
}

// TestTaskService_DeleteTask covers delete permissions and cascading.
func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		caller   string
		checkErr func(error) bool
	}{
		{"success - creator", "viewer", nil},
		{"success - admin", "admin", nil},
		{"error - editor assignee may not delete", "editor", service.IsForbidden},
		{"error - unrelated editor", "editor2", service.IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tsk := env.seedTask(t, "Task X", env.viewer, env.editor)
			require.NoError(t, env.store.Comments().Create(ctx, comment.New("hi", tsk.ID, env.editor)))

			err := service.NewTaskService(env.deps).DeleteTask(ctx, tsk.ID, tt.caller)

			if tt.checkErr != nil {
				assert.True(t, tt.checkErr(err), "unexpected error: %v", err)
				_, getErr := env.store.Tasks().GetByID(ctx, tsk.ID)
				assert.NoError(t, getErr)
				return
			}
			require.NoError(t, err)
			comments, _ := env.store.Comments().GetByTask(ctx, tsk.ID)
			assert.Empty(t, comments)
		})
	}

	t.Run("error - not found", func(t *testing.T) {
		env := newTestEnv(t)
		err := service.NewTaskService(env.deps).DeleteTask(ctx, uuid.New(), "admin")
		assert.True(t, service.IsNotFound(err))
	})
}

// TestTaskService_Queries covers the read-only finders.
func TestTaskService_Queries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := service.NewTaskService(env.deps)

	mine := env.seedTask(t, "Mine", env.admin, env.editor)
	env.seedTask(t, "Other", env.editor, env.editor2)
	env.seedTask(t, "Unassigned", env.admin, nil)

	all, err := svc.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assigned, err := svc.GetMyTasks(ctx, "editor", "")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine.ID, assigned[0].ID)

	assignedTodo, err := svc.GetMyTasks(ctx, "editor", task.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, assignedTodo, 1)

	_, err = svc.GetMyTasks(ctx, "editor", "DONE")
	assert.True(t, service.IsValidation(err))

	created, err := svc.GetTasksCreatedBy(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, created, 2)

	todo, err := svc.GetTasksByStatus(ctx, task.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, todo, 3)

	_, err = svc.GetTasksByStatus(ctx, "nope")
	assert.True(t, service.IsValidation(err))

	got, err := svc.GetTaskByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	_, err = svc.GetTaskByID(ctx, uuid.New())
	assert.True(t, service.IsNotFound(err))

	assert.NoError(t, svc.HealthCheck(ctx))
}

// TestTaskService_Attachments covers adding and listing attachments.
func TestTaskService_Attachments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := service.NewTaskService(env.deps)
	tsk := env.seedTask(t, "Task X", env.admin, env.editor)

	req := service.AttachmentRequest{FileName: "plan.pdf", URL: "https://files/plan.pdf", Size: 42}

	a, err := svc.AddAttachment(ctx, tsk.ID, req, "editor")
	require.NoError(t, err)
	assert.Equal(t, env.editor.ID, a.UploadedBy)
	assert.Equal(t, now, a.CreatedAt)

	_, err = svc.AddAttachment(ctx, tsk.ID, req, "viewer")
	assert.True(t, service.IsForbidden(err))

	_, err = svc.AddAttachment(ctx, tsk.ID, service.AttachmentRequest{URL: "x"}, "admin")
	assert.True(t, service.IsValidation(err))

	list, err := svc.GetAttachments(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetAttachments(ctx, uuid.New())
	assert.True(t, service.IsNotFound(err))
}
