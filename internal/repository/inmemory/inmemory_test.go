package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskManager/internal/models/attachment"
	"taskManager/internal/models/comment"
	"taskManager/internal/models/notification"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *inmemory.Store, username string) *user.User {
	t.Helper()
	u := user.New(username, username+"@example.com", "hash", "Full "+username)
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

// TestUserStorage_Create checks uniqueness of username and email.
func TestUserStorage_Create(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	seedUser(t, store, "alice")

	tests := []struct {
		name        string
		user        *user.User
		expectedErr error
	}{
		{"success - new user", user.New("bob", "bob@example.com", "h", "Bob"), nil},
		{"error - duplicate username", user.New("alice", "other@example.com", "h", "A"), repository.ErrAlreadyExists},
		{"error - duplicate email ignoring case", user.New("carol", "ALICE@example.com", "h", "C"), repository.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Users().Create(ctx, tt.user)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	exists, err := store.Users().ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Users().ExistsByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestTaskStorage_CreateAndGet checks that reads return copies hydrated with current user data.
func TestTaskStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	creator := seedUser(t, store, "creator")
	assignee := seedUser(t, store, "assignee")

	tsk := task.New("Test Task", creator, time.Now().Add(time.Hour), task.WithAssignee(assignee))
	require.NoError(t, store.Tasks().Create(ctx, tsk))
	assert.Equal(t, 1, tsk.Version)

	assignee.FullName = "Renamed"
	require.NoError(t, store.Users().Update(ctx, assignee))

	got, err := store.Tasks().GetByID(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", got.Title)
	assert.Equal(t, "Renamed", got.AssignedTo.FullName)

	got.Title = "mutated"
	again, err := store.Tasks().GetByID(ctx, tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", again.Title)

	_, err = store.Tasks().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Update checks optimistic versioning.
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	creator := seedUser(t, store, "creator")

	tsk := task.New("v1", creator, time.Now().Add(time.Hour))
	require.NoError(t, store.Tasks().Create(ctx, tsk))

	first, _ := store.Tasks().GetByID(ctx, tsk.ID)
	second, _ := store.Tasks().GetByID(ctx, tsk.ID)

	first.Title = "v2"
	require.NoError(t, store.Tasks().Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Title = "stale"
	assert.ErrorIs(t, store.Tasks().Update(ctx, second), repository.ErrVersionConflict)

	missing := task.New("missing", creator, time.Now())
	assert.ErrorIs(t, store.Tasks().Update(ctx, missing), repository.ErrNotFound)
}

// TestTaskStorage_Finders checks status, assignee, creator and deadline finders.
func TestTaskStorage_Finders(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	creator := seedUser(t, store, "creator")
	assignee := seedUser(t, store, "assignee")
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	inWindow := task.New("in window", creator, now.Add(12*time.Hour), task.WithAssignee(assignee))
	atStart := task.New("at start", creator, now)
	atEnd := task.New("at end", creator, now.Add(24*time.Hour))
	done := task.New("done", assignee, now.Add(48*time.Hour), task.WithAssignee(assignee))
	done.Status = task.StatusCompleted

	for _, tsk := range []*task.Task{inWindow, atStart, atEnd, done} {
		require.NoError(t, store.Tasks().Create(ctx, tsk))
	}

	due, err := store.Tasks().GetDueBetween(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "in window", due[0].Title)
	assert.Equal(t, "at start", due[1].Title)

	byStatus, _ := store.Tasks().GetByStatus(ctx, task.StatusCompleted)
	assert.Len(t, byStatus, 1)

	mine, _ := store.Tasks().GetByAssignee(ctx, assignee.ID)
	assert.Len(t, mine, 2)

	created, _ := store.Tasks().GetByCreator(ctx, creator.ID)
	assert.Len(t, created, 3)

	mineDone, _ := store.Tasks().GetByAssigneeAndStatus(ctx, assignee.ID, task.StatusCompleted)
	require.Len(t, mineDone, 1)
	assert.Equal(t, "done", mineDone[0].Title)

	all, _ := store.Tasks().GetAll(ctx)
	assert.Len(t, all, 4)
}

// TestTaskStorage_DeleteCascade checks that comments and attachments go away with the task.
func TestTaskStorage_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	creator := seedUser(t, store, "creator")

	tsk := task.New("doomed", creator, time.Now().Add(time.Hour))
	other := task.New("kept", creator, time.Now().Add(time.Hour))
	require.NoError(t, store.Tasks().Create(ctx, tsk))
	require.NoError(t, store.Tasks().Create(ctx, other))

	require.NoError(t, store.Comments().Create(ctx, comment.New("a", tsk.ID, creator)))
	require.NoError(t, store.Comments().Create(ctx, comment.New("b", tsk.ID, creator)))
	require.NoError(t, store.Comments().Create(ctx, comment.New("c", other.ID, creator)))
	require.NoError(t, store.Attachments().Create(ctx, attachment.New(tsk.ID, "f.txt", "http://x/f.txt", 10, creator.ID)))

	n := notification.New(creator.ID, "msg", notification.TypeTaskAssigned, time.Now())
	n.TaskID = &tsk.ID
	require.NoError(t, store.Notifications().Create(ctx, n))

	require.NoError(t, store.Tasks().Delete(ctx, tsk.ID))

	comments, _ := store.Comments().GetByTask(ctx, tsk.ID)
	assert.Empty(t, comments)
	attachments, _ := store.Attachments().GetByTask(ctx, tsk.ID)
	assert.Empty(t, attachments)
	kept, _ := store.Comments().GetByTask(ctx, other.ID)
	assert.Len(t, kept, 1)

	got, err := store.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TaskID)

	assert.ErrorIs(t, store.Tasks().Delete(ctx, tsk.ID), repository.ErrNotFound)
}

// TestNotificationStorage checks ordering, unread counters and bulk read.
func TestNotificationStorage(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	owner := seedUser(t, store, "owner")
	stranger := seedUser(t, store, "stranger")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		n := notification.New(owner.ID, fmt.Sprintf("n%d", i), notification.TypeTaskComment, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Notifications().Create(ctx, n))
	}
	require.NoError(t, store.Notifications().Create(ctx, notification.New(stranger.ID, "x", notification.TypeTaskComment, base)))

	list, err := store.Notifications().GetByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n2", list[0].Message)
	assert.Equal(t, "n0", list[2].Message)

	count, _ := store.Notifications().CountUnreadByUser(ctx, owner.ID)
	assert.Equal(t, 3, count)

	readAt := base.Add(time.Hour)
	updated, err := store.Notifications().MarkAllRead(ctx, owner.ID, readAt)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	unread, _ := store.Notifications().GetUnreadByUser(ctx, owner.ID)
	assert.Empty(t, unread)
	count, _ = store.Notifications().CountUnreadByUser(ctx, stranger.ID)
	assert.Equal(t, 1, count)

	orphan := notification.New(uuid.New(), "x", notification.TypeMention, base)
	assert.ErrorIs(t, store.Notifications().Create(ctx, orphan), repository.ErrNotFound)
}

// TestNotificationStorage_MarkReadOnce checks that a second first-read keeps the original readAt.
func TestNotificationStorage_MarkReadOnce(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	owner := seedUser(t, store, "owner")
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	n := notification.New(owner.ID, "hello", notification.TypeTaskAssigned, base)
	require.NoError(t, store.Notifications().Create(ctx, n))

	// both readers loaded the row while it was unread
	first, err := store.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	second, err := store.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.False(t, first.IsRead)
	require.False(t, second.IsRead)

	changed, err := store.Notifications().MarkRead(ctx, n.ID, base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Notifications().MarkRead(ctx, n.ID, base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := store.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, base.Add(time.Minute), *got.ReadAt)

	_, err = store.Notifications().MarkRead(ctx, uuid.New(), base)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Concurrency checks that concurrent writers do not race.
func TestTaskStorage_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	creator := seedUser(t, store, "creator")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tsk := task.New(fmt.Sprintf("task %d", i), creator, time.Now().Add(time.Hour))
			assert.NoError(t, store.Tasks().Create(ctx, tsk))
			_, err := store.Tasks().GetAll(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := store.Tasks().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
