package mail_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskManager/internal/mail"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// blockingSender holds every send until release is closed.
type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	sent    []mail.Message
}

func (b *blockingSender) Send(ctx context.Context, msg mail.Message) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
	return nil
}

// TestDispatcher_DeliversQueuedMessages checks that Close drains the queue.
func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool { return m.To == "a@example.com" })).Return(nil).Once()
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool { return m.To == "b@example.com" })).Return(errors.New("smtp down")).Once()

	d := mail.NewDispatcher(sender, mail.DispatcherConfig{Workers: 2, QueueSize: 10, SendTimeout: time.Second})
	d.Start()

	require.NoError(t, d.Dispatch(mail.Message{To: "a@example.com", Subject: "s"}))
	require.NoError(t, d.Dispatch(mail.Message{To: "b@example.com", Subject: "s"}))
	d.Close()

	sender.AssertExpectations(t)
	assert.ErrorIs(t, d.Dispatch(mail.Message{To: "late@example.com"}), mail.ErrClosed)
}

// TestDispatcher_QueueFull checks that a full queue rejects without blocking.
func TestDispatcher_QueueFull(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	d := mail.NewDispatcher(sender, mail.DispatcherConfig{Workers: 1, QueueSize: 1, SendTimeout: time.Second})
	d.Start()

	require.NoError(t, d.Dispatch(mail.Message{To: "first@example.com"}))

	var lastErr error
	require.Eventually(t, func() bool {
		lastErr = d.Dispatch(mail.Message{To: "overflow@example.com"})
		return errors.Is(lastErr, mail.ErrQueueFull)
	}, time.Second, 5*time.Millisecond)

	close(sender.release)
	d.Close()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.NotEmpty(t, sender.sent)
	assert.Equal(t, "first@example.com", sender.sent[0].To)
}

// TestDispatcher_RunStopsOnCancel checks the errgroup-friendly Run loop.
func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	d := mail.NewDispatcher(sender, mail.DispatcherConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.NoError(t, d.Dispatch(mail.Message{To: "x@example.com"}))
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestMessages(t *testing.T) {
	creator := user.New("a", "a@example.com", "h", "A")
	deadline := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	tsk := task.New("Ship release", creator, deadline, task.WithDescription("cut the tag"), task.WithPriority(task.PriorityHigh))

	assignment := mail.AssignmentMessage("b@example.com", tsk, "Task Manager")
	assert.Equal(t, "b@example.com", assignment.To)
	assert.Equal(t, "New Task Assigned: Ship release", assignment.Subject)
	assert.Contains(t, assignment.Body, "Description: cut the tag")
	assert.Contains(t, assignment.Body, "Priority: HIGH")
	assert.Contains(t, assignment.Body, "Deadline: 2026-03-01 18:30")
	assert.Contains(t, assignment.Body, "Please log in to Task Manager to view details.")

	reminder := mail.DeadlineReminderMessage("b@example.com", tsk)
	assert.Equal(t, "Task Deadline Reminder: Ship release", reminder.Subject)
	assert.Contains(t, reminder.Body, "Status: TODO")
	assert.Contains(t, reminder.Body, "Please complete the task on time.")
}
