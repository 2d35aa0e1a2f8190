package mail

import (
	"fmt"
	"time"

	"taskManager/internal/models/task"
)

const deadlineLayout = "2006-01-02 15:04"

type Message struct {
	To      string
	Subject string
	Body    string
}

func AssignmentMessage(to string, t *task.Task, product string) Message {
	return Message{
		To:      to,
		Subject: "New Task Assigned: " + t.Title,
		Body: fmt.Sprintf("You have been assigned a new task:\n\n"+
			"Title: %s\n"+
			"Description: %s\n"+
			"Priority: %s\n"+
			"Deadline: %s\n\n"+
			"Please log in to %s to view details.",
			t.Title, t.Description, t.Priority, formatDeadline(t.Deadline), product),
	}
}

func DeadlineReminderMessage(to string, t *task.Task) Message {
	return Message{
		To:      to,
		Subject: "Task Deadline Reminder: " + t.Title,
		Body: fmt.Sprintf("Reminder: Your task is approaching its deadline!\n\n"+
			"Title: %s\n"+
			"Deadline: %s\n"+
			"Status: %s\n\n"+
			"Please complete the task on time.",
			t.Title, formatDeadline(t.Deadline), t.Status),
	}
}

func formatDeadline(d time.Time) string {
	return d.Format(deadlineLayout)
}
