package task

import (
	"time"
)

// TaskOption is a single partial update. Constructors return nil when the
// input means "leave the field unchanged"; Apply skips nil options.
type TaskOption func(*Task)

func Apply(t *Task, opts ...TaskOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
}

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

// WithStatus also maintains CompletedAt: set when the task moves into done,
// cleared when it moves out.
func WithStatus(status Status, now time.Time) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		if status == StatusDone && task.Status != StatusDone {
			task.CompletedAt = &now
		} else if status != StatusDone {
			task.CompletedAt = nil
		}
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithDueDate sets the due date; nil clears it.
func WithDueDate(due *time.Time) TaskOption {
	return func(task *Task) {
		task.DueDate = due
	}
}

func WithTags(tags []string) TaskOption {
	return func(task *Task) {
		task.Tags = tags
	}
}

func WithImages(images []string) TaskOption {
	return func(task *Task) {
		task.Images = images
	}
}

// WithAssignees replaces the assignee list. An empty list assigns the owner.
func WithAssignees(ids []string) TaskOption {
	return func(task *Task) {
		if len(ids) == 0 {
			task.AssignedTo = Assignees{task.OwnerID}
			return
		}
		task.AssignedTo = ids
	}
}

func WithNote(note, authorID string) TaskOption {
	return func(task *Task) {
		task.Note = note
		if note == "" {
			task.NoteAuthorID = ""
			return
		}
		task.NoteAuthorID = authorID
	}
}
