package task

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID         uuid.UUID  `json:"id" db:"uuid"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	Status       Status     `json:"status" db:"status"`
	Priority     Priority   `json:"priority" db:"priority"`
	DueDate      *time.Time `json:"dueDate,omitempty" db:"due_date"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	Tags         []string   `json:"tags" db:"tags"`
	Images       []string   `json:"images" db:"images"`
	OwnerID      string     `json:"userId" db:"owner_id"`
	AssignedTo   Assignees  `json:"assignedTo" db:"assigned_to"`
	SharedWith   []string   `json:"sharedWith" db:"shared_with"`
	Note         string     `json:"note,omitempty" db:"note"`
	NoteAuthorID string     `json:"noteAuthorId,omitempty" db:"note_author_id"`
	Version      int        `json:"version" db:"version"`
}

type Status string
type Priority string

const (
	StatusTodo       Status = "DO_ZROBIENIA"
	StatusInProgress Status = "W_TRAKCIE"
	StatusDone       Status = "ZAKONCZONE"
	StatusCancelled  Status = "ANULOWANE"
)

const (
	PriorityLow      Priority = "NISKI"
	PriorityMedium   Priority = "SREDNI"
	PriorityHigh     Priority = "WYSOKI"
	PriorityCritical Priority = "KRYTYCZNY"
)

const (
	DefaultStatus   = StatusTodo
	DefaultPriority = PriorityMedium
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ParseStatus matches s case-insensitively. Unknown values yield the default
// status and ok=false.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return DefaultStatus, false
}

// ParsePriority matches s case-insensitively. Unknown values yield the default
// priority and ok=false.
func ParsePriority(s string) (Priority, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, p := range Priorities {
		if string(p) == s {
			return p, true
		}
	}
	return DefaultPriority, false
}

// Assignees is the assignee list. Older payloads carry a single string instead
// of an array; both decode into the same list.
type Assignees []string

func (a *Assignees) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*a = Assignees{}
		} else {
			*a = Assignees{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = list
	return nil
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (t *Task) Clone() *Task {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	c.Images = append([]string(nil), t.Images...)
	c.AssignedTo = append(Assignees(nil), t.AssignedTo...)
	c.SharedWith = append([]string(nil), t.SharedWith...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	if t.CompletedAt != nil {
		cm := *t.CompletedAt
		c.CompletedAt = &cm
	}
	return &c
}

// IsOverdue reports whether the due date has passed for a task that is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone || t.Status == StatusCancelled {
		return false
	}
	return t.DueDate.Before(now)
}

// IsAssignee reports whether any of ids is in the assignee list.
func (t *Task) IsAssignee(ids ...string) bool {
	return containsAny(t.AssignedTo, ids)
}

// IsSharedWith reports whether any of ids is a share target.
func (t *Task) IsSharedWith(ids ...string) bool {
	return containsAny(t.SharedWith, ids)
}

func containsAny(list, ids []string) bool {
	for _, v := range list {
		for _, id := range ids {
			if id != "" && v == id {
				return true
			}
		}
	}
	return false
}
