// Package viewmodel turns backend task records into viewer-relative view models.
package viewmodel

import (
	"strings"
	"time"

	"taskManager/internal/identity"
	"taskManager/internal/models/task"
)

type Status string
type Priority string

const (
	StatusTodo       Status = "to do"
	StatusInProgress Status = "in progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

var statusToDisplay = map[task.Status]Status{
	task.StatusTodo:       StatusTodo,
	task.StatusInProgress: StatusInProgress,
	task.StatusDone:       StatusDone,
	task.StatusCancelled:  StatusCancelled,
}

var priorityToDisplay = map[task.Priority]Priority{
	task.PriorityLow:      PriorityLow,
	task.PriorityMedium:   PriorityMedium,
	task.PriorityHigh:     PriorityHigh,
	task.PriorityCritical: PriorityCritical,
}

var statusToBackend = invert(statusToDisplay)
var priorityToBackend = invert(priorityToDisplay)

func invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// DisplayStatus translates a backend status; unknown values become "to do".
func DisplayStatus(s task.Status) Status {
	if d, ok := statusToDisplay[s]; ok {
		return d
	}
	return StatusTodo
}

// DisplayPriority translates a backend priority; unknown values become "medium".
func DisplayPriority(p task.Priority) Priority {
	if d, ok := priorityToDisplay[p]; ok {
		return d
	}
	return PriorityMedium
}

// BackendStatus translates a display status; unknown values become DO_ZROBIENIA.
func BackendStatus(s Status) task.Status {
	if b, ok := statusToBackend[s]; ok {
		return b
	}
	return task.StatusTodo
}

// BackendPriority translates a display priority; unknown values become SREDNI.
func BackendPriority(p Priority) task.Priority {
	if b, ok := priorityToBackend[p]; ok {
		return b
	}
	return task.PriorityMedium
}

// ParseStatus accepts a display value in any case.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	_, ok := statusToBackend[st]
	return st, ok
}

// ParsePriority accepts a display value in any case.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	_, ok := priorityToBackend[p]
	return p, ok
}

// Rank orders priorities: critical 4, high 3, medium 2, low 1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is a backend task seen by one viewer. The Is* flags are never stored
// and must be recomputed with Map whenever the viewer or the raw task changes.
type Task struct {
	ID           string         `json:"id" yaml:"id"`
	Title        string         `json:"title" yaml:"title"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status       Status         `json:"status" yaml:"status"`
	Priority     Priority       `json:"priority" yaml:"priority"`
	DueDate      *time.Time     `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    *time.Time     `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	Tags         []string       `json:"tags" yaml:"tags"`
	Images       []string       `json:"images" yaml:"images"`
	OwnerID      string         `json:"userId" yaml:"userId"`
	AssignedTo   []identity.Ref `json:"assignedTo" yaml:"assignedTo"`
	SharedWith   []identity.Ref `json:"sharedWith" yaml:"sharedWith"`
	Note         string         `json:"note,omitempty" yaml:"note,omitempty"`
	NoteAuthorID string         `json:"noteAuthorId,omitempty" yaml:"noteAuthorId,omitempty"`
	Version      int            `json:"version" yaml:"version"`

	IsCreatedByMe  bool `json:"isCreatedByMe" yaml:"isCreatedByMe"`
	IsAssignedToMe bool `json:"isAssignedToMe" yaml:"isAssignedToMe"`
	IsSharedWithMe bool `json:"isSharedWithMe" yaml:"isSharedWithMe"`
}

// AssigneeIDs returns the normalized assignee ids.
func (t Task) AssigneeIDs() []string {
	return refIDs(t.AssignedTo)
}

// ShareTargetIDs returns the normalized share-target ids.
func (t Task) ShareTargetIDs() []string {
	return refIDs(t.SharedWith)
}

func refIDs(refs []identity.Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

func toRefs(raw []string) []identity.Ref {
	out := make([]identity.Ref, 0, len(raw))
	for _, r := range raw {
		if ref := identity.ParseRef(r); ref.ID != "" {
			out = append(out, ref)
		}
	}
	return out
}

func matchesAny(v identity.Viewer, refs []identity.Ref) bool {
	for _, r := range refs {
		if v.Matches(r.ID) {
			return true
		}
	}
	return false
}

// Map derives the view model of raw for viewer. With no known viewer identity
// every flag is false.
func Map(raw *task.Task, viewer identity.Viewer) Task {
	vm := Task{
		ID:           raw.UUID.String(),
		Title:        raw.Title,
		Description:  raw.Description,
		Status:       DisplayStatus(raw.Status),
		Priority:     DisplayPriority(raw.Priority),
		DueDate:      raw.DueDate,
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
		CompletedAt:  raw.CompletedAt,
		Tags:         raw.Tags,
		Images:       raw.Images,
		OwnerID:      raw.OwnerID,
		AssignedTo:   toRefs(raw.AssignedTo),
		SharedWith:   toRefs(raw.SharedWith),
		Note:         raw.Note,
		NoteAuthorID: raw.NoteAuthorID,
		Version:      raw.Version,
	}

	if !viewer.Known() {
		return vm
	}

	vm.IsCreatedByMe = viewer.ID != "" && raw.OwnerID == viewer.ID
	vm.IsAssignedToMe = matchesAny(viewer, vm.AssignedTo)
	vm.IsSharedWithMe = !vm.IsCreatedByMe && len(vm.SharedWith) > 0 && matchesAny(viewer, vm.SharedWith)
	return vm
}

// MapAll maps every task, keeping order.
func MapAll(raw []*task.Task, viewer identity.Viewer) []Task {
	out := make([]Task, 0, len(raw))
	for _, t := range raw {
		out = append(out, Map(t, viewer))
	}
	return out
}
