// Package category selects, searches and orders view-model tasks for display.
package category

import (
	"fmt"
	"strings"

	"taskManager/internal/identity"
	"taskManager/internal/viewmodel"
)

type Category string

const (
	All             Category = "all"
	My              Category = "my"
	Assigned        Category = "assigned"
	AssignedToUsers Category = "assigned-to-users"
	Shared          Category = "shared"
)

var Categories = []Category{All, My, Assigned, AssignedToUsers, Shared}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return All, nil
	}
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Policy decides which of the viewer's own tasks count as assigned to other users.
type Policy string

const (
	// PolicyInclusive counts every task created by the viewer with a non-empty
	// assignee list, including tasks assigned only to the viewer.
	PolicyInclusive Policy = "inclusive"
	// PolicyExcludeSelf additionally requires an assignee other than the viewer.
	PolicyExcludeSelf Policy = "exclude-self"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyInclusive:
		return PolicyInclusive, nil
	case PolicyExcludeSelf:
		return PolicyExcludeSelf, nil
	}
	return "", fmt.Errorf("unknown assigned-to-users policy %q", s)
}

// AssignedToUsers reports whether t belongs to the assigned-to-users category.
func (p Policy) AssignedToUsers(t viewmodel.Task, viewer identity.Viewer) bool {
	if !t.IsCreatedByMe || len(t.AssignedTo) == 0 {
		return false
	}
	if p != PolicyExcludeSelf {
		return true
	}
	for _, ref := range t.AssignedTo {
		if !viewer.Matches(ref.ID) {
			return true
		}
	}
	return false
}

// Filter is a category selection plus the optional narrowing used by the task list.
// Zero values mean "no restriction".
type Filter struct {
	Category   Category
	AssignedBy string
	Policy     Policy
	Search     string
	Status     viewmodel.Status
	Priority   viewmodel.Priority
}

func (f Filter) matchesCategory(t viewmodel.Task, viewer identity.Viewer) bool {
	switch f.Category {
	case "", All:
		return true
	case My:
		return t.IsCreatedByMe
	case Assigned:
		if !t.IsAssignedToMe {
			return false
		}
		return f.AssignedBy == "" || t.OwnerID == f.AssignedBy
	case AssignedToUsers:
		return f.Policy.AssignedToUsers(t, viewer)
	case Shared:
		return t.IsSharedWithMe
	}
	return false
}

func (f Filter) matches(t viewmodel.Task, viewer identity.Viewer, search string) bool {
	if !f.matchesCategory(t, viewer) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if search != "" &&
		!strings.Contains(strings.ToLower(t.Title), search) &&
		!strings.Contains(strings.ToLower(t.Description), search) {
		return false
	}
	return true
}

// Apply returns the tasks that pass the filter, in their original order.
func (f Filter) Apply(tasks []viewmodel.Task, viewer identity.Viewer) []viewmodel.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]viewmodel.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t, viewer, search) {
			out = append(out, t)
		}
	}
	return out
}

// Chip is one assigned-by quick filter: a user who assigned tasks to the viewer.
type Chip struct {
	OwnerID string `json:"ownerId" yaml:"ownerId"`
	Name    string `json:"name" yaml:"name"`
	Count   int    `json:"count" yaml:"count"`
}

// AssignerChips lists the distinct owners of tasks assigned to the viewer,
// excluding the viewer, in first-seen order.
func AssignerChips(tasks []viewmodel.Task, viewer identity.Viewer, names identity.Names) []Chip {
	idx := make(map[string]int)
	chips := make([]Chip, 0)
	for _, t := range tasks {
		if !t.IsAssignedToMe || t.OwnerID == "" || t.OwnerID == viewer.ID {
			continue
		}
		if i, ok := idx[t.OwnerID]; ok {
			chips[i].Count++
			continue
		}
		idx[t.OwnerID] = len(chips)
		chips = append(chips, Chip{
			OwnerID: t.OwnerID,
			Name:    names.Resolve(t.OwnerID, viewer),
			Count:   1,
		})
	}
	return chips
}
