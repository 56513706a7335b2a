package category

import (
	"fmt"
	"slices"
	"strings"

	"taskManager/internal/viewmodel"
)

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortTitle     SortField = "title"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortCreatedAt, nil
	case SortCreatedAt, SortDueDate, SortPriority, SortTitle:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// Sort returns a sorted copy of tasks. Equal elements keep their input order.
// Tasks without a due date go last when sorting by due date, in either direction.
func Sort(tasks []viewmodel.Task, field SortField, desc bool) []viewmodel.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b viewmodel.Task) int {
		if field == SortDueDate {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
		}
		c := compare(a, b, field)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func compare(a, b viewmodel.Task, field SortField) int {
	switch field {
	case SortDueDate:
		return a.DueDate.Compare(*b.DueDate)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
