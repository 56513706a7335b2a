package category_test

import (
	"testing"
	"time"

	"taskManager/internal/category"
	"taskManager/internal/identity"
	"taskManager/internal/models/task"
	"taskManager/internal/viewmodel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var me = identity.Viewer{ID: "u1", Email: "me@example.com", Name: "Me"}

func mapped(title, owner string, assigned, shared []string) viewmodel.Task {
	return viewmodel.Map(&task.Task{
		UUID:       uuid.New(),
		Title:      title,
		Status:     task.StatusTodo,
		Priority:   task.PriorityMedium,
		OwnerID:    owner,
		AssignedTo: assigned,
		SharedWith: shared,
	}, me)
}

func titles(tasks []viewmodel.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func fixture() []viewmodel.Task {
	return []viewmodel.Task{
		mapped("mine-self", "u1", []string{"u1"}, nil),
		mapped("from-u2", "u2", []string{"u1"}, nil),
		mapped("shared-by-u3", "u3", nil, []string{"u1"}),
		mapped("mine-to-u4", "u1", []string{"u4"}, nil),
		mapped("from-u3", "u3", []string{"me@example.com"}, nil),
		mapped("foreign", "u5", []string{"u6"}, nil),
	}
}

func TestFilter_Categories(t *testing.T) {
	tests := []struct {
		name   string
		filter category.Filter
		want   []string
	}{
		{
			name:   "all",
			filter: category.Filter{Category: category.All},
			want:   []string{"mine-self", "from-u2", "shared-by-u3", "mine-to-u4", "from-u3", "foreign"},
		},
		{
			name:   "my",
			filter: category.Filter{Category: category.My},
			want:   []string{"mine-self", "mine-to-u4"},
		},
		{
			name:   "assigned",
			filter: category.Filter{Category: category.Assigned},
			want:   []string{"mine-self", "from-u2", "from-u3"},
		},
		{
			name:   "assigned by u3",
			filter: category.Filter{Category: category.Assigned, AssignedBy: "u3"},
			want:   []string{"from-u3"},
		},
		{
			name:   "assigned-to-users inclusive",
			filter: category.Filter{Category: category.AssignedToUsers, Policy: category.PolicyInclusive},
			want:   []string{"mine-self", "mine-to-u4"},
		},
		{
			name:   "assigned-to-users exclude self",
			filter: category.Filter{Category: category.AssignedToUsers, Policy: category.PolicyExcludeSelf},
			want:   []string{"mine-to-u4"},
		},
		{
			name:   "shared",
			filter: category.Filter{Category: category.Shared},
			want:   []string{"shared-by-u3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(fixture(), me)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilter_AllReturnsEveryTaskOnce(t *testing.T) {
	in := fixture()
	out := category.Filter{}.Apply(in, me)
	assert.Equal(t, titles(in), titles(out))
}

func TestFilter_SearchStatusPriority(t *testing.T) {
	tasks := fixture()
	tasks[1].Description = "Quarterly REPORT"
	tasks[3].Status = viewmodel.StatusDone
	tasks[4].Priority = viewmodel.PriorityCritical

	got := category.Filter{Search: "report"}.Apply(tasks, me)
	assert.Equal(t, []string{"from-u2"}, titles(got))

	got = category.Filter{Search: "MINE"}.Apply(tasks, me)
	assert.Equal(t, []string{"mine-self", "mine-to-u4"}, titles(got))

	got = category.Filter{Category: category.My, Status: viewmodel.StatusDone}.Apply(tasks, me)
	assert.Equal(t, []string{"mine-to-u4"}, titles(got))

	got = category.Filter{Priority: viewmodel.PriorityCritical}.Apply(tasks, me)
	assert.Equal(t, []string{"from-u3"}, titles(got))
}

func TestParse(t *testing.T) {
	c, err := category.ParseCategory("Assigned-To-Users")
	require.NoError(t, err)
	assert.Equal(t, category.AssignedToUsers, c)

	c, err = category.ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, category.All, c)

	_, err = category.ParseCategory("archived")
	assert.Error(t, err)

	p, err := category.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, category.PolicyInclusive, p)

	_, err = category.ParsePolicy("strict")
	assert.Error(t, err)

	f, err := category.ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, category.SortCreatedAt, f)

	_, err = category.ParseSortField("owner")
	assert.Error(t, err)
}

func TestAssignerChips(t *testing.T) {
	tasks := append(fixture(), mapped("from-u2-again", "u2", []string{"u1"}, nil))
	names := identity.Names{"u2": "Anna"}

	chips := category.AssignerChips(tasks, me, names)
	assert.Equal(t, []category.Chip{
		{OwnerID: "u2", Name: "Anna", Count: 2},
		{OwnerID: "u3", Name: "u3", Count: 1},
	}, chips)
}

func TestSort(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day := func(n int) *time.Time {
		d := base.AddDate(0, 0, n)
		return &d
	}

	tasks := []viewmodel.Task{
		{Title: "b", Priority: viewmodel.PriorityLow, CreatedAt: base.Add(2 * time.Hour), DueDate: day(3)},
		{Title: "A", Priority: viewmodel.PriorityCritical, CreatedAt: base.Add(1 * time.Hour)},
		{Title: "c", Priority: viewmodel.PriorityHigh, CreatedAt: base.Add(3 * time.Hour), DueDate: day(1)},
		{Title: "d", Priority: viewmodel.PriorityLow, CreatedAt: base, DueDate: day(2)},
	}

	tests := []struct {
		field category.SortField
		desc  bool
		want  []string
	}{
		{category.SortCreatedAt, false, []string{"d", "A", "b", "c"}},
		{category.SortCreatedAt, true, []string{"c", "b", "A", "d"}},
		{category.SortTitle, false, []string{"A", "b", "c", "d"}},
		{category.SortPriority, true, []string{"A", "c", "b", "d"}},
		{category.SortPriority, false, []string{"b", "d", "c", "A"}},
		{category.SortDueDate, false, []string{"c", "d", "b", "A"}},
		{category.SortDueDate, true, []string{"b", "d", "c", "A"}},
	}

	for _, tt := range tests {
		got := category.Sort(tasks, tt.field, tt.desc)
		assert.Equal(t, tt.want, titles(got), "%s desc=%v", tt.field, tt.desc)
	}
	assert.Equal(t, []string{"b", "A", "c", "d"}, titles(tasks), "input must not be reordered")
}
