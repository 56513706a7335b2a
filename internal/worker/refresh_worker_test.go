package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskManager/internal/identity"
	"taskManager/internal/models/task"
	"taskManager/internal/notify"
	"taskManager/internal/viewmodel"
	"taskManager/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	viewer identity.Viewer
	raw    []*task.Task
	err    error
	calls  int
}

func (f *fakeSource) Refresh(context.Context) ([]viewmodel.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return viewmodel.MapAll(f.raw, f.viewer), nil
}

func (f *fakeSource) Viewer() identity.Viewer { return f.viewer }
func (f *fakeSource) Names() identity.Names   { return identity.Names{"u1": "Anna"} }

func (f *fakeSource) set(raw []*task.Task) {
	f.mu.Lock()
	f.raw = raw
	f.mu.Unlock()
}

func assignedTo(viewerID string) *task.Task {
	return &task.Task{
		UUID:       uuid.New(),
		Title:      "Review",
		Status:     task.StatusTodo,
		Priority:   task.PriorityMedium,
		OwnerID:    "u1",
		AssignedTo: task.Assignees{viewerID},
	}
}

func newDedup(t *testing.T) (*notify.Deduplicator, *notify.Store) {
	t.Helper()
	store, err := notify.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return notify.NewDeduplicator(store), store
}

func TestRefreshWorker_CheckIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dedup, store := newDedup(t)
	source := &fakeSource{viewer: identity.Viewer{ID: "u2"}, raw: []*task.Task{assignedTo("u2")}}
	w := worker.NewRefreshWorker(source, dedup, nil, nil)

	pass, err := w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pass.Tasks)
	require.Len(t, pass.Emitted, 1)
	assert.Equal(t, "Anna", pass.Emitted[0].FromUserName)

	pass, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, pass.Emitted)

	unread, err := store.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestRefreshWorker_PrunesVanishedTasks(t *testing.T) {
	ctx := context.Background()
	dedup, store := newDedup(t)
	kept, gone := assignedTo("u2"), assignedTo("u2")
	source := &fakeSource{viewer: identity.Viewer{ID: "u2"}, raw: []*task.Task{kept, gone}}
	w := worker.NewRefreshWorker(source, dedup, nil, nil)

	_, err := w.Check(ctx)
	require.NoError(t, err)

	source.set([]*task.Task{kept})
	pass, err := w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pass.Pruned)

	count, err := store.MarkerCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRefreshWorker_CheckError(t *testing.T) {
	dedup, _ := newDedup(t)
	source := &fakeSource{err: errors.New("connection refused")}
	w := worker.NewRefreshWorker(source, dedup, nil, nil)

	_, err := w.Check(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestRefreshWorker_StartStopsOnCancel(t *testing.T) {
	dedup, _ := newDedup(t)
	source := &fakeSource{viewer: identity.Viewer{ID: "u2"}, raw: []*task.Task{assignedTo("u2")}}

	passes := make(chan worker.Pass, 16)
	interval := 5 * time.Millisecond
	w := worker.NewRefreshWorker(source, dedup, &interval, func(p worker.Pass) {
		select {
		case passes <- p:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	first := <-passes
	assert.Len(t, first.Emitted, 1)
	second := <-passes
	assert.Empty(t, second.Emitted)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
