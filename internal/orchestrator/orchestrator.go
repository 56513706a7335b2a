// Package orchestrator applies task mutations on behalf of the current viewer
// and keeps that viewer's fetched task list fresh.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/notify"
	"taskManager/internal/viewmodel"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type TaskAPI interface {
	ListTasks(ctx context.Context, userEmail string) ([]*task.Task, error)
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ShareTask(ctx context.Context, id string, userIDs []string, message string) (*dto.ShareTaskResponse, error)
}

type Notifier interface {
	Add(ctx context.Context, n notify.Notification) (notify.Notification, error)
}

// TaskInput is a new task in display terms.
type TaskInput struct {
	Title       string
	Description string
	Status      viewmodel.Status
	Priority    viewmodel.Priority
	DueDate     string
	Tags        []string
	Images      []string
	AssignedTo  []string
	SharedWith  []string
	Note        string
}

// TaskPatch is a partial update in display terms. Nil fields are left as they
// are. A nil Version is filled from the cached copy of the task when there is one.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *viewmodel.Status
	Priority    *viewmodel.Priority
	DueDate     *string
	Tags        []string
	Images      []string
	AssignedTo  []string
	Note        *string
	Version     *int
}

type BulkResult struct {
	SuccessCount int      `json:"successCount" yaml:"successCount"`
	ErrorCount   int      `json:"errorCount" yaml:"errorCount"`
	Failed       []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

type Orchestrator struct {
	api   TaskAPI
	notes Notifier

	mu     sync.Mutex
	viewer identity.Viewer
	names  identity.Names
	cache  map[identity.Viewer][]*task.Task
	// gen is bumped by Invalidate; a fetch started under an older gen is not cached.
	gen uint64
}

func New(api TaskAPI, notes Notifier, viewer identity.Viewer) *Orchestrator {
	return &Orchestrator{
		api:    api,
		notes:  notes,
		viewer: viewer,
		names:  identity.Names{},
		cache:  make(map[identity.Viewer][]*task.Task),
	}
}

func (o *Orchestrator) Viewer() identity.Viewer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewer
}

// SetViewer switches the viewer. Cached lists of other viewers are kept, but
// flags are always recomputed for whoever is current.
func (o *Orchestrator) SetViewer(v identity.Viewer) {
	o.mu.Lock()
	o.viewer = v
	o.mu.Unlock()
}

func (o *Orchestrator) Names() identity.Names {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.names
}

func (o *Orchestrator) SetNames(names identity.Names) {
	if names == nil {
		names = identity.Names{}
	}
	o.mu.Lock()
	o.names = names
	o.mu.Unlock()
}

// Invalidate drops the current viewer's cached list so the next read refetches.
func (o *Orchestrator) Invalidate() {
	o.mu.Lock()
	delete(o.cache, o.viewer)
	o.gen++
	o.mu.Unlock()
}

func (o *Orchestrator) raw(ctx context.Context) ([]*task.Task, identity.Viewer, error) {
	o.mu.Lock()
	viewer := o.viewer
	cached, ok := o.cache[viewer]
	gen := o.gen
	o.mu.Unlock()
	if ok {
		return cached, viewer, nil
	}

	fetched, err := o.api.ListTasks(ctx, viewer.Email)
	if err != nil {
		return nil, viewer, fmt.Errorf("fetching tasks: %w", err)
	}

	o.mu.Lock()
	if o.gen == gen {
		o.cache[viewer] = fetched
	}
	o.mu.Unlock()
	return fetched, viewer, nil
}

// Tasks returns the viewer's tasks mapped for that viewer, fetching when the cache is empty.
func (o *Orchestrator) Tasks(ctx context.Context) ([]viewmodel.Task, error) {
	raw, viewer, err := o.raw(ctx)
	if err != nil {
		return nil, err
	}
	return viewmodel.MapAll(raw, viewer), nil
}

// Refresh refetches unconditionally.
func (o *Orchestrator) Refresh(ctx context.Context) ([]viewmodel.Task, error) {
	o.Invalidate()
	return o.Tasks(ctx)
}

func (o *Orchestrator) cachedVersion(id string) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range o.cache[o.viewer] {
		if t.UUID.String() == id {
			return t.Version, true
		}
	}
	return 0, false
}

func (o *Orchestrator) Create(ctx context.Context, in TaskInput) (viewmodel.Task, error) {
	created, err := o.api.CreateTask(ctx, dto.CreateTaskRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(viewmodel.BackendStatus(in.Status)),
		Priority:    string(viewmodel.BackendPriority(in.Priority)),
		DueDate:     in.DueDate,
		Tags:        in.Tags,
		Images:      in.Images,
		AssignedTo:  in.AssignedTo,
		SharedWith:  in.SharedWith,
		Note:        in.Note,
	})
	if err != nil {
		return viewmodel.Task{}, fmt.Errorf("creating task: %w", err)
	}

	o.Invalidate()
	return viewmodel.Map(created, o.Viewer()), nil
}

func (o *Orchestrator) Update(ctx context.Context, id string, p TaskPatch) (viewmodel.Task, error) {
	req := dto.UpdateTaskRequest{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Tags:        p.Tags,
		Images:      p.Images,
		AssignedTo:  p.AssignedTo,
		Note:        p.Note,
		Version:     p.Version,
	}
	if p.Status != nil {
		s := string(viewmodel.BackendStatus(*p.Status))
		req.Status = &s
	}
	if p.Priority != nil {
		pr := string(viewmodel.BackendPriority(*p.Priority))
		req.Priority = &pr
	}
	if req.Version == nil {
		if v, ok := o.cachedVersion(id); ok {
			req.Version = &v
		}
	}

	updated, err := o.api.UpdateTask(ctx, id, req)
	if err != nil {
		return viewmodel.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}

	o.Invalidate()
	return viewmodel.Map(updated, o.Viewer()), nil
}

func (o *Orchestrator) SetStatus(ctx context.Context, id string, status viewmodel.Status) (viewmodel.Task, error) {
	return o.Update(ctx, id, TaskPatch{Status: &status})
}

func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	if err := o.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	o.Invalidate()
	return nil
}

// Share shares one task and records a local "shared" notification per target.
func (o *Orchestrator) Share(ctx context.Context, id string, userIDs []string, message string) (*dto.ShareTaskResponse, error) {
	resp, err := o.share(ctx, id, userIDs, message)
	if err != nil {
		return nil, err
	}
	o.Invalidate()
	return resp, nil
}

func (o *Orchestrator) share(ctx context.Context, id string, userIDs []string, message string) (*dto.ShareTaskResponse, error) {
	resp, err := o.api.ShareTask(ctx, id, userIDs, message)
	if err != nil {
		return nil, fmt.Errorf("sharing task %s: %w", id, err)
	}

	title := id
	if resp.Task != nil && resp.Task.Task != nil && resp.Task.Title != "" {
		title = resp.Task.Title
	}
	o.enqueueShared(ctx, id, title, userIDs)
	return resp, nil
}

func (o *Orchestrator) enqueueShared(ctx context.Context, taskID, title string, userIDs []string) {
	viewer := o.Viewer()
	names := o.Names()
	from := names.Resolve(viewer.ID, viewer)

	for _, uid := range identity.NormalizeIDs(userIDs) {
		target := names.Resolve(uid, viewer)
		_, err := o.notes.Add(ctx, notify.Notification{
			Type:         notify.TypeShared,
			Title:        "Task shared",
			Message:      fmt.Sprintf("You shared %q with %s", title, target),
			TaskID:       taskID,
			TaskTitle:    title,
			FromUserID:   viewer.ID,
			FromUserName: from,
		})
		if err != nil {
			logger.Error("Orchestrator: recording share notification", err,
				zap.String("task_id", taskID),
				zap.String("target", uid))
		}
	}
}

// BulkShare shares every task concurrently and waits for all calls to settle.
// There is no rollback: tasks that succeeded stay shared. Failed keeps input order.
func (o *Orchestrator) BulkShare(ctx context.Context, taskIDs, userIDs []string, message string) BulkResult {
	var g errgroup.Group
	errs := make([]error, len(taskIDs))

	for i, id := range taskIDs {
		g.Go(func() error {
			_, errs[i] = o.share(ctx, id, userIDs, message)
			return nil
		})
	}
	_ = g.Wait()

	var res BulkResult
	for i, err := range errs {
		if err != nil {
			res.ErrorCount++
			res.Failed = append(res.Failed, taskIDs[i])
			logger.Warn("Orchestrator: bulk share failed",
				zap.String("task_id", taskIDs[i]),
				zap.Error(err))
			continue
		}
		res.SuccessCount++
	}

	if res.SuccessCount > 0 {
		o.Invalidate()
	}
	logger.Info("Orchestrator: bulk share finished",
		zap.Int("success", res.SuccessCount),
		zap.Int("errors", res.ErrorCount),
		zap.String("users", strings.Join(userIDs, ",")))
	return res
}
