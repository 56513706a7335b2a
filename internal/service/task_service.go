package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLen       = 500
	maxDescriptionLen = 3000
	maxNoteLen        = 1000
)

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Tags        []string
	Images      []string
	AssignedTo  []string
	SharedWith  []string
	Note        string
}

// UpdateTaskInput is a partial update: nil fields are left unchanged.
// Version, when set, must equal the stored version.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	Tags        []string
	Images      []string
	AssignedTo  []string
	Note        *string
	Version     *int
}

type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Overdue    int            `json:"overdue"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
}

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return &d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func validateLengths(title, description, note *string) error {
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return NewValidationError("title", "must not be empty")
		}
		if utf8.RuneCountInString(*title) > maxTitleLen {
			return NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
	if note != nil && utf8.RuneCountInString(*note) > maxNoteLen {
		return NewValidationError("note", fmt.Sprintf("must be at most %d characters", maxNoteLen))
	}
	return nil
}

func canSee(t *task.Task, caller identity.Viewer) bool {
	return (caller.ID != "" && t.OwnerID == caller.ID) ||
		t.IsAssignee(caller.ID, caller.Email) ||
		t.IsSharedWith(caller.ID, caller.Email)
}

// CreateTask stores a new task owned by caller. Unknown enum values fall back
// to the defaults and an empty assignee list assigns the owner.
func (s *TaskService) CreateTask(ctx context.Context, caller identity.Viewer, in CreateTaskInput) (*task.Task, error) {
	if caller.ID == "" {
		return nil, NewValidationError("userId", "caller is not identified")
	}
	if err := validateLengths(&in.Title, &in.Description, &in.Note); err != nil {
		return nil, err
	}

	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, NewValidationError("dueDate", "expected YYYY-MM-DD")
	}

	status, ok := task.ParseStatus(in.Status)
	if !ok && in.Status != "" {
		logger.Debug("Service: unknown status, using default", zap.String("status", in.Status))
	}
	priority, _ := task.ParsePriority(in.Priority)

	now := s.now()
	t := &task.Task{
		UUID:        uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   now,
		Tags:        nonNil(in.Tags),
		Images:      nonNil(in.Images),
		OwnerID:     caller.ID,
		SharedWith:  dedupe(identity.NormalizeIDs(in.SharedWith), caller.ID),
	}
	task.Apply(t, task.WithAssignees(identity.NormalizeIDs(in.AssignedTo)))
	if in.Note != "" {
		task.Apply(t, task.WithNote(in.Note, caller.ID))
	}
	if status == task.StatusDone {
		t.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewAlreadyExists("task", t.UUID.String())
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created", zap.String("task_id", t.UUID.String()), zap.String("owner", caller.ID))
	return t, nil
}

func (s *TaskService) getVisible(ctx context.Context, caller identity.Viewer, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	if !canSee(t, caller) {
		return nil, NewForbidden("access task", id.String())
	}
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, caller identity.Viewer, id uuid.UUID) (*task.Task, error) {
	return s.getVisible(ctx, caller, id)
}

// ListTasks returns every task the caller owns, is assigned to or has been
// shared with, in creation order.
func (s *TaskService) ListTasks(ctx context.Context, caller identity.Viewer) ([]*task.Task, error) {
	tasks, err := s.repo.ListVisibleTo(ctx, caller.ID, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, caller identity.Viewer, id uuid.UUID, in UpdateTaskInput) (*task.Task, error) {
	if err := validateLengths(in.Title, in.Description, in.Note); err != nil {
		return nil, err
	}

	t, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Version != nil {
		if *in.Version != t.Version {
			return nil, NewVersionConflict(id.String(), *in.Version)
		}
	}

	var opts []task.TaskOption
	if in.Title != nil {
		opts = append(opts, task.WithTitle(strings.TrimSpace(*in.Title)))
	}
	if in.Description != nil {
		opts = append(opts, task.WithDescription(*in.Description))
	}
	if in.Status != nil {
		if st, ok := task.ParseStatus(*in.Status); ok {
			opts = append(opts, task.WithStatus(st, s.now()))
		}
	}
	if in.Priority != nil {
		if p, ok := task.ParsePriority(*in.Priority); ok {
			opts = append(opts, task.WithPriority(p))
		}
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, NewValidationError("dueDate", "expected YYYY-MM-DD")
		}
		opts = append(opts, task.WithDueDate(due))
	}
	if in.Tags != nil {
		opts = append(opts, task.WithTags(in.Tags))
	}
	if in.Images != nil {
		opts = append(opts, task.WithImages(in.Images))
	}
	if in.AssignedTo != nil {
		opts = append(opts, task.WithAssignees(identity.NormalizeIDs(in.AssignedTo)))
	}
	if in.Note != nil && *in.Note != t.Note {
		opts = append(opts, task.WithNote(*in.Note, caller.ID))
	}

	task.Apply(t, opts...)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, s.mapWriteError(err, id, t.Version)
	}
	return t, nil
}

func (s *TaskService) mapWriteError(err error, id uuid.UUID, version int) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		return NewNotFound("task", id.String())
	case errors.Is(err, rep.ErrVersionConflict):
		return NewVersionConflict(id.String(), version)
	default:
		return fmt.Errorf("updating task: %w", err)
	}
}

// DeleteTask removes a task. Only the owner may delete.
func (s *TaskService) DeleteTask(ctx context.Context, caller identity.Viewer, id uuid.UUID) error {
	t, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	if t.OwnerID != caller.ID {
		return NewForbidden("delete task", id.String())
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("task", id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

// ShareTask adds userIDs to the share targets. The owner and ids already
// present are skipped; the result is the updated task and how many ids were added.
func (s *TaskService) ShareTask(ctx context.Context, caller identity.Viewer, id uuid.UUID, userIDs []string, message string) (*task.Task, int, error) {
	ids := identity.NormalizeIDs(userIDs)
	if len(ids) == 0 {
		return nil, 0, NewValidationError("userIds", "at least one user is required")
	}

	t, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return nil, 0, err
	}

	before := len(t.SharedWith)
	t.SharedWith = dedupe(append(t.SharedWith, ids...), t.OwnerID)
	added := len(t.SharedWith) - before

	if added > 0 {
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, 0, s.mapWriteError(err, id, t.Version)
		}
	}

	logger.Info("Service: task shared",
		zap.String("task_id", id.String()),
		zap.Strings("targets", ids),
		zap.Int("added", added),
		zap.String("message", message))
	return t, added, nil
}

func (s *TaskService) Stats(ctx context.Context, caller identity.Viewer) (*TaskStats, error) {
	tasks, err := s.ListTasks(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &TaskStats{
		Total:      len(tasks),
		ByStatus:   make(map[string]int, len(task.Statuses)),
		ByPriority: make(map[string]int, len(task.Priorities)),
	}
	for _, st := range task.Statuses {
		stats.ByStatus[string(st)] = 0
	}
	for _, p := range task.Priorities {
		stats.ByPriority[string(p)] = 0
	}
	for _, t := range tasks {
		stats.ByStatus[string(t.Status)]++
		stats.ByPriority[string(t.Priority)]++
		if t.Status == task.StatusDone {
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// dedupe keeps the first occurrence of each id and drops skip.
func dedupe(ids []string, skip string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == skip {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
