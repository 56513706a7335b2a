package handlers

import (
	"context"

	"taskManager/internal/identity"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, identity.Viewer, service.CreateTaskInput) (*task.Task, error)
	GetTask(context.Context, identity.Viewer, uuid.UUID) (*task.Task, error)
	ListTasks(context.Context, identity.Viewer) ([]*task.Task, error)
	UpdateTask(context.Context, identity.Viewer, uuid.UUID, service.UpdateTaskInput) (*task.Task, error)
	DeleteTask(context.Context, identity.Viewer, uuid.UUID) error
	ShareTask(ctx context.Context, caller identity.Viewer, id uuid.UUID, userIDs []string, message string) (*task.Task, int, error)
	Stats(context.Context, identity.Viewer) (*service.TaskStats, error)
}

type UserService interface {
	CreateUser(context.Context, service.CreateUserInput) (*user.ExternalUser, error)
	GetUser(context.Context, string) (*user.ExternalUser, error)
	ListUsers(ctx context.Context, search string) ([]*user.ExternalUser, error)
	ListActiveUsers(context.Context) ([]*user.ExternalUser, error)
	UpdateUser(context.Context, string, service.UpdateUserInput) (*user.ExternalUser, error)
	DeleteUser(context.Context, string) error
}

var (
	_ TaskService = (*service.TaskService)(nil)
	_ UserService = (*service.UserService)(nil)
)
