package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	ListVisibleTo(ctx context.Context, userID, email string) ([]*task.Task, error)
	Delete(context.Context, uuid.UUID) error
}

type UserRepository interface {
	Create(context.Context, *user.ExternalUser) error
	Update(context.Context, *user.ExternalUser) error
	GetByID(context.Context, string) (*user.ExternalUser, error)
	List(ctx context.Context, search string, activeOnly bool) ([]*user.ExternalUser, error)
	Delete(context.Context, string) error
}
