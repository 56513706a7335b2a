package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

type CreateUserInput struct {
	ID       string
	Name     string
	Avatar   string
	IsActive *bool
}

type UpdateUserInput struct {
	Name     *string
	Avatar   *string
	IsActive *bool
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*user.ExternalUser, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" {
		return nil, NewValidationError("id", "must not be empty")
	}
	if in.Name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	u := &user.ExternalUser{ID: in.ID, Name: in.Name, Avatar: in.Avatar, IsActive: true}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewAlreadyExists("user", in.ID)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	logger.Info("Service: external user created", zap.String("user_id", u.ID))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.ExternalUser, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("user", id)
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, search string) ([]*user.ExternalUser, error) {
	users, err := s.repo.List(ctx, search, false)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) ListActiveUsers(ctx context.Context) ([]*user.ExternalUser, error) {
	users, err := s.repo.List(ctx, "", true)
	if err != nil {
		return nil, fmt.Errorf("listing active users: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*user.ExternalUser, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		u.Name = name
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("user", id)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("user", id)
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
