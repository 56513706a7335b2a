package client

import (
	"context"
	"net/http"
	"net/url"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/models/user"
)

func userPath(id string) string {
	return "/external-users/" + url.PathEscape(id)
}

func (c *Client) ListUsers(ctx context.Context, search string) ([]*user.ExternalUser, error) {
	path := "/external-users"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	var out []*user.ExternalUser
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ActiveUsers(ctx context.Context) ([]*user.ExternalUser, error) {
	var out []*user.ExternalUser
	if err := c.get(ctx, "/external-users/active", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*user.ExternalUser, error) {
	var out user.ExternalUser
	if err := c.get(ctx, userPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*user.ExternalUser, error) {
	var out user.ExternalUser
	if err := c.mutate(ctx, http.MethodPost, "/external-users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*user.ExternalUser, error) {
	var out user.ExternalUser
	if err := c.mutate(ctx, http.MethodPut, userPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, userPath(id), nil, nil)
}
