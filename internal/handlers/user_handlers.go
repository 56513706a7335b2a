package handlers

import (
	"net/http"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// GetUsers lists the directory; ?search= narrows by name.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		handleError(w, r, err, "list_users")
		return
	}
	responseWithData(w, http.StatusOK, users)
}

func (h *UserHandler) GetActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListActiveUsers(r.Context())
	if err != nil {
		handleError(w, r, err, "list_active_users")
		return
	}
	responseWithData(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "get_user")
		return
	}
	responseWithData(w, http.StatusOK, u)
}

func (h *UserHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.UserService.CreateUser(r.Context(), service.CreateUserInput{
		ID:       request.ID,
		Name:     request.Name,
		Avatar:   request.Avatar,
		IsActive: request.IsActive,
	})
	if err != nil {
		handleError(w, r, err, "create_user")
		return
	}
	responseWithData(w, http.StatusCreated, u)
}

func (h *UserHandler) PutUser(w http.ResponseWriter, r *http.Request) {
	var request dto.UpdateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.UserService.UpdateUser(r.Context(), chi.URLParam(r, "id"), service.UpdateUserInput{
		Name:     request.Name,
		Avatar:   request.Avatar,
		IsActive: request.IsActive,
	})
	if err != nil {
		handleError(w, r, err, "update_user")
		return
	}
	responseWithData(w, http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "delete_user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
