package dto

import (
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/service"
)

type CreateTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	DueDate     string         `json:"dueDate"`
	Tags        []string       `json:"tags"`
	Images      []string       `json:"images"`
	AssignedTo  task.Assignees `json:"assignedTo"`
	SharedWith  []string       `json:"sharedWith"`
	Note        string         `json:"note"`
}

func (r CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Tags:        r.Tags,
		Images:      r.Images,
		AssignedTo:  r.AssignedTo,
		SharedWith:  r.SharedWith,
		Note:        r.Note,
	}
}

// UpdateTaskRequest is partial: absent or null fields stay unchanged,
// "dueDate": "" clears the due date and "assignedTo": [] assigns the owner.
type UpdateTaskRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *string        `json:"status,omitempty"`
	Priority    *string        `json:"priority,omitempty"`
	DueDate     *string        `json:"dueDate,omitempty"`
	Tags        []string       `json:"tags"`
	Images      []string       `json:"images"`
	AssignedTo  task.Assignees `json:"assignedTo"`
	Note        *string        `json:"note,omitempty"`
	Version     *int           `json:"version,omitempty"`
}

func (r UpdateTaskRequest) ToInput() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Tags:        r.Tags,
		Images:      r.Images,
		AssignedTo:  r.AssignedTo,
		Note:        r.Note,
		Version:     r.Version,
	}
}

type ShareTaskRequest struct {
	UserIDs []string `json:"userIds"`
	Message string   `json:"message,omitempty"`
}

type ShareTaskResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Task    *TaskResponse `json:"task,omitempty"`
}

type TaskResponse struct {
	*task.Task
	IsOverdue bool `json:"isOverdue"`
}

func FromTask(t *task.Task) *TaskResponse {
	return &TaskResponse{Task: t, IsOverdue: t.IsOverdue(time.Now())}
}

func FromTaskList(tasks []*task.Task) []*TaskResponse {
	result := make([]*TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CreateUserRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type UploadResponse struct {
	Files []string `json:"files"`
}
