package service

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeForbidden       = "FORBIDDEN"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeAlreadyExists   = "ALREADY_EXISTS"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id),
		ToDetail("resource", resource), ToDetail("id", id))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation, fmt.Sprintf("invalid value for '%s': %s", field, reason),
		ToDetail("field", field), ToDetail("reason", reason))
}

func NewForbidden(action, id string) *BusinessError {
	return NewBusinessError(CodeForbidden, fmt.Sprintf("not allowed to %s %s", action, id),
		ToDetail("action", action), ToDetail("id", id))
}

func NewVersionConflict(id string, expected int) *BusinessError {
	return NewBusinessError(CodeVersionConflict, fmt.Sprintf("task %s was modified concurrently", id),
		ToDetail("id", id), ToDetail("expected_version", expected))
}

func NewAlreadyExists(resource, id string) *BusinessError {
	return NewBusinessError(CodeAlreadyExists, fmt.Sprintf("%s %s already exists", resource, id),
		ToDetail("resource", resource), ToDetail("id", id))
}
