package service

import (
	"fmt"
	"todoTracker/internal/models/todo"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
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
	return Detail{
		Key:     key,
		Payload: payload,
	}
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

func NewNotFound(id int64) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("todo %d not found", id),
		ToDetail("id", id),
	)
}

// NewValidationFailed carries every violation; nothing has been applied.
func NewValidationFailed(violations todo.Violations) *BusinessError {
	return NewBusinessError(CodeValidation,
		"validation failed",
		ToDetail("violations", []todo.Violation(violations)),
	)
}

// NewStoreUnavailable hides the store failure from clients but keeps it for logs.
func NewStoreUnavailable(op string, err error) *BusinessError {
	busErr := NewBusinessError(CodeStoreUnavailable, "storage is unavailable")
	busErr.Err = fmt.Errorf("%s: %w", op, err)
	return busErr
}
