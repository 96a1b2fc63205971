package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("You do not have permission to perform this action.")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("resource was modified concurrently")

	ErrInvalidCredentials = errors.New("Invalid username or password.")
)

// ValidationError reports a rejected input or a broken domain rule against a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PermissionError is a role or ownership mismatch.
type PermissionError struct {
	Message string
}

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return ErrPermissionDenied.Error()
	}
	return e.Message
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// NotFoundError names the missing entity, e.g. "Notification not found".
type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
