package domain

import "fmt"

// NotFoundError indicates that a requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError indicates invalid input or a violated business rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// UnauthorizedError indicates a missing or invalid credential.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// NewUnauthorizedError creates an UnauthorizedError with the given message.
func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{Message: msg}
}

// ForbiddenError indicates the caller is authenticated but not allowed.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(msg string) *ForbiddenError {
	return &ForbiddenError{Message: msg}
}

// ConflictError indicates the operation lost to a concurrent writer or
// would violate a uniqueness rule (e.g. an already-taken date range).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{Message: msg}
}

// InvalidStateError indicates a state-machine transition outside the
// allowed transition table. The message names the attempted pair.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid booking status transition: %s -> %s", e.From, e.To)
}

// NewInvalidStateError creates an InvalidStateError for the attempted transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}
