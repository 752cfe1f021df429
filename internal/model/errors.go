package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across service boundaries.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrSuspended  = errors.New("hotkey service is suspended")
)

// FileErrorKind distinguishes the failure modes of export/import files.
type FileErrorKind string

const (
	FileMissing   FileErrorKind = "missing"
	FileEmpty     FileErrorKind = "empty"
	FileMalformed FileErrorKind = "malformed"
)

// ValidationError reports bad or missing input, rejected before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an absent entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FileOperationError reports a failed export/import file operation, with
// the kind distinguishing missing file, empty content and malformed JSON.
type FileOperationError struct {
	Path string
	Kind FileErrorKind
	Err  error
}

func (e *FileOperationError) Error() string {
	return fmt.Sprintf("file operation on %q failed (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }

// StorageError wraps a repository failure with operation and collection context.
type StorageError struct {
	Operation  string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s on %s failed: %v", e.Operation, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// OperationError wraps an unexpected failure, retaining its cause.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
