package models

import (
	"errors"
	"fmt"
)

// Error classes. Test with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("not authorized")
	ErrDuplicate      = errors.New("duplicate record")
	ErrNotFound       = errors.New("record not found")
	ErrUpload         = errors.New("image upload failed")
	ErrPersistence    = errors.New("persistence failed")
	ErrPartialCleanup = errors.New("image cleanup incomplete")
	ErrUpstream       = errors.New("upstream service failed")
)

// Error pairs an error class with the message shown to the user. The cause
// is kept for logs and errors.Is but never part of Error().
type Error struct {
	Class error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Cause}
}

func newError(class, cause error, format string, args ...any) error {
	return &Error{Class: class, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func ValidationError(format string, args ...any) error {
	return newError(ErrValidation, nil, format, args...)
}

func AuthorizationError(format string, args ...any) error {
	return newError(ErrUnauthorized, nil, format, args...)
}

func DuplicateError(format string, args ...any) error {
	return newError(ErrDuplicate, nil, format, args...)
}

func NotFoundError(kind Kind, id string) error {
	return newError(ErrNotFound, nil, "%s record %q not found", kind, id)
}

func UploadError(cause error, format string, args ...any) error {
	return newError(ErrUpload, cause, format, args...)
}

func PersistenceError(cause error, format string, args ...any) error {
	return newError(ErrPersistence, cause, format, args...)
}

func UpstreamError(cause error, format string, args ...any) error {
	return newError(ErrUpstream, cause, format, args...)
}

// CleanupWarning reports an image that could not be removed from the asset
// host while the owning record operation went ahead.
type CleanupWarning struct {
	Kind     Kind
	RecordID string
	Image    ImageRef
	Cause    error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("image %s of %s record %q was not removed from the image host", w.Image.DisplayURL, w.Kind, w.RecordID)
}

func (w *CleanupWarning) Unwrap() []error {
	if w.Cause == nil {
		return []error{ErrPartialCleanup}
	}
	return []error{ErrPartialCleanup, w.Cause}
}

// Message returns the single human-readable line for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	var w *CleanupWarning
	if errors.As(err, &w) {
		return w.Error()
	}
	return "Something went wrong. Please try again."
}
