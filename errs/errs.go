// Package errs defines the domain error taxonomy. Repositories translate
// store-level failures into these values at the point of occurrence;
// services and any transport layer react to them with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for callers to map to HTTP status.
var (
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrCurrentUserNotFound = errors.New("current user does not exist")
	ErrEmailNotFound       = errors.New("email does not exist")
	ErrUsernameTaken       = errors.New("username is taken")
	ErrEmailTaken          = errors.New("email is taken")
	ErrProfileNotFound     = errors.New("user profile not found")
	ErrArticleNotFound     = errors.New("article not found")
)

// DuplicateSlugError reports an article slug collision, carrying the
// offending slug so the transport layer can surface it as a field error.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate article slug: %q", e.Slug)
}

// Internal wraps an unexpected failure. The wrapped cause is logged at the
// boundary but never exposed to the caller.
func Internal(err error) error {
	return fmt.Errorf("internal error: %w", err)
}

// StatusCode returns the HTTP status a transport layer should respond with.
// Unauthorized responses additionally carry a "WWW-Authenticate: Token" hint.
func StatusCode(err error) int {
	var dup *DuplicateSlugError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrCurrentUserNotFound),
		errors.Is(err, ErrProfileNotFound),
		errors.Is(err, ErrArticleNotFound):
		return 404
	case errors.Is(err, ErrEmailNotFound),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.As(err, &dup):
		return 422
	default:
		return 500
	}
}

// FieldErrors returns the {field: [messages]} body for 422 responses,
// or nil when the error is not a validation conflict.
func FieldErrors(err error) map[string][]string {
	var dup *DuplicateSlugError
	switch {
	case errors.Is(err, ErrEmailNotFound):
		return map[string][]string{"email": {"does not exist"}}
	case errors.Is(err, ErrUsernameTaken):
		return map[string][]string{"username": {"username is taken"}}
	case errors.Is(err, ErrEmailTaken):
		return map[string][]string{"email": {"email is taken"}}
	case errors.As(err, &dup):
		return map[string][]string{"slug": {fmt.Sprintf("duplicate article slug: %q", dup.Slug)}}
	default:
		return nil
	}
}
