package live

import (
	"errors"
	"strings"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
)

var (
	// ErrUnauthenticated is returned when the handshake credential is missing or invalid.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced post, comment or user is missing.
	ErrNotFound = errors.New("not found")
	// ErrPersistence is returned when the store fails.
	ErrPersistence = errors.New("persistence failure")
	// ErrUnauthorized is returned when the caller may not act on an entity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is returned when a connection exceeds its event budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// FieldError describes one invalid payload field. Field is empty for
// payload-level problems.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports a malformed event payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// Unwrap makes every ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Fields: []FieldError{{Message: message}}}
}

// handlerError carries a taxonomy kind, a client-facing message and the
// underlying cause.
type handlerError struct {
	kind  error
	msg   string
	cause error
}

func (e *handlerError) Error() string        { return e.msg }
func (e *handlerError) Is(target error) bool { return target == e.kind }
func (e *handlerError) Unwrap() error        { return e.cause }

func unauthorized(message string) error {
	return &handlerError{kind: ErrUnauthorized, msg: message}
}

var errRateLimited = &handlerError{kind: ErrRateLimited, msg: "too many events, slow down"}

// classify maps a collaborator error onto the live taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized), errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrPersistence):
		return err
	case errors.Is(err, blog.ErrPostNotFound),
		errors.Is(err, blog.ErrCommentNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return &handlerError{kind: ErrNotFound, msg: err.Error(), cause: err}
	case errors.Is(err, blog.ErrPostNotPublished),
		errors.Is(err, blog.ErrInvalidParent),
		errors.Is(err, blog.ErrInvalidContent),
		errors.Is(err, blog.ErrInvalidLikeMode):
		return invalid(err.Error())
	default:
		return &handlerError{kind: ErrPersistence, msg: "could not save your change, please try again", cause: err}
	}
}

// errorCode names the taxonomy kind of err for clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "persistence_failure"
	}
}
