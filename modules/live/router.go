package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	"github.com/go-playground/validator/v10"
)

// route binds an inbound event to its handler and the error event used to
// report its failures.
type route struct {
	errorEvent string
	handle     func(ctx context.Context, c *Client, data json.RawMessage) error
}

// on builds a route that decodes and validates a T before calling fn.
func on[T any](s *Service, errorEvent string, fn func(ctx context.Context, c *Client, payload *T) error) route {
	return route{
		errorEvent: errorEvent,
		handle: func(ctx context.Context, c *Client, data json.RawMessage) error {
			var payload T
			if len(data) > 0 && string(data) != "null" {
				if err := json.Unmarshal(data, &payload); err != nil {
					return invalid("malformed payload")
				}
			}
			if err := s.validatePayload(&payload); err != nil {
				return err
			}
			return fn(ctx, c, &payload)
		},
	}
}

func (s *Service) routes() map[string]route {
	return map[string]route{
		EventJoinPost:       on(s, EventPostError, s.joinPost),
		EventLeavePost:      on(s, EventPostError, s.leavePost),
		EventNewComment:     on(s, EventCommentError, s.newComment),
		EventUpdateComment:  on(s, EventCommentError, s.updateComment),
		EventDeleteComment:  on(s, EventCommentError, s.deleteComment),
		EventPostLike:       on(s, EventPostError, s.postLike),
		EventCommentLike:    on(s, EventCommentError, s.commentLike),
		EventTypingStart:    on(s, EventPostError, s.typingStart),
		EventTypingStop:     on(s, EventPostError, s.typingStop),
		EventUserOnline:     on(s, EventPostError, s.userOnline),
		EventPrivateMessage: on(s, EventMessageError, s.privateMessage),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("comment", func(fl validator.FieldLevel) bool {
		return blog.ValidCommentContent(fl.Field().String())
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func (s *Service) validatePayload(payload any) error {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalid("malformed payload")
	}

	verr := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nonblank":
		return "must not be blank"
	case "comment":
		return fmt.Sprintf("must be between %d and %d characters", blog.MinCommentLength, blog.MaxCommentLength)
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
