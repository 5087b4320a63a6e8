package blog

import "errors"

var (
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrPostNotPublished is returned when commenting on a draft.
	ErrPostNotPublished = errors.New("post is not published")
	// ErrCommentNotFound is returned when a comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrInvalidParent is returned when a reply targets a comment on another
	// post or a comment that is itself a reply.
	ErrInvalidParent = errors.New("invalid parent comment")
	// ErrInvalidPost is returned when a post has no title or content.
	ErrInvalidPost = errors.New("post title and content are required")
	// ErrInvalidContent is returned when a comment body is out of bounds.
	ErrInvalidContent = errors.New("comment content must be between 1 and 1000 characters")
	// ErrInvalidLikeMode is returned for an unknown like mode.
	ErrInvalidLikeMode = errors.New("invalid like mode")
)
