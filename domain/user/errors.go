package user

import "errors"

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")
