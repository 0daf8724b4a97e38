package service

import "errors"

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering a taken username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned when the follow edge already exists.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrNotFollowing is returned when unfollowing without a follow edge.
	ErrNotFollowing = errors.New("not following")
	// ErrPermissionDenied is returned when the caller does not own the resource.
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError carries a caller-facing message for rejected input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validation constructs a ValidationError with the given message.
func Validation(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
