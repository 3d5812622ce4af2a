package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidField = errors.New("invalid reservation field")

	ErrTimeConflict = errors.New("reservation time conflicts with existing reservation")

	ErrCancelled = errors.New("operation declined")

	ErrCorruptStore = errors.New("reservation store content is malformed")

	ErrStaleSelection = errors.New("selected reservation changed since it was listed")
)
