package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced is returned when a row cannot be removed because others point at it.
	ErrReferenced = errors.New("row is still referenced")
)
