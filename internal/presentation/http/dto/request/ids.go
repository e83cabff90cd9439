package request

import (
	"errors"

	"github.com/google/uuid"
)

var errInvalidID = errors.New("must be a valid UUID")

// ParseID parses a UUID sent in a body field or path segment.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
