package authmap

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by Store.Write when the document changed since it
// was fetched. Callers restart their cycle from Fetch.
var ErrConflict = errors.New("aws-auth was modified concurrently")

// DecodeError is returned when a field is present but does not hold a
// sequence of mapping records. It is never repaired automatically.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode aws-auth field %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err contains a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
