package identity

import "fmt"

// Reason classifies a non-fatal outcome.
type Reason string

const (
	// ReasonNotFound is reported when a removal targets a username not in the list.
	ReasonNotFound Reason = "NotFound"
	// ReasonUnrecognized is reported when a record without a usable discriminant is dropped.
	ReasonUnrecognized Reason = "UnrecognizedMapping"
	// ReasonInvalid is reported when a declared mapping fails validation and is skipped.
	ReasonInvalid Reason = "InvalidMapping"
)

// Warning is a non-fatal outcome of a merge, encode, or sync step. Batch
// operations collect warnings and keep going.
type Warning struct {
	Reason   Reason
	Kind     Kind
	Username string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %q: %s", w.Reason, w.Kind, w.Username, w.Message)
}
