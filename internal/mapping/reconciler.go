package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/identity"
)

// EventType is the kind of change observed on an IAMIdentityMapping.
type EventType string

const (
	EventCreate EventType = "Create"
	EventUpdate EventType = "Update"
	EventDelete EventType = "Delete"
)

// ErrInvalidIdentity is returned when an event carries an identity that
// cannot be written. Nothing is written in that case.
var ErrInvalidIdentity = errors.New("invalid identity mapping")

// Event is one observed change to a declared mapping.
type Event struct {
	Type EventType

	// Identity is the mapping as declared now, or as last applied for deletes.
	Identity identity.Identity

	// Previous is the mapping as last applied, when known. If its kind or
	// username differs from Identity the old entry is removed first.
	Previous *identity.Identity

	// ChangeSet names the spec fields that changed. Creates and updates with
	// an empty change set are ignored.
	ChangeSet []string
}

// Reconciler applies single events to the shared document.
type Reconciler struct {
	mapper *Mapper
	log    logr.Logger
}

// NewReconciler creates a Reconciler writing through mapper.
func NewReconciler(mapper *Mapper) *Reconciler {
	return &Reconciler{mapper: mapper, log: mapper.log.WithName("reconciler")}
}

// Apply merges the event into the document. A delete of a username that is
// not present succeeds with a NotFound warning.
func (r *Reconciler) Apply(ctx context.Context, ev Event) (Result, error) {
	switch ev.Type {
	case EventCreate, EventUpdate:
		if len(ev.ChangeSet) == 0 {
			r.log.V(1).Info("no changes, skipping", "event", ev.Type, "username", ev.Identity.Username)
			return Result{}, nil
		}
	case EventDelete:
	default:
		return Result{}, fmt.Errorf("unknown event type %q", ev.Type)
	}

	if err := ev.Identity.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w %q: %w", ErrInvalidIdentity, ev.Identity.Username, err)
	}

	result, err := r.mapper.Mutate(ctx, func(doc *authmap.Document) ([]identity.Warning, bool, error) {
		var warnings []identity.Warning

		if ev.Type == EventDelete {
			warn, err := doc.Remove(ev.Identity)
			if err != nil {
				return nil, false, err
			}
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			return warnings, true, nil
		}

		if renamed(ev) {
			// A missing old entry is expected after a partial earlier run.
			if _, err := doc.Remove(*ev.Previous); err != nil {
				return nil, false, err
			}
		}
		if err := doc.Upsert(ev.Identity); err != nil {
			return nil, false, err
		}
		return warnings, true, nil
	})
	if err != nil {
		return result, err
	}

	for _, w := range result.Warnings {
		r.log.Info("mapping warning", "reason", w.Reason, "kind", w.Kind.String(), "username", w.Username, "message", w.Message)
	}
	return result, nil
}

func renamed(ev Event) bool {
	if ev.Previous == nil || ev.Previous.Kind == identity.KindUnknown {
		return false
	}
	return ev.Previous.Kind != ev.Identity.Kind || ev.Previous.Username != ev.Identity.Username
}
