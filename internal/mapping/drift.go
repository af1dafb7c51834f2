package mapping

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/identity"
)

// DriftScope selects which sub-lists the drift detector compares.
type DriftScope string

const (
	// ScopeUsers compares user mappings only.
	ScopeUsers DriftScope = "users"
	// ScopeAll compares user and role mappings.
	ScopeAll DriftScope = "all"
)

// ParseDriftScope parses a scope name. The empty string means ScopeUsers.
func ParseDriftScope(s string) (DriftScope, error) {
	switch DriftScope(s) {
	case "", ScopeUsers:
		return ScopeUsers, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown drift scope %q (want %q or %q)", s, ScopeUsers, ScopeAll)
	}
}

// Kinds returns the identity kinds compared under the scope.
func (s DriftScope) Kinds() []identity.Kind {
	if s == ScopeUsers {
		return []identity.Kind{identity.KindUser}
	}
	return []identity.Kind{identity.KindUser, identity.KindRole}
}

// OutOfSyncError reports usernames that are declared but absent from the
// document, and usernames in the document that nobody declared.
type OutOfSyncError struct {
	Missing    []string
	Unexpected []string
}

func (e *OutOfSyncError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing ["+strings.Join(e.Missing, ", ")+"]")
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected ["+strings.Join(e.Unexpected, ", ")+"]")
	}
	return "aws-auth out of sync: " + strings.Join(parts, ", ")
}

// DriftDetector compares declared mappings with the document.
type DriftDetector struct {
	store   authmap.Store
	lister  DesiredLister
	scope   DriftScope
	ignored sets.Set[string]
}

// DriftOption configures a DriftDetector.
type DriftOption func(*DriftDetector)

// WithScope sets the compared sub-lists. The default is ScopeUsers.
func WithScope(scope DriftScope) DriftOption {
	return func(d *DriftDetector) {
		d.scope = scope
	}
}

// WithIgnored excludes usernames found in the document from the comparison.
func WithIgnored(names ...string) DriftOption {
	return func(d *DriftDetector) {
		d.ignored.Insert(names...)
	}
}

// NewDriftDetector creates a DriftDetector.
func NewDriftDetector(store authmap.Store, lister DesiredLister, opts ...DriftOption) *DriftDetector {
	d := &DriftDetector{
		store:   store,
		lister:  lister,
		scope:   ScopeUsers,
		ignored: sets.New[string](),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Check returns nil when the document holds exactly the declared usernames,
// an *OutOfSyncError when it does not, and any other error when either side
// could not be read. Declarations that fail validation are never written and
// are left out of the comparison.
func (d *DriftDetector) Check(ctx context.Context) error {
	desired, err := d.lister.ListIdentities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list identity mappings: %w", err)
	}
	doc, err := d.store.Fetch(ctx)
	if err != nil {
		return err
	}

	missing := sets.New[string]()
	unexpected := sets.New[string]()
	for _, kind := range d.scope.Kinds() {
		want := sets.New[string]()
		for _, ds := range desired {
			if ds.Identity.Kind == kind && ds.Identity.Validate() == nil {
				want.Insert(ds.Identity.Username)
			}
		}
		have := doc.Usernames(kind).Difference(d.ignored)

		missing = missing.Union(want.Difference(have))
		unexpected = unexpected.Union(have.Difference(want))
	}

	if missing.Len() == 0 && unexpected.Len() == 0 {
		return nil
	}
	return &OutOfSyncError{
		Missing:    sets.List(missing),
		Unexpected: sets.List(unexpected),
	}
}
