package mapping

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/identity"
)

// Desired is one declared mapping.
type Desired struct {
	// Name identifies the declaring resource.
	Name     string
	Identity identity.Identity
}

// DesiredLister lists every declared mapping that is not being deleted.
type DesiredLister interface {
	ListIdentities(ctx context.Context) ([]Desired, error)
}

// PrunePolicy selects what a full sync does with entries that are no longer
// declared.
type PrunePolicy string

const (
	// PruneNone leaves undeclared entries in place.
	PruneNone PrunePolicy = "none"
	// PruneOwned removes undeclared entries this operator wrote earlier.
	// Entries written by anyone else are kept.
	PruneOwned PrunePolicy = "owned"
)

// ParsePrunePolicy parses a policy name. The empty string means PruneNone.
func ParsePrunePolicy(s string) (PrunePolicy, error) {
	switch PrunePolicy(s) {
	case "", PruneNone:
		return PruneNone, nil
	case PruneOwned:
		return PruneOwned, nil
	default:
		return "", fmt.Errorf("unknown prune policy %q (want %q or %q)", s, PruneNone, PruneOwned)
	}
}

// SyncReport summarizes a full sync.
type SyncReport struct {
	Result

	// Applied are the declared identities upserted into the document.
	Applied []identity.Identity
	// Skipped holds one InvalidMapping warning per declared resource that
	// failed validation.
	Skipped []identity.Warning
	// Pruned are the owned entries removed under PruneOwned.
	Pruned []identity.Identity
	// DryRun is set when nothing was written.
	DryRun bool
	// Document is the document as written, or as it would have been written.
	Document *authmap.Document
}

// FullSync writes every declared mapping into the document at once.
type FullSync struct {
	mapper *Mapper
	lister DesiredLister
	prune  PrunePolicy
	dryRun bool
	log    logr.Logger
}

// SyncOption configures a FullSync.
type SyncOption func(*FullSync)

// WithPrunePolicy sets the prune policy. The default is PruneNone.
func WithPrunePolicy(p PrunePolicy) SyncOption {
	return func(s *FullSync) {
		s.prune = p
	}
}

// WithDryRun computes the result without writing it.
func WithDryRun(dryRun bool) SyncOption {
	return func(s *FullSync) {
		s.dryRun = dryRun
	}
}

// NewFullSync creates a FullSync over mapper and lister.
func NewFullSync(mapper *Mapper, lister DesiredLister, opts ...SyncOption) *FullSync {
	s := &FullSync{
		mapper: mapper,
		lister: lister,
		prune:  PruneNone,
		log:    mapper.log.WithName("fullsync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run upserts all valid declared mappings and writes the document once.
// Invalid declarations are skipped and reported; they do not fail the pass.
func (s *FullSync) Run(ctx context.Context) (SyncReport, error) {
	desired, err := s.lister.ListIdentities(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("failed to list identity mappings: %w", err)
	}

	report := SyncReport{DryRun: s.dryRun}
	var valid []identity.Identity
	for _, d := range desired {
		if err := d.Identity.Validate(); err != nil {
			report.Skipped = append(report.Skipped, identity.Warning{
				Reason:   identity.ReasonInvalid,
				Kind:     d.Identity.Kind,
				Username: d.Identity.Username,
				Message:  fmt.Sprintf("%s: %v", d.Name, err),
			})
			continue
		}
		valid = append(valid, d.Identity)
	}

	apply := func(doc *authmap.Document) ([]identity.Warning, bool, error) {
		report.Applied = nil
		report.Pruned = nil
		for _, id := range valid {
			if err := doc.Upsert(id); err != nil {
				return nil, false, err
			}
			report.Applied = append(report.Applied, id)
		}
		if s.prune == PruneOwned {
			for _, kind := range []identity.Kind{identity.KindUser, identity.KindRole} {
				report.Pruned = append(report.Pruned, doc.Prune(kind, declared(desired, kind))...)
			}
		}
		report.Document = doc
		return nil, !s.dryRun, nil
	}

	if s.dryRun {
		doc, err := s.mapper.Store().Fetch(ctx)
		if err != nil {
			return report, err
		}
		if _, _, err := apply(doc); err != nil {
			return report, err
		}
		report.Attempts = 1
		_, _, report.Warnings, err = doc.Encode()
		report.Warnings = slices.Concat(report.Skipped, report.Warnings)
		return report, err
	}

	report.Result, err = s.mapper.Mutate(ctx, apply)
	report.Warnings = slices.Concat(report.Skipped, report.Warnings)
	if err != nil {
		return report, err
	}

	s.log.Info("full sync complete",
		"applied", len(report.Applied),
		"skipped", len(report.Skipped),
		"pruned", len(report.Pruned),
		"attempts", report.Attempts,
	)
	for _, w := range report.Warnings {
		s.log.Info("mapping warning", "reason", w.Reason, "kind", w.Kind.String(), "username", w.Username, "message", w.Message)
	}
	return report, nil
}

// declared returns the usernames still declared for kind. Declarations that
// fail validation count too, so their previously applied entries survive a
// prune. A declaration of unknown kind keeps its username in both lists.
func declared(list []Desired, kind identity.Kind) sets.Set[string] {
	names := sets.New[string]()
	for _, d := range list {
		if d.Identity.Kind == kind || d.Identity.Kind == identity.KindUnknown {
			names.Insert(d.Identity.Username)
		}
	}
	return names
}
