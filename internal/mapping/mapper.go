package mapping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/util/retry"
)

const (
	defaultConflictAttempts = 5
	defaultConflictBackoff  = 50 * time.Millisecond
	maxConflictBackoff      = 2 * time.Second
)

// Result describes one completed read-modify-write cycle.
type Result struct {
	// Written reports whether the document was handed to the store.
	Written bool
	// Attempts counts fetch, modify, write cycles including conflict retries.
	Attempts int
	// Warnings are the non-fatal outcomes of the final attempt.
	Warnings []identity.Warning
}

// MutateFunc modifies a freshly fetched document. Returning write=false ends
// the cycle without writing.
type MutateFunc func(doc *authmap.Document) (warnings []identity.Warning, write bool, err error)

// Mapper runs mutations against the store one at a time.
type Mapper struct {
	store authmap.Store
	log   logr.Logger

	attempts int
	backoff  time.Duration

	mu sync.Mutex
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(m *Mapper) {
		m.log = log
	}
}

// WithConflictAttempts bounds the number of cycles tried when writes conflict.
func WithConflictAttempts(n int) Option {
	return func(m *Mapper) {
		if n > 0 {
			m.attempts = n
		}
	}
}

// WithConflictBackoff sets the delay before the first conflict retry.
func WithConflictBackoff(d time.Duration) Option {
	return func(m *Mapper) {
		m.backoff = d
	}
}

// NewMapper creates a Mapper over store.
func NewMapper(store authmap.Store, opts ...Option) *Mapper {
	m := &Mapper{
		store:    store,
		log:      logr.Discard(),
		attempts: defaultConflictAttempts,
		backoff:  defaultConflictBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the store the mapper writes to.
func (m *Mapper) Store() authmap.Store {
	return m.store
}

// Mutate fetches the document, applies fn, and writes the result. A write
// that loses a race restarts the whole cycle from the fetch.
func (m *Mapper) Mutate(ctx context.Context, fn MutateFunc) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result Result
	err := retry.OnError(ctx, authmap.ErrConflict, func() error {
		result.Attempts++
		result.Written = false
		result.Warnings = nil

		doc, err := m.store.Fetch(ctx)
		if err != nil {
			return err
		}

		warnings, write, err := fn(doc)
		result.Warnings = warnings
		if err != nil || !write {
			return err
		}

		encodeWarnings, err := m.store.Write(ctx, doc)
		result.Warnings = append(result.Warnings, encodeWarnings...)
		if err != nil {
			return err
		}
		result.Written = true
		return nil
	},
		retry.WithMaxRetries(m.attempts-1),
		retry.WithInitialDelay(m.backoff),
		retry.WithMaxDelay(maxConflictBackoff),
		retry.WithOnRetry(func(attempt int, err error) {
			m.log.V(1).Info("aws-auth changed underneath us, retrying", "attempt", attempt, "error", err.Error())
		}),
	)
	if err != nil {
		return result, fmt.Errorf("aws-auth update failed: %w", err)
	}
	return result, nil
}
