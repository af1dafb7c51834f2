package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/healthz"

	"github.com/imamik/awsauth-operator/internal/mapping"
)

const defaultProbeTimeout = 5 * time.Second

// DriftProbe runs the drift check for the readiness endpoint.
type DriftProbe struct {
	detector      *mapping.DriftDetector
	log           logr.Logger
	timeout       time.Duration
	enableMetrics bool
}

// NewDriftProbe creates a probe around detector.
func NewDriftProbe(detector *mapping.DriftDetector, log logr.Logger, enableMetrics bool) *DriftProbe {
	return &DriftProbe{
		detector:      detector,
		log:           log,
		timeout:       defaultProbeTimeout,
		enableMetrics: enableMetrics,
	}
}

// Checker returns the probe as a healthz.Checker.
func (p *DriftProbe) Checker() healthz.Checker {
	return func(req *http.Request) error {
		return p.Check(req.Context())
	}
}

// Check runs the drift check once and records the verdict.
func (p *DriftProbe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.detector.Check(ctx)

	var drift *mapping.OutOfSyncError
	switch {
	case err == nil:
		p.recordDrift(nil)
	case errors.As(err, &drift):
		p.log.Info("aws-auth drifted from declared mappings", "missing", drift.Missing, "unexpected", drift.Unexpected)
		p.recordDrift(drift)
	default:
		p.log.Error(err, "drift check failed")
	}
	return err
}

func (p *DriftProbe) recordDrift(drift *mapping.OutOfSyncError) {
	if p.enableMetrics {
		recordDriftMetric(drift)
	}
}
