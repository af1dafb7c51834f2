package controller

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/imamik/awsauth-operator/internal/mapping"
)

// ResyncRunnable runs a full sync every period while the manager holds the
// leader lease.
type ResyncRunnable struct {
	sync   *mapping.FullSync
	period time.Duration
	log    logr.Logger
}

var (
	_ manager.Runnable               = (*ResyncRunnable)(nil)
	_ manager.LeaderElectionRunnable = (*ResyncRunnable)(nil)
)

// NewResyncRunnable creates a runnable that calls sync.Run every period.
func NewResyncRunnable(sync *mapping.FullSync, period time.Duration, log logr.Logger) *ResyncRunnable {
	return &ResyncRunnable{sync: sync, period: period, log: log}
}

// Start blocks until ctx is done. The first sync happens one period after
// start; the startup sync has already run by then.
func (r *ResyncRunnable) Start(ctx context.Context) error {
	r.log.Info("starting periodic full sync", "period", r.period)
	first := true
	wait.JitterUntilWithContext(ctx, func(ctx context.Context) {
		if first {
			first = false
			return
		}
		r.runOnce(ctx)
	}, r.period, 0.1, true)
	return nil
}

// NeedLeaderElection reports that only the leader writes aws-auth.
func (r *ResyncRunnable) NeedLeaderElection() bool {
	return true
}

func (r *ResyncRunnable) runOnce(ctx context.Context) {
	report, err := r.sync.Run(ctx)
	RecordSyncReport(report, err)
	if err != nil {
		r.log.Error(err, "periodic full sync failed")
	}
}
