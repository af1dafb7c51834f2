package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awsauth",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of IAMIdentityMapping reconciliations by event and result",
		},
		[]string{"event", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "awsauth",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"event"},
	)

	// Document write metrics
	documentWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awsauth",
			Subsystem: "configmap",
			Name:      "writes_total",
			Help:      "Total number of aws-auth write cycles by source and result",
		},
		[]string{"source", "result"},
	)

	documentConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awsauth",
			Subsystem: "configmap",
			Name:      "conflicts_total",
			Help:      "Total number of aws-auth writes retried after a resourceVersion conflict",
		},
		[]string{"source"},
	)

	warningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awsauth",
			Subsystem: "mapping",
			Name:      "warnings_total",
			Help:      "Total number of non-fatal mapping warnings by reason",
		},
		[]string{"reason"},
	)

	// Drift metrics
	driftInSync = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "awsauth",
			Subsystem: "drift",
			Name:      "in_sync",
			Help:      "Whether aws-auth matches the declared mappings (1) or not (0)",
		},
	)

	driftEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "awsauth",
			Subsystem: "drift",
			Name:      "entries",
			Help:      "Number of drifted usernames by state (missing, unexpected)",
		},
		[]string{"state"},
	)

	managedIdentities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "awsauth",
			Subsystem: "configmap",
			Name:      "identities",
			Help:      "Number of identities in aws-auth by kind after the last full sync",
		},
		[]string{"kind"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		documentWritesTotal,
		documentConflictsTotal,
		warningsTotal,
		driftInSync,
		driftEntries,
		managedIdentities,
	)
}

// recordReconcileMetric records a reconciliation result.
func recordReconcileMetric(event mapping.EventType, result string, duration float64) {
	reconcileTotal.WithLabelValues(string(event), result).Inc()
	reconcileDuration.WithLabelValues(string(event)).Observe(duration)
}

// recordWriteMetric records the outcome of one mapper cycle.
func recordWriteMetric(source string, res mapping.Result, err error) {
	if res.Attempts == 0 {
		return
	}
	switch {
	case err != nil:
		documentWritesTotal.WithLabelValues(source, "error").Inc()
	case res.Written:
		documentWritesTotal.WithLabelValues(source, "written").Inc()
	default:
		documentWritesTotal.WithLabelValues(source, "skipped").Inc()
	}
	if res.Attempts > 1 {
		documentConflictsTotal.WithLabelValues(source).Add(float64(res.Attempts - 1))
	}
	recordWarningsMetric(res.Warnings)
}

func recordWarningsMetric(warnings []identity.Warning) {
	for _, w := range warnings {
		warningsTotal.WithLabelValues(string(w.Reason)).Inc()
	}
}

// recordDriftMetric records the verdict of a drift check.
func recordDriftMetric(drift *mapping.OutOfSyncError) {
	if drift == nil {
		driftInSync.Set(1)
		driftEntries.WithLabelValues("missing").Set(0)
		driftEntries.WithLabelValues("unexpected").Set(0)
		return
	}
	driftInSync.Set(0)
	driftEntries.WithLabelValues("missing").Set(float64(len(drift.Missing)))
	driftEntries.WithLabelValues("unexpected").Set(float64(len(drift.Unexpected)))
}

// RecordSyncReport records the outcome of a full sync.
func RecordSyncReport(report mapping.SyncReport, err error) {
	recordWriteMetric("fullsync", report.Result, err)
	if err != nil || report.Document == nil {
		return
	}
	managedIdentities.WithLabelValues(identity.KindUser.String()).Set(float64(len(report.Document.Users)))
	managedIdentities.WithLabelValues(identity.KindRole.String()).Set(float64(len(report.Document.Roles)))
}
