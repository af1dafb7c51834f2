// Package main is the entrypoint for the awsauth-operator.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/config"
	"github.com/imamik/awsauth-operator/internal/mapping"
	"github.com/imamik/awsauth-operator/internal/operator/controller"
	"github.com/imamik/awsauth-operator/internal/util/retry"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")

	// Version is set at build time
	Version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(awsauthv1alpha1.AddToScheme(scheme))
}

func main() {
	var (
		metricsAddr             string
		probeAddr               string
		configPath              string
		enableLeaderElection    bool
		leaderElectionID        string
		maxConcurrentReconciles int
		startupSyncTimeout      time.Duration
	)

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.StringVar(&configPath, "config", "", "Path to an optional YAML configuration file.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	flag.StringVar(&leaderElectionID, "leader-election-id", "awsauth-operator", "The name of the leader election resource.")
	flag.IntVar(&maxConcurrentReconciles, "max-concurrent-reconciles", 1, "Number of IAMIdentityMappings reconciled in parallel.")
	flag.DurationVar(&startupSyncTimeout, "startup-sync-timeout", 5*time.Minute, "How long the startup full sync may retry before giving up.")

	opts := zap.Options{
		Development: os.Getenv("DEBUG") == "true",
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	setupLog.Info("starting awsauth-operator", "version", Version)

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}
	setupLog.Info("configuration loaded",
		"configMap", cfg.Key().String(),
		"driftScope", cfg.DriftScope,
		"prunePolicy", cfg.PrunePolicy,
		"resyncPeriod", cfg.ResyncPeriod,
	)

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       leaderElectionID,
		// LeaderElectionReleaseOnCancel defines if the leader should step down voluntarily
		// when the Manager ends. This requires the binary to immediately end when the
		// Manager is stopped, otherwise, this setting is unsafe.
		LeaderElectionReleaseOnCancel: true,
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	// aws-auth is always read through the API reader, never the cache.
	store := authmap.NewConfigMapStore(mgr.GetAPIReader(), mgr.GetClient(), cfg.Key())
	mapper := mapping.NewMapper(store, mapping.WithLogger(ctrl.Log.WithName("mapping")))
	lister := controller.NewMappingLister(mgr.GetAPIReader())
	fullSync := mapping.NewFullSync(mapper, lister, mapping.WithPrunePolicy(cfg.PrunePolicy))

	ctx := ctrl.SetupSignalHandler()
	if err := startupSync(ctx, fullSync, startupSyncTimeout); err != nil {
		setupLog.Error(err, "startup full sync failed")
		os.Exit(1)
	}

	if err = controller.NewIdentityMappingReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor("iamidentitymapping-controller"),
		mapping.NewReconciler(mapper),
		controller.WithMaxConcurrentReconciles(maxConcurrentReconciles),
	).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "IAMIdentityMapping")
		os.Exit(1)
	}

	if cfg.ResyncPeriod > 0 {
		resync := controller.NewResyncRunnable(fullSync, cfg.ResyncPeriod, ctrl.Log.WithName("resync"))
		if err := mgr.Add(resync); err != nil {
			setupLog.Error(err, "unable to set up periodic full sync")
			os.Exit(1)
		}
	}

	// Add health checks
	detector := mapping.NewDriftDetector(store, lister,
		mapping.WithScope(cfg.DriftScope),
		mapping.WithIgnored(cfg.IgnoreSet().UnsortedList()...),
	)
	probe := controller.NewDriftProbe(detector, ctrl.Log.WithName("drift"), true)
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("sync", probe.Checker()); err != nil {
		setupLog.Error(err, "unable to set up drift check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// startupSync brings aws-auth up to date before any event is processed.
// Transient API errors are retried; a document that cannot be decoded is
// not, since retrying cannot repair it.
func startupSync(ctx context.Context, fullSync *mapping.FullSync, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return retry.Do(ctx, func() error {
		report, err := fullSync.Run(ctx)
		controller.RecordSyncReport(report, err)
		if authmap.IsDecodeError(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(10),
		retry.WithInitialDelay(time.Second),
		retry.WithMaxDelay(30*time.Second),
		retry.WithOnRetry(func(attempt int, err error) {
			setupLog.Info("startup full sync failed, retrying", "attempt", attempt, "error", err.Error())
		}),
	)
}
