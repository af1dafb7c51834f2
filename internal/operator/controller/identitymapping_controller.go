package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

// Event reasons
const (
	EventReasonApplied     = "Applied"
	EventReasonRemoved     = "Removed"
	EventReasonInvalidSpec = "InvalidSpec"
	EventReasonWriteFailed = "WriteFailed"
)

// IdentityMappingReconciler reconciles IAMIdentityMapping objects into aws-auth.
type IdentityMappingReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	mapper *mapping.Reconciler

	enableMetrics           bool
	maxConcurrentReconciles int
}

// Option configures an IdentityMappingReconciler.
type Option func(*IdentityMappingReconciler)

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enabled bool) Option {
	return func(r *IdentityMappingReconciler) {
		r.enableMetrics = enabled
	}
}

// WithMaxConcurrentReconciles sets how many mappings are reconciled in
// parallel. Writes to aws-auth are serialized regardless.
func WithMaxConcurrentReconciles(n int) Option {
	return func(r *IdentityMappingReconciler) {
		if n > 0 {
			r.maxConcurrentReconciles = n
		}
	}
}

// NewIdentityMappingReconciler creates a reconciler that applies events
// through mapper.
func NewIdentityMappingReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, mapper *mapping.Reconciler, opts ...Option) *IdentityMappingReconciler {
	r := &IdentityMappingReconciler{
		Client:                  c,
		Scheme:                  scheme,
		Recorder:                recorder,
		mapper:                  mapper,
		enableMetrics:           true,
		maxConcurrentReconciles: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// +kubebuilder:rbac:groups=iamauthenticator.k8s.aws,resources=iamidentitymappings,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=iamauthenticator.k8s.aws,resources=iamidentitymappings/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=iamauthenticator.k8s.aws,resources=iamidentitymappings/finalizers,verbs=update
// +kubebuilder:rbac:groups="",resources=configmaps,verbs=get;create;update
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch
// +kubebuilder:rbac:groups=coordination.k8s.io,resources=leases,verbs=get;create;update

// Reconcile applies one IAMIdentityMapping to aws-auth.
func (r *IdentityMappingReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	im := &awsauthv1alpha1.IAMIdentityMapping{}
	if err := r.Get(ctx, req.NamespacedName, im); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(err, "unable to fetch IAMIdentityMapping")
		return ctrl.Result{}, err
	}

	if !im.DeletionTimestamp.IsZero() {
		return r.reconcileDelete(ctx, im)
	}

	if !controllerutil.ContainsFinalizer(im, awsauthv1alpha1.Finalizer) {
		controllerutil.AddFinalizer(im, awsauthv1alpha1.Finalizer)
		if err := r.Update(ctx, im); err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
		}
	}

	return r.reconcileApply(ctx, im)
}

func (r *IdentityMappingReconciler) reconcileApply(ctx context.Context, im *awsauthv1alpha1.IAMIdentityMapping) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	desired := identityFromSpec(im.Spec)
	applied := appliedIdentity(im.Status)
	ev := mapping.Event{
		Type:      mapping.EventUpdate,
		Identity:  desired,
		Previous:  applied,
		ChangeSet: changeSet(desired, applied),
	}
	if applied == nil {
		ev.Type = mapping.EventCreate
	}

	result, err := r.mapper.Apply(ctx, ev)
	r.record(ev.Type, result, err, start)

	switch {
	case errors.Is(err, mapping.ErrInvalidIdentity):
		logger.Info("mapping is invalid, not applying", "error", err.Error())
		r.Recorder.Event(im, corev1.EventTypeWarning, EventReasonInvalidSpec, err.Error())
		r.setSynced(im, metav1.ConditionFalse, awsauthv1alpha1.ReasonInvalidSpec, err.Error())
		// Requeueing cannot fix the spec; the next edit triggers a new reconcile.
		return ctrl.Result{}, r.updateStatus(ctx, im)

	case err != nil:
		logger.Error(err, "failed to apply mapping")
		r.Recorder.Event(im, corev1.EventTypeWarning, EventReasonWriteFailed, err.Error())
		r.setSynced(im, metav1.ConditionFalse, awsauthv1alpha1.ReasonWriteFailed, err.Error())
		if statusErr := r.updateStatus(ctx, im); statusErr != nil {
			logger.Error(statusErr, "failed to update status")
		}
		return ctrl.Result{}, err
	}

	r.emitWarnings(im, result.Warnings)
	if result.Written {
		logger.Info("mapping applied", "identity", desired.String(), "changed", ev.ChangeSet, "attempts", result.Attempts)
		r.Recorder.Eventf(im, corev1.EventTypeNormal, EventReasonApplied, "Applied %s mapping for %q to aws-auth", desired.Kind, desired.Username)
		now := metav1.Now()
		im.Status.LastSyncTime = &now
	}
	im.Status.Applied = toApplied(desired)
	r.setSynced(im, metav1.ConditionTrue, awsauthv1alpha1.ReasonApplied, "Mapping is present in aws-auth")
	return ctrl.Result{}, r.updateStatus(ctx, im)
}

func (r *IdentityMappingReconciler) reconcileDelete(ctx context.Context, im *awsauthv1alpha1.IAMIdentityMapping) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(im, awsauthv1alpha1.Finalizer) {
		return ctrl.Result{}, nil
	}

	// Only what was actually written is removed; the spec may have been
	// edited to something invalid since.
	if applied := appliedIdentity(im.Status); applied != nil {
		start := time.Now()
		result, err := r.mapper.Apply(ctx, mapping.Event{Type: mapping.EventDelete, Identity: *applied})
		r.record(mapping.EventDelete, result, err, start)

		switch {
		case errors.Is(err, mapping.ErrInvalidIdentity):
			logger.Info("recorded mapping is invalid, nothing to remove", "error", err.Error())
		case err != nil:
			logger.Error(err, "failed to remove mapping")
			r.Recorder.Event(im, corev1.EventTypeWarning, EventReasonWriteFailed, err.Error())
			return ctrl.Result{}, err
		default:
			r.emitWarnings(im, result.Warnings)
			logger.Info("mapping removed", "identity", applied.String())
			r.Recorder.Eventf(im, corev1.EventTypeNormal, EventReasonRemoved, "Removed %s mapping for %q from aws-auth", applied.Kind, applied.Username)
		}
	}

	controllerutil.RemoveFinalizer(im, awsauthv1alpha1.Finalizer)
	if err := r.Update(ctx, im); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("failed to remove finalizer: %w", err)
	}
	return ctrl.Result{}, nil
}

func (r *IdentityMappingReconciler) setSynced(im *awsauthv1alpha1.IAMIdentityMapping, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(&im.Status.Conditions, metav1.Condition{
		Type:               awsauthv1alpha1.ConditionSynced,
		Status:             status,
		Reason:             reason,
		Message:            message,
		ObservedGeneration: im.Generation,
	})
	im.Status.ObservedGeneration = im.Generation
}

func (r *IdentityMappingReconciler) updateStatus(ctx context.Context, im *awsauthv1alpha1.IAMIdentityMapping) error {
	if err := r.Status().Update(ctx, im); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

func (r *IdentityMappingReconciler) emitWarnings(im *awsauthv1alpha1.IAMIdentityMapping, warnings []identity.Warning) {
	for _, w := range warnings {
		r.Recorder.Event(im, corev1.EventTypeWarning, string(w.Reason), w.String())
	}
}

func (r *IdentityMappingReconciler) record(event mapping.EventType, res mapping.Result, err error, start time.Time) {
	if !r.enableMetrics {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	recordReconcileMetric(event, result, time.Since(start).Seconds())
	recordWriteMetric("reconcile", res, err)
}

// SetupWithManager sets up the controller with the Manager.
func (r *IdentityMappingReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		// Status writes do not bump the generation and are filtered out.
		For(&awsauthv1alpha1.IAMIdentityMapping{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		WithOptions(controller.Options{MaxConcurrentReconciles: r.maxConcurrentReconciles}).
		Named("iamidentitymapping").
		Complete(r)
}
