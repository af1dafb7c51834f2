// Package controller connects the mapping engine to controller-runtime.
//
// [IdentityMappingReconciler] turns IAMIdentityMapping changes into mapping
// events. It holds a finalizer on every resource so that deletes can remove
// the aws-auth entry recorded in status.applied before the resource goes
// away. [MappingLister] feeds declared mappings to full syncs and the drift
// check, [DriftProbe] exposes the drift check as a readiness check, and
// [ResyncRunnable] runs full syncs on a timer while holding the leader lease.
package controller
