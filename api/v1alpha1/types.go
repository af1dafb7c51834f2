// Package v1alpha1 contains API Schema definitions for the iamauthenticator.k8s.aws v1alpha1 API group
// +kubebuilder:object:generate=true
// +groupName=iamauthenticator.k8s.aws
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// IAMIdentityMappingSpec maps one IAM user or role to a Kubernetes username and groups.
// Exactly one of UserARN and RoleARN must be set.
type IAMIdentityMappingSpec struct {
	// UserARN is the ARN of the IAM user (e.g., arn:aws:iam::000000000000:user/alice)
	// +optional
	UserARN string `json:"userarn,omitempty"`

	// RoleARN is the ARN of the IAM role (e.g., arn:aws:iam::000000000000:role/admin)
	// +optional
	RoleARN string `json:"rolearn,omitempty"`

	// Username is the Kubernetes username the principal authenticates as
	// +kubebuilder:validation:MinLength=1
	Username string `json:"username"`

	// Groups are the Kubernetes groups the principal is added to
	// +optional
	Groups []string `json:"groups,omitempty"`
}

// AppliedMapping records the identity last written to aws-auth for this resource.
type AppliedMapping struct {
	// Kind is either "user" or "role"
	Kind string `json:"kind"`

	// ARN of the principal
	ARN string `json:"arn"`

	// Username written to aws-auth
	Username string `json:"username"`

	// Groups written to aws-auth
	// +optional
	Groups []string `json:"groups,omitempty"`
}

// IAMIdentityMappingStatus defines the observed state of IAMIdentityMapping.
type IAMIdentityMappingStatus struct {
	// Applied is the mapping currently present in aws-auth on behalf of this resource
	// +optional
	Applied *AppliedMapping `json:"applied,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// LastSyncTime is when the mapping was last written to aws-auth
	// +optional
	LastSyncTime *metav1.Time `json:"lastSyncTime,omitempty"`

	// ObservedGeneration is the last observed generation
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster,shortName=iamim
// +kubebuilder:printcolumn:name="Username",type=string,JSONPath=`.spec.username`
// +kubebuilder:printcolumn:name="User ARN",type=string,JSONPath=`.spec.userarn`,priority=1
// +kubebuilder:printcolumn:name="Role ARN",type=string,JSONPath=`.spec.rolearn`,priority=1
// +kubebuilder:printcolumn:name="Synced",type=string,JSONPath=`.status.conditions[?(@.type=="Synced")].status`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// IAMIdentityMapping is the Schema for the iamidentitymappings API.
type IAMIdentityMapping struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   IAMIdentityMappingSpec   `json:"spec,omitempty"`
	Status IAMIdentityMappingStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// IAMIdentityMappingList contains a list of IAMIdentityMapping.
type IAMIdentityMappingList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []IAMIdentityMapping `json:"items"`
}

// Condition types for IAMIdentityMapping
const (
	// ConditionSynced indicates the mapping is present in aws-auth as declared
	ConditionSynced = "Synced"
)

// Condition reasons for IAMIdentityMapping
const (
	ReasonApplied     = "Applied"
	ReasonInvalidSpec = "InvalidSpec"
	ReasonWriteFailed = "WriteFailed"
)

// Finalizer guards removal of the aws-auth entry before the resource disappears.
const Finalizer = "iamauthenticator.k8s.aws/aws-auth"
