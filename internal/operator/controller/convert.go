package controller

import (
	"slices"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/identity"
)

// identityFromSpec converts a declared mapping. Specs with neither or both
// ARNs yield an identity of KindUnknown, which fails validation.
func identityFromSpec(spec awsauthv1alpha1.IAMIdentityMappingSpec) identity.Identity {
	return identity.FromFields(spec.UserARN, spec.RoleARN, spec.Username, slices.Clone(spec.Groups))
}

// appliedIdentity returns the identity recorded in status, or nil.
func appliedIdentity(status awsauthv1alpha1.IAMIdentityMappingStatus) *identity.Identity {
	if status.Applied == nil {
		return nil
	}
	id := identity.Identity{
		Kind:     identity.ParseKind(status.Applied.Kind),
		ARN:      status.Applied.ARN,
		Username: status.Applied.Username,
		Groups:   slices.Clone(status.Applied.Groups),
	}
	return &id
}

func toApplied(id identity.Identity) *awsauthv1alpha1.AppliedMapping {
	return &awsauthv1alpha1.AppliedMapping{
		Kind:     id.Kind.String(),
		ARN:      id.ARN,
		Username: id.Username,
		Groups:   slices.Clone(id.Groups),
	}
}

// changeSet names the fields of desired that differ from what was last
// applied. With nothing applied yet every field counts as changed.
func changeSet(desired identity.Identity, applied *identity.Identity) []string {
	if applied == nil {
		return []string{"userarn", "rolearn", "username", "groups"}
	}

	var changed []string
	desiredUser, desiredRole := desired.Fields()
	prevUser, prevRole := applied.Fields()
	if desiredUser != prevUser {
		changed = append(changed, "userarn")
	}
	if desiredRole != prevRole {
		changed = append(changed, "rolearn")
	}
	if desired.Username != applied.Username {
		changed = append(changed, "username")
	}
	if !slices.Equal(desired.Groups, applied.Groups) {
		changed = append(changed, "groups")
	}
	return changed
}
