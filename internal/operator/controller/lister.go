package controller

import (
	"context"
	"fmt"
	"sort"

	"sigs.k8s.io/controller-runtime/pkg/client"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

// MappingLister lists declared IAMIdentityMappings for full syncs and the
// drift check.
type MappingLister struct {
	reader client.Reader
}

var _ mapping.DesiredLister = (*MappingLister)(nil)

// NewMappingLister creates a lister. Pass the manager's API reader when the
// lister is used before the cache has started.
func NewMappingLister(reader client.Reader) *MappingLister {
	return &MappingLister{reader: reader}
}

// ListIdentities returns all mappings not being deleted, ordered by name.
func (l *MappingLister) ListIdentities(ctx context.Context) ([]mapping.Desired, error) {
	list := &awsauthv1alpha1.IAMIdentityMappingList{}
	if err := l.reader.List(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to list IAMIdentityMappings: %w", err)
	}

	sort.Slice(list.Items, func(i, j int) bool {
		return list.Items[i].Name < list.Items[j].Name
	})

	desired := make([]mapping.Desired, 0, len(list.Items))
	for i := range list.Items {
		m := &list.Items[i]
		if !m.DeletionTimestamp.IsZero() {
			continue
		}
		desired = append(desired, mapping.Desired{Name: m.Name, Identity: identityFromSpec(m.Spec)})
	}
	return desired, nil
}
