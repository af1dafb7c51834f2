package authmap

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/util/labels"
)

// Store fetches and writes the shared document.
type Store interface {
	// Fetch returns a freshly read document.
	Fetch(ctx context.Context) (*Document, error)

	// Write persists both sub-lists in one request, conditional on the
	// document's ResourceVersion. A lost race is reported as ErrConflict.
	Write(ctx context.Context, doc *Document) ([]identity.Warning, error)
}

// ConfigMapStore is the Store backed by the aws-auth ConfigMap.
type ConfigMapStore struct {
	reader client.Reader
	writer client.Writer
	key    types.NamespacedName
}

var _ Store = (*ConfigMapStore)(nil)

// NewConfigMapStore creates a store for the ConfigMap at key. The reader
// should bypass informer caches (e.g. the manager's API reader) so every
// cycle starts from the latest state.
func NewConfigMapStore(reader client.Reader, writer client.Writer, key types.NamespacedName) *ConfigMapStore {
	return &ConfigMapStore{reader: reader, writer: writer, key: key}
}

// Fetch reads and decodes the ConfigMap. A missing ConfigMap yields an empty
// document that Write will create.
func (s *ConfigMapStore) Fetch(ctx context.Context) (*Document, error) {
	cm := &corev1.ConfigMap{}
	if err := s.reader.Get(ctx, s.key, cm); err != nil {
		if apierrors.IsNotFound(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read configmap %s: %w", s.key, err)
	}

	doc, err := FromConfigMap(cm)
	if err != nil {
		return nil, fmt.Errorf("configmap %s: %w", s.key, err)
	}
	return doc, nil
}

// Write encodes doc into the ConfigMap it was fetched from and updates it
// with the fetched resourceVersion. Writes that would not change anything
// are skipped.
func (s *ConfigMapStore) Write(ctx context.Context, doc *Document) ([]identity.Warning, error) {
	cm := doc.Source()
	creating := cm == nil
	if creating {
		cm = &corev1.ConfigMap{}
		cm.Name = s.key.Name
		cm.Namespace = s.key.Namespace
		cm.Labels = labels.NewLabelBuilder(s.key.Name).WithManagedBy(labels.ManagedByOperator).Build()
	}

	warnings, err := doc.ApplyTo(cm)
	if err != nil {
		return warnings, err
	}

	if creating {
		if err := s.writer.Create(ctx, cm); err != nil {
			if apierrors.IsAlreadyExists(err) {
				return warnings, fmt.Errorf("%w: %w", ErrConflict, err)
			}
			return warnings, fmt.Errorf("failed to create configmap %s: %w", s.key, err)
		}
	} else {
		if unchanged(doc.source, cm) {
			return warnings, nil
		}
		cm.ResourceVersion = doc.ResourceVersion
		if err := s.writer.Update(ctx, cm); err != nil {
			if apierrors.IsConflict(err) {
				return warnings, fmt.Errorf("%w: %w", ErrConflict, err)
			}
			return warnings, fmt.Errorf("failed to update configmap %s: %w", s.key, err)
		}
	}

	doc.source = cm.DeepCopy()
	doc.ResourceVersion = cm.ResourceVersion
	return warnings, nil
}

func unchanged(before, after *corev1.ConfigMap) bool {
	return equality.Semantic.DeepEqual(before.Data, after.Data) &&
		equality.Semantic.DeepEqual(before.Annotations, after.Annotations)
}
