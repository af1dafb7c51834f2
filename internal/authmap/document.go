package authmap

import (
	"encoding/json"
	"fmt"
	"slices"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/imamik/awsauth-operator/internal/identity"
)

// Annotations recording which usernames this operator wrote.
const (
	AnnotationOwnedUsers = "iamauthenticator.k8s.aws/owned-users"
	AnnotationOwnedRoles = "iamauthenticator.k8s.aws/owned-roles"
)

// Document is the decoded aws-auth ConfigMap for one read-modify-write cycle.
// It is never cached across cycles.
type Document struct {
	Users []identity.Identity
	Roles []identity.Identity

	// Owned holds, per kind, the usernames written on behalf of a declared
	// IAMIdentityMapping. Only the prune policy reads it.
	Owned map[identity.Kind]sets.Set[string]

	// ResourceVersion is the precondition for the write-back. Empty when the
	// ConfigMap does not exist yet.
	ResourceVersion string

	source *corev1.ConfigMap
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Owned: map[identity.Kind]sets.Set[string]{
			identity.KindUser: sets.New[string](),
			identity.KindRole: sets.New[string](),
		},
	}
}

// FromConfigMap decodes both mapping fields and the ownership annotations.
func FromConfigMap(cm *corev1.ConfigMap) (*Document, error) {
	doc := NewDocument()
	doc.source = cm.DeepCopy()
	doc.ResourceVersion = cm.ResourceVersion

	var err error
	if doc.Users, err = Decode(FieldUsers, cm.Data[FieldUsers]); err != nil {
		return nil, err
	}
	if doc.Roles, err = Decode(FieldRoles, cm.Data[FieldRoles]); err != nil {
		return nil, err
	}

	doc.Owned[identity.KindUser] = decodeOwned(cm.Annotations[AnnotationOwnedUsers])
	doc.Owned[identity.KindRole] = decodeOwned(cm.Annotations[AnnotationOwnedRoles])
	return doc, nil
}

// Source returns a copy of the ConfigMap the document was decoded from, or nil.
func (d *Document) Source() *corev1.ConfigMap {
	return d.source.DeepCopy()
}

// List returns the sub-list for kind.
func (d *Document) List(kind identity.Kind) []identity.Identity {
	switch kind {
	case identity.KindUser:
		return d.Users
	case identity.KindRole:
		return d.Roles
	default:
		return nil
	}
}

// Usernames returns the usernames present in the sub-list for kind.
func (d *Document) Usernames(kind identity.Kind) sets.Set[string] {
	names := sets.New[string]()
	for _, id := range d.List(kind) {
		names.Insert(id.Username)
	}
	return names
}

// Upsert merges id into the sub-list of its kind and marks it owned.
func (d *Document) Upsert(id identity.Identity) error {
	switch id.Kind {
	case identity.KindUser:
		d.Users = identity.Upsert(id, d.Users)
	case identity.KindRole:
		d.Roles = identity.Upsert(id, d.Roles)
	default:
		return fmt.Errorf("cannot upsert %q: %w", id.Username, identity.ErrUnrecognized)
	}
	d.owned(id.Kind).Insert(id.Username)
	return nil
}

// Remove deletes id's username from the sub-list of its kind. A missing
// username is reported as a warning, not an error.
func (d *Document) Remove(id identity.Identity) (*identity.Warning, error) {
	var warn *identity.Warning
	switch id.Kind {
	case identity.KindUser:
		d.Users, warn = identity.Remove(id, d.Users)
	case identity.KindRole:
		d.Roles, warn = identity.Remove(id, d.Roles)
	default:
		return nil, fmt.Errorf("cannot remove %q: %w", id.Username, identity.ErrUnrecognized)
	}
	d.owned(id.Kind).Delete(id.Username)
	return warn, nil
}

// Prune removes owned entries of kind whose username is not in keep and
// returns them. Entries that were never owned are left alone.
func (d *Document) Prune(kind identity.Kind, keep sets.Set[string]) []identity.Identity {
	owned := d.owned(kind)
	var pruned []identity.Identity
	for _, id := range d.List(kind) {
		if owned.Has(id.Username) && !keep.Has(id.Username) {
			pruned = append(pruned, id)
		}
	}
	for _, id := range pruned {
		_, _ = d.Remove(id)
	}
	// Forget owned names that are gone from the document as well.
	for _, name := range owned.UnsortedList() {
		if !keep.Has(name) {
			owned.Delete(name)
		}
	}
	return pruned
}

// Encode renders both fields. Entries sitting in the wrong sub-list are moved
// to the end of the list of their kind; unknown entries are dropped with a
// warning.
func (d *Document) Encode() (users, roles string, warnings []identity.Warning, err error) {
	userList, strayRoles, w := Partition(d.Users)
	warnings = append(warnings, w...)
	strayUsers, roleList, w := Partition(d.Roles)
	warnings = append(warnings, w...)

	users, _, err = Encode(slices.Concat(userList, strayUsers))
	if err != nil {
		return "", "", warnings, err
	}
	roles, _, err = Encode(slices.Concat(roleList, strayRoles))
	if err != nil {
		return "", "", warnings, err
	}
	return users, roles, warnings, nil
}

// ApplyTo writes the encoded fields and ownership annotations into cm,
// leaving every other key untouched.
func (d *Document) ApplyTo(cm *corev1.ConfigMap) ([]identity.Warning, error) {
	users, roles, warnings, err := d.Encode()
	if err != nil {
		return warnings, err
	}

	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[FieldUsers] = users
	cm.Data[FieldRoles] = roles

	if cm.Annotations == nil {
		cm.Annotations = map[string]string{}
	}
	cm.Annotations[AnnotationOwnedUsers] = encodeOwned(d.owned(identity.KindUser))
	cm.Annotations[AnnotationOwnedRoles] = encodeOwned(d.owned(identity.KindRole))
	return warnings, nil
}

func (d *Document) owned(kind identity.Kind) sets.Set[string] {
	if d.Owned == nil {
		d.Owned = map[identity.Kind]sets.Set[string]{}
	}
	s, ok := d.Owned[kind]
	if !ok {
		s = sets.New[string]()
		d.Owned[kind] = s
	}
	return s
}

// decodeOwned is lenient: ownership only narrows pruning, so an unreadable
// annotation means "owns nothing".
func decodeOwned(raw string) sets.Set[string] {
	var names []string
	if raw == "" || json.Unmarshal([]byte(raw), &names) != nil {
		return sets.New[string]()
	}
	return sets.New(names...)
}

func encodeOwned(s sets.Set[string]) string {
	data, _ := json.Marshal(sets.List(s))
	return string(data)
}
