package labels

// Recommended label keys.
const (
	// KeyName is the name of the application the object belongs to
	KeyName = "app.kubernetes.io/name"

	// KeyManagedBy identifies the tool that keeps the object up to date
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyCreatedBy identifies the tool that produced the object
	KeyCreatedBy = "app.kubernetes.io/created-by"
)

// Well-known values.
const (
	ManagedByOperator = "awsauth-operator"
	CreatedByExport   = "awsauthctl-export"
)

// LabelBuilder provides a fluent interface for building object labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the name label pre-set.
func NewLabelBuilder(name string) *LabelBuilder {
	return &LabelBuilder{labels: map[string]string{KeyName: name}}
}

// WithManagedBy sets who keeps the object up to date.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	lb.labels[KeyManagedBy] = manager
	return lb
}

// WithCreatedBy sets who produced the object.
func (lb *LabelBuilder) WithCreatedBy(creator string) *LabelBuilder {
	lb.labels[KeyCreatedBy] = creator
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
