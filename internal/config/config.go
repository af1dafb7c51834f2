package config

import (
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/imamik/awsauth-operator/internal/mapping"
)

// Templated usernames EKS writes to mapRoles for nodes it manages. They are
// always ignored by the drift check.
const (
	DefaultIgnoredUsername = "system:node:{{EC2PrivateDNSName}}"
	FargateIgnoredUsername = "system:node:{{SessionName}}"
)

// Config is the operator configuration.
type Config struct {
	ConfigMap ConfigMapRef `mapstructure:"configMap"`

	// IgnoredUsernames are excluded from the drift check in addition to
	// the EKS node usernames.
	IgnoredUsernames []string `mapstructure:"ignoredUsernames"`

	DriftScope  mapping.DriftScope  `mapstructure:"driftScope"`
	PrunePolicy mapping.PrunePolicy `mapstructure:"prunePolicy"`

	// ResyncPeriod enables a periodic full sync when non-zero.
	ResyncPeriod time.Duration `mapstructure:"resyncPeriod"`
}

// ConfigMapRef locates the aws-auth ConfigMap.
type ConfigMapRef struct {
	Name      string `mapstructure:"name"`
	Namespace string `mapstructure:"namespace"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		ConfigMap: ConfigMapRef{
			Name:      "aws-auth",
			Namespace: "kube-system",
		},
		DriftScope:  mapping.ScopeUsers,
		PrunePolicy: mapping.PruneNone,
	}
}

// Key returns the namespaced name of the managed ConfigMap.
func (c *Config) Key() types.NamespacedName {
	return types.NamespacedName{Name: c.ConfigMap.Name, Namespace: c.ConfigMap.Namespace}
}

// IgnoreSet returns the EKS node usernames plus the configured usernames.
func (c *Config) IgnoreSet() sets.Set[string] {
	return sets.New(DefaultIgnoredUsername, FargateIgnoredUsername).Insert(c.IgnoredUsernames...)
}

// Validate checks the configuration and normalizes empty enum values.
func (c *Config) Validate() error {
	if c.ConfigMap.Name == "" {
		return fmt.Errorf("configMap.name is required")
	}
	if c.ConfigMap.Namespace == "" {
		return fmt.Errorf("configMap.namespace is required")
	}

	scope, err := mapping.ParseDriftScope(string(c.DriftScope))
	if err != nil {
		return fmt.Errorf("driftScope: %w", err)
	}
	c.DriftScope = scope

	policy, err := mapping.ParsePrunePolicy(string(c.PrunePolicy))
	if err != nil {
		return fmt.Errorf("prunePolicy: %w", err)
	}
	c.PrunePolicy = policy

	if c.ResyncPeriod < 0 {
		return fmt.Errorf("resyncPeriod must not be negative, got %s", c.ResyncPeriod)
	}
	for _, name := range c.IgnoredUsernames {
		if name == "" {
			return fmt.Errorf("ignoredUsernames must not contain empty names")
		}
	}
	return nil
}
