package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/imamik/awsauth-operator/internal/mapping"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigMap        = "AWS_AUTH_CONFIGMAP"
	EnvNamespace        = "AWS_AUTH_NAMESPACE"
	EnvIgnoredUsernames = "IGNORED_USERNAMES"
	EnvDriftScope       = "DRIFT_SCOPE"
	EnvPrunePolicy      = "PRUNE_POLICY"
	EnvResyncPeriod     = "RESYNC_PERIOD"
)

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// MergeFile overlays the keys present in the YAML file at path. Unknown keys
// are rejected.
func (c *Config) MergeFile(path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays the environment variables that are set. Ignored
// usernames from the environment are added to those already configured.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvConfigMap); v != "" {
		c.ConfigMap.Name = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		c.ConfigMap.Namespace = v
	}
	if v := os.Getenv(EnvIgnoredUsernames); v != "" {
		c.IgnoredUsernames = append(c.IgnoredUsernames, splitList(v)...)
	}
	if v := os.Getenv(EnvDriftScope); v != "" {
		c.DriftScope = mapping.DriftScope(strings.ToLower(v))
	}
	if v := os.Getenv(EnvPrunePolicy); v != "" {
		c.PrunePolicy = mapping.PrunePolicy(strings.ToLower(v))
	}
	if v := os.Getenv(EnvResyncPeriod); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvResyncPeriod, v, err)
		}
		c.ResyncPeriod = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
