// Package config holds the operator's runtime settings: which ConfigMap to
// manage, which usernames the drift check ignores, and how full syncs
// treat undeclared entries.
//
// Settings are layered: [Default], then an optional YAML file, then
// environment variables. [Load] applies all three and validates the result.
package config
