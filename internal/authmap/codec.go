package authmap

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamik/awsauth-operator/internal/identity"
)

// ConfigMap data keys.
const (
	FieldUsers = "mapUsers"
	FieldRoles = "mapRoles"
)

// record is the wire form of one aws-auth entry.
type record struct {
	UserARN  string   `yaml:"userarn,omitempty"`
	RoleARN  string   `yaml:"rolearn,omitempty"`
	Username string   `yaml:"username"`
	Groups   []string `yaml:"groups"`
}

// Decode parses one aws-auth field. Empty text or an explicit null yields an
// empty list; anything else that is not a sequence of records is a
// *DecodeError. Records with neither (or both) ARNs decode as KindUnknown so
// the caller decides what to do with them.
func Decode(field, raw string) ([]identity.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var records []record
	if err := yaml.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &DecodeError{Field: field, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]identity.Identity, 0, len(records))
	for _, r := range records {
		var groups []string
		if len(r.Groups) > 0 {
			groups = r.Groups
		}
		out = append(out, identity.FromFields(r.UserARN, r.RoleARN, r.Username, groups))
	}
	return out, nil
}

// Encode renders a list as an aws-auth field. Records of KindUnknown are
// dropped with a warning; the rest are written in order.
func Encode(list []identity.Identity) (string, []identity.Warning, error) {
	var warnings []identity.Warning
	records := make([]record, 0, len(list))

	for _, id := range list {
		switch id.Kind {
		case identity.KindUser:
			records = append(records, record{UserARN: id.ARN, Username: id.Username, Groups: id.Groups})
		case identity.KindRole:
			records = append(records, record{RoleARN: id.ARN, Username: id.Username, Groups: id.Groups})
		default:
			warnings = append(warnings, unrecognized(id))
		}
	}

	for i := range records {
		if records[i].Groups == nil {
			records[i].Groups = []string{}
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return "", warnings, fmt.Errorf("failed to encode mappings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", warnings, fmt.Errorf("failed to encode mappings: %w", err)
	}
	return buf.String(), warnings, nil
}

// Partition splits a mixed list by kind, preserving relative order. Unknown
// records are dropped with a warning.
func Partition(list []identity.Identity) (users, roles []identity.Identity, warnings []identity.Warning) {
	for _, id := range list {
		switch id.Kind {
		case identity.KindUser:
			users = append(users, id)
		case identity.KindRole:
			roles = append(roles, id)
		default:
			warnings = append(warnings, unrecognized(id))
		}
	}
	return users, roles, warnings
}

func unrecognized(id identity.Identity) identity.Warning {
	return identity.Warning{
		Reason:   identity.ReasonUnrecognized,
		Kind:     id.Kind,
		Username: id.Username,
		Message:  "record has neither userarn nor rolearn (or both), dropping it",
	}
}
