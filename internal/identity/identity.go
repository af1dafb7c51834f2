package identity

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// Kind discriminates user mappings from role mappings.
type Kind int

const (
	// KindUnknown marks a record carrying neither (or both) of userarn and rolearn.
	KindUnknown Kind = iota
	// KindUser is an IAM user mapping (mapUsers).
	KindUser
	// KindRole is an IAM role mapping (mapRoles).
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindRole:
		return "role"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	switch s {
	case "user":
		return KindUser
	case "role":
		return KindRole
	default:
		return KindUnknown
	}
}

// Identity maps one IAM principal to a Kubernetes username and groups.
type Identity struct {
	Kind     Kind
	ARN      string
	Username string
	Groups   []string
}

// User returns a user identity.
func User(userARN, username string, groups ...string) Identity {
	return Identity{Kind: KindUser, ARN: userARN, Username: username, Groups: groups}
}

// Role returns a role identity.
func Role(roleARN, username string, groups ...string) Identity {
	return Identity{Kind: KindRole, ARN: roleARN, Username: username, Groups: groups}
}

// FromFields classifies a raw record by which ARN field is present.
func FromFields(userARN, roleARN, username string, groups []string) Identity {
	id := Identity{Username: username, Groups: groups}
	switch {
	case userARN != "" && roleARN == "":
		id.Kind, id.ARN = KindUser, userARN
	case roleARN != "" && userARN == "":
		id.Kind, id.ARN = KindRole, roleARN
	default:
		id.Kind = KindUnknown
	}
	return id
}

// Fields returns the identity split back into userarn and rolearn.
func (i Identity) Fields() (userARN, roleARN string) {
	switch i.Kind {
	case KindUser:
		return i.ARN, ""
	case KindRole:
		return "", i.ARN
	default:
		return "", ""
	}
}

// Clone returns a copy that shares no memory with i.
func (i Identity) Clone() Identity {
	i.Groups = slices.Clone(i.Groups)
	return i
}

// Equal reports whether two identities would encode identically.
func (i Identity) Equal(o Identity) bool {
	return i.Kind == o.Kind && i.ARN == o.ARN && i.Username == o.Username && slices.Equal(i.Groups, o.Groups)
}

func (i Identity) String() string {
	return fmt.Sprintf("%s %s as %q to [%s]", i.Kind, i.ARN, i.Username, strings.Join(i.Groups, ","))
}

// ErrUnrecognized is returned by Validate for identities of KindUnknown.
var ErrUnrecognized = errors.New("exactly one of userarn or rolearn must be set")

// Validate checks that the identity can be written to aws-auth.
func (i Identity) Validate() error {
	if i.Username == "" {
		return errors.New("username is required")
	}

	var resourcePrefix string
	switch i.Kind {
	case KindUser:
		resourcePrefix = "user/"
	case KindRole:
		resourcePrefix = "role/"
	default:
		return ErrUnrecognized
	}

	parsed, err := arn.Parse(i.ARN)
	if err != nil {
		return fmt.Errorf("invalid %s arn %q: %w", i.Kind, i.ARN, err)
	}
	if parsed.Service != "iam" {
		return fmt.Errorf("invalid %s arn %q: service must be iam, got %q", i.Kind, i.ARN, parsed.Service)
	}
	if !strings.HasPrefix(parsed.Resource, resourcePrefix) || len(parsed.Resource) == len(resourcePrefix) {
		return fmt.Errorf("invalid %s arn %q: resource must start with %q", i.Kind, i.ARN, resourcePrefix)
	}
	for _, g := range i.Groups {
		if strings.TrimSpace(g) == "" {
			return errors.New("groups must not contain empty names")
		}
	}
	return nil
}
