package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/config"
	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/operator/controller"
	"github.com/imamik/awsauth-operator/internal/util/labels"
)

// Export handles the export command.
func Export(ctx context.Context, opts Options, out io.Writer) error {
	k8sClient, cfg, err := setup(opts)
	if err != nil {
		return err
	}
	return runExport(ctx, k8sClient, cfg, out)
}

func runExport(ctx context.Context, k8sClient client.Client, cfg *config.Config, out io.Writer) error {
	doc, err := authmap.NewConfigMapStore(k8sClient, k8sClient, cfg.Key()).Fetch(ctx)
	if err != nil {
		return err
	}
	desired, err := controller.NewMappingLister(k8sClient).ListIdentities(ctx)
	if err != nil {
		return err
	}

	declared := map[identity.Kind]sets.Set[string]{
		identity.KindUser: sets.New[string](),
		identity.KindRole: sets.New[string](),
	}
	taken := sets.New[string]()
	for _, d := range desired {
		if names, ok := declared[d.Identity.Kind]; ok {
			names.Insert(d.Identity.Username)
		}
		taken.Insert(d.Name)
	}
	ignored := cfg.IgnoreSet()

	var manifests []string
	for _, list := range [][]identity.Identity{doc.Users, doc.Roles} {
		for _, id := range list {
			if id.Kind == identity.KindUnknown || ignored.Has(id.Username) || declared[id.Kind].Has(id.Username) {
				continue
			}
			name := uniqueName(resourceName(id), taken)
			data, err := yaml.Marshal(manifest(name, id))
			if err != nil {
				return fmt.Errorf("failed to render manifest for %q: %w", id.Username, err)
			}
			manifests = append(manifests, string(data))
		}
	}

	if len(manifests) == 0 {
		fmt.Fprintln(out, "# every aws-auth entry is already declared")
		return nil
	}
	fmt.Fprint(out, "---\n"+strings.Join(manifests, "---\n"))
	return nil
}

func manifest(name string, id identity.Identity) *awsauthv1alpha1.IAMIdentityMapping {
	userARN, roleARN := id.Fields()
	return &awsauthv1alpha1.IAMIdentityMapping{
		TypeMeta: metav1.TypeMeta{
			APIVersion: awsauthv1alpha1.GroupVersion.String(),
			Kind:       "IAMIdentityMapping",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels.NewLabelBuilder(name).WithCreatedBy(labels.CreatedByExport).Build(),
		},
		Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
			UserARN:  userARN,
			RoleARN:  roleARN,
			Username: id.Username,
			Groups:   id.Groups,
		},
	}
}

// resourceName derives a DNS-1123 subdomain from the username, falling back
// to the last ARN path segment.
func resourceName(id identity.Identity) string {
	name := sanitize(id.Username)
	if len(validation.IsDNS1123Subdomain(name)) == 0 {
		return name
	}
	if i := strings.LastIndex(id.ARN, "/"); i >= 0 {
		if name = sanitize(id.ARN[i+1:]); len(validation.IsDNS1123Subdomain(name)) == 0 {
			return name
		}
	}
	return id.Kind.String()
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if len(name) > validation.DNS1123SubdomainMaxLength {
		name = strings.Trim(name[:validation.DNS1123SubdomainMaxLength], "-.")
	}
	return name
}

// uniqueName appends -2, -3, ... to base until the name is free. The base is
// shortened so the suffixed name stays a valid subdomain.
func uniqueName(base string, taken sets.Set[string]) string {
	name := base
	for i := 2; taken.Has(name); i++ {
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if limit := validation.DNS1123SubdomainMaxLength - len(suffix); len(trimmed) > limit {
			trimmed = strings.TrimRight(trimmed[:limit], "-.")
		}
		name = trimmed + suffix
	}
	taken.Insert(name)
	return name
}
