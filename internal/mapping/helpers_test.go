package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/identity"
)

const (
	seedUsers = `- userarn: arn:aws:iam::000000000000:user/johndoe
  username: johndoe
  groups:
  - system:masters
`
	seedRoles = `- rolearn: arn:aws:iam::000000000000:role/sdm-namespace-admin
  username: sdm-namespace-admin
  groups:
  - namespace-admin
`
	nodeRoles = `- rolearn: arn:aws:iam::000000000000:role/eks-node
  username: system:node:{{EC2PrivateDNSName}}
  groups:
  - system:bootstrappers
  - system:nodes
`
)

var awsAuthKey = types.NamespacedName{Name: "aws-auth", Namespace: "kube-system"}

var (
	johndoe  = identity.User("arn:aws:iam::000000000000:user/johndoe", "johndoe", "system:masters")
	mark     = identity.User("arn:aws:iam::000000000000:user/mark", "mark", "system:masters")
	csec     = identity.Role("arn:aws:iam::000000000000:role/sdm-csec-admin", "sdm-csec-admin", "csec-admin")
	nsAdmin  = identity.Role("arn:aws:iam::000000000000:role/sdm-namespace-admin", "sdm-namespace-admin", "namespace-admin")
	badArn   = identity.User("arn:aws:s3:::bucket", "broken")
	unknown  = identity.FromFields("", "", "nobody", nil)
)

func awsAuth(users, roles string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: awsAuthKey.Name, Namespace: awsAuthKey.Namespace},
		Data:       map[string]string{authmap.FieldUsers: users, authmap.FieldRoles: roles},
	}
}

func newClient(t *testing.T, funcs *interceptor.Funcs, objs ...client.Object) client.WithWatch {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, corev1.AddToScheme(scheme))

	b := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...)
	if funcs != nil {
		b = b.WithInterceptorFuncs(*funcs)
	}
	return b.Build()
}

func newMapper(t *testing.T, c client.Client, opts ...Option) *Mapper {
	t.Helper()
	opts = append([]Option{WithConflictBackoff(time.Millisecond)}, opts...)
	return NewMapper(authmap.NewConfigMapStore(c, c, awsAuthKey), opts...)
}

func stored(t *testing.T, c client.Client) *authmap.Document {
	t.Helper()
	cm := &corev1.ConfigMap{}
	require.NoError(t, c.Get(context.Background(), awsAuthKey, cm))
	doc, err := authmap.FromConfigMap(cm)
	require.NoError(t, err)
	return doc
}

func usernames(list []identity.Identity) []string {
	out := make([]string, 0, len(list))
	for _, id := range list {
		out = append(out, id.Username)
	}
	return out
}

type listerFunc func(ctx context.Context) ([]Desired, error)

func (f listerFunc) ListIdentities(ctx context.Context) ([]Desired, error) {
	return f(ctx)
}

func declaring(ids ...identity.Identity) DesiredLister {
	return listerFunc(func(context.Context) ([]Desired, error) {
		out := make([]Desired, 0, len(ids))
		for _, id := range ids {
			out = append(out, Desired{Name: id.Username, Identity: id})
		}
		return out, nil
	})
}
