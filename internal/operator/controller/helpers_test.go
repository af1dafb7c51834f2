package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

const seedUsers = `- userarn: arn:aws:iam::000000000000:user/johndoe
  username: johndoe
  groups:
  - system:masters
`

var awsAuthKey = types.NamespacedName{Name: "aws-auth", Namespace: "kube-system"}

func setupTestScheme(t *testing.T) *runtime.Scheme {
	scheme := runtime.NewScheme()
	require.NoError(t, corev1.AddToScheme(scheme))
	require.NoError(t, awsauthv1alpha1.AddToScheme(scheme))
	return scheme
}

func awsAuthConfigMap(users string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: awsAuthKey.Name, Namespace: awsAuthKey.Namespace},
		Data:       map[string]string{authmap.FieldUsers: users},
	}
}

func userMapping(name, username string, groups ...string) *awsauthv1alpha1.IAMIdentityMapping {
	return &awsauthv1alpha1.IAMIdentityMapping{
		ObjectMeta: metav1.ObjectMeta{Name: name, Generation: 1},
		Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
			UserARN:  "arn:aws:iam::000000000000:user/" + username,
			Username: username,
			Groups:   groups,
		},
	}
}

func roleMapping(name, username string, groups ...string) *awsauthv1alpha1.IAMIdentityMapping {
	return &awsauthv1alpha1.IAMIdentityMapping{
		ObjectMeta: metav1.ObjectMeta{Name: name, Generation: 1},
		Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
			RoleARN:  "arn:aws:iam::000000000000:role/" + username,
			Username: username,
			Groups:   groups,
		},
	}
}

// testRESTMapper marks IAMIdentityMapping as cluster scoped.
func testRESTMapper() meta.RESTMapper {
	mapper := meta.NewDefaultRESTMapper(nil)
	mapper.Add(awsauthv1alpha1.GroupVersion.WithKind("IAMIdentityMapping"), meta.RESTScopeRoot)
	mapper.Add(corev1.SchemeGroupVersion.WithKind("ConfigMap"), meta.RESTScopeNamespace)
	return mapper
}

type testEnv struct {
	client   client.Client
	recorder *record.FakeRecorder
	r        *IdentityMappingReconciler
}

func newTestEnv(t *testing.T, funcs *interceptor.Funcs, objs ...client.Object) *testEnv {
	t.Helper()
	scheme := setupTestScheme(t)

	b := fake.NewClientBuilder().
		WithScheme(scheme).
		WithRESTMapper(testRESTMapper()).
		WithObjects(objs...).
		WithStatusSubresource(&awsauthv1alpha1.IAMIdentityMapping{})
	if funcs != nil {
		b = b.WithInterceptorFuncs(*funcs)
	}
	c := b.Build()

	store := authmap.NewConfigMapStore(c, c, awsAuthKey)
	mapper := mapping.NewMapper(store, mapping.WithConflictBackoff(time.Millisecond))
	recorder := record.NewFakeRecorder(20)

	return &testEnv{
		client:   c,
		recorder: recorder,
		r:        NewIdentityMappingReconciler(c, scheme, recorder, mapping.NewReconciler(mapper), WithMetrics(false)),
	}
}

func (e *testEnv) reconcile(t *testing.T, name string) (ctrl.Result, error) {
	t.Helper()
	return e.r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Name: name}})
}

func (e *testEnv) mapping(t *testing.T, name string) *awsauthv1alpha1.IAMIdentityMapping {
	t.Helper()
	im := &awsauthv1alpha1.IAMIdentityMapping{}
	require.NoError(t, e.client.Get(context.Background(), types.NamespacedName{Name: name}, im))
	return im
}

func (e *testEnv) document(t *testing.T) *authmap.Document {
	t.Helper()
	cm := &corev1.ConfigMap{}
	require.NoError(t, e.client.Get(context.Background(), awsAuthKey, cm))
	doc, err := authmap.FromConfigMap(cm)
	require.NoError(t, err)
	return doc
}

func (e *testEnv) configMapVersion(t *testing.T) string {
	t.Helper()
	cm := &corev1.ConfigMap{}
	require.NoError(t, e.client.Get(context.Background(), awsAuthKey, cm))
	return cm.ResourceVersion
}

// drainEvents returns every event recorded so far.
func drainEvents(recorder *record.FakeRecorder) []string {
	var events []string
	for {
		select {
		case e := <-recorder.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}
