//go:build integration

// Integration tests against a real kube-apiserver and etcd started by envtest.
//
// Run these tests with:
//
//	KUBEBUILDER_ASSETS="$(setup-envtest use -p path)" go test -v -tags=integration ./internal/operator/controller/...
package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

var (
	cfg       *rest.Config
	k8sClient client.Client
	testEnv   *envtest.Environment
	ctx       context.Context
	cancel    context.CancelFunc

	store *authmap.ConfigMapStore
)

// TestControllerIntegration is the entry point for Ginkgo tests.
func TestControllerIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Integration Suite")
}

var _ = BeforeSuite(func() {
	logf.SetLogger(zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))

	ctx, cancel = context.WithCancel(context.Background())

	By("bootstrapping test environment with real kube-apiserver and etcd")
	testEnv = &envtest.Environment{
		CRDDirectoryPaths:     []string{filepath.Join("..", "..", "..", "config", "crd", "bases")},
		ErrorIfCRDPathMissing: true,
	}

	var err error
	cfg, err = testEnv.Start()
	Expect(err).NotTo(HaveOccurred())
	Expect(cfg).NotTo(BeNil())

	k8sClient, err = client.New(cfg, client.Options{Scheme: awsauthv1alpha1.Scheme})
	Expect(err).NotTo(HaveOccurred())

	Expect(k8sClient.Create(ctx, &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}})).
		To(Or(Succeed(), WithTransform(apierrors.IsAlreadyExists, BeTrue())))

	k8sManager, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme:  awsauthv1alpha1.Scheme,
		Metrics: metricsserver.Options{BindAddress: "0"},
	})
	Expect(err).NotTo(HaveOccurred())

	key := types.NamespacedName{Name: "aws-auth", Namespace: "kube-system"}
	store = authmap.NewConfigMapStore(k8sManager.GetAPIReader(), k8sManager.GetClient(), key)
	mapper := mapping.NewMapper(store, mapping.WithLogger(ctrl.Log.WithName("mapping")))

	err = NewIdentityMappingReconciler(
		k8sManager.GetClient(),
		k8sManager.GetScheme(),
		k8sManager.GetEventRecorderFor("iamidentitymapping-controller"),
		mapping.NewReconciler(mapper),
		WithMetrics(false),
	).SetupWithManager(k8sManager)
	Expect(err).NotTo(HaveOccurred())

	go func() {
		defer GinkgoRecover()
		err := k8sManager.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
	}()

	By("waiting for manager cache to sync")
	Eventually(func() bool {
		return k8sManager.GetCache().WaitForCacheSync(ctx)
	}, time.Second*30, time.Millisecond*500).Should(BeTrue(), "timed out waiting for cache sync")
})

var _ = AfterSuite(func() {
	cancel()
	By("tearing down the test environment")
	err := testEnv.Stop()
	Expect(err).NotTo(HaveOccurred())
})

var _ = Describe("IAMIdentityMapping Controller", func() {
	const (
		timeout  = time.Second * 30
		interval = time.Millisecond * 250
	)

	var name string

	BeforeEach(func() {
		name = fmt.Sprintf("mapping-%d-%d", GinkgoRandomSeed(), time.Now().UnixNano()%100000)
	})

	usernamesIn := func(kind string) func() []string {
		return func() []string {
			doc, err := store.Fetch(ctx)
			if err != nil {
				return nil
			}
			var names []string
			list := doc.Users
			if kind == "role" {
				list = doc.Roles
			}
			for _, id := range list {
				names = append(names, id.Username)
			}
			return names
		}
	}

	getMapping := func() *awsauthv1alpha1.IAMIdentityMapping {
		im := &awsauthv1alpha1.IAMIdentityMapping{}
		Expect(k8sClient.Get(ctx, types.NamespacedName{Name: name}, im)).To(Succeed())
		return im
	}

	It("writes a user mapping and removes it on delete", func() {
		By("creating an IAMIdentityMapping")
		im := &awsauthv1alpha1.IAMIdentityMapping{
			ObjectMeta: metav1.ObjectMeta{Name: name},
			Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
				UserARN:  "arn:aws:iam::000000000000:user/" + name,
				Username: name,
				Groups:   []string{"system:masters"},
			},
		}
		Expect(k8sClient.Create(ctx, im)).To(Succeed())

		By("waiting for the entry in mapUsers")
		Eventually(usernamesIn("user"), timeout, interval).Should(ContainElement(name))

		By("checking the Synced condition")
		Eventually(func() bool {
			return meta.IsStatusConditionTrue(getMapping().Status.Conditions, awsauthv1alpha1.ConditionSynced)
		}, timeout, interval).Should(BeTrue())
		Expect(getMapping().Finalizers).To(ContainElement(awsauthv1alpha1.Finalizer))

		By("deleting the IAMIdentityMapping")
		Expect(k8sClient.Delete(ctx, getMapping())).To(Succeed())
		Eventually(usernamesIn("user"), timeout, interval).ShouldNot(ContainElement(name))
		Eventually(func() bool {
			err := k8sClient.Get(ctx, types.NamespacedName{Name: name}, &awsauthv1alpha1.IAMIdentityMapping{})
			return apierrors.IsNotFound(err)
		}, timeout, interval).Should(BeTrue())
	})

	It("moves a mapping between lists when its kind changes", func() {
		im := &awsauthv1alpha1.IAMIdentityMapping{
			ObjectMeta: metav1.ObjectMeta{Name: name},
			Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
				UserARN:  "arn:aws:iam::000000000000:user/" + name,
				Username: name,
			},
		}
		Expect(k8sClient.Create(ctx, im)).To(Succeed())
		Eventually(usernamesIn("user"), timeout, interval).Should(ContainElement(name))

		By("switching to a role ARN")
		Eventually(func() error {
			current := getMapping()
			current.Spec.UserARN = ""
			current.Spec.RoleARN = "arn:aws:iam::000000000000:role/" + name
			return k8sClient.Update(ctx, current)
		}, timeout, interval).Should(Succeed())

		Eventually(usernamesIn("role"), timeout, interval).Should(ContainElement(name))
		Expect(usernamesIn("user")()).NotTo(ContainElement(name))

		Expect(k8sClient.Delete(ctx, getMapping())).To(Succeed())
		Eventually(usernamesIn("role"), timeout, interval).ShouldNot(ContainElement(name))
	})

	It("reports invalid mappings without touching aws-auth", func() {
		im := &awsauthv1alpha1.IAMIdentityMapping{
			ObjectMeta: metav1.ObjectMeta{Name: name},
			Spec: awsauthv1alpha1.IAMIdentityMappingSpec{
				UserARN:  "arn:aws:s3:::not-a-principal",
				Username: name,
			},
		}
		Expect(k8sClient.Create(ctx, im)).To(Succeed())

		Eventually(func() string {
			cond := meta.FindStatusCondition(getMapping().Status.Conditions, awsauthv1alpha1.ConditionSynced)
			if cond == nil {
				return ""
			}
			return cond.Reason
		}, timeout, interval).Should(Equal(awsauthv1alpha1.ReasonInvalidSpec))
		Expect(usernamesIn("user")()).NotTo(ContainElement(name))

		Expect(k8sClient.Delete(ctx, getMapping())).To(Succeed())
	})
})
