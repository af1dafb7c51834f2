// Package handlers implements the awsauthctl commands.
package handlers

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	awsauthv1alpha1 "github.com/imamik/awsauth-operator/api/v1alpha1"
	"github.com/imamik/awsauth-operator/internal/config"
)

// Options are the flags shared by every command.
type Options struct {
	Kubeconfig string
	ConfigPath string
}

// newClient is replaced in tests.
var newClient = func(kubeconfig string) (client.Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = kubeconfig

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	k8sClient, err := client.New(restConfig, client.Options{Scheme: awsauthv1alpha1.Scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return k8sClient, nil
}

func setup(opts Options) (client.Client, *config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	k8sClient, err := newClient(opts.Kubeconfig)
	if err != nil {
		return nil, nil, err
	}
	return k8sClient, cfg, nil
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
