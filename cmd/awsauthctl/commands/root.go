// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/awsauth-operator/cmd/awsauthctl/handlers"
)

// Root returns the root command for the awsauthctl CLI.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "awsauthctl",
		Short:         "Inspect and reconcile the aws-auth ConfigMap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the operator configuration file")

	cmd.AddCommand(Check(opts))
	cmd.AddCommand(Sync(opts))
	cmd.AddCommand(Export(opts))
	cmd.AddCommand(Version())

	return cmd
}
