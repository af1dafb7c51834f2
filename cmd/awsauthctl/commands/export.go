package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/awsauth-operator/cmd/awsauthctl/handlers"
)

// Export returns the command that prints manifests for undeclared entries.
func Export(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print IAMIdentityMapping manifests for entries not yet declared",
		Long: `Print an IAMIdentityMapping manifest for every aws-auth entry that no
IAMIdentityMapping declares. Usernames on the ignore list are skipped.

Examples:
  # Adopt existing entries
  awsauthctl export > mappings.yaml
  kubectl apply -f mappings.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Export(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
}
