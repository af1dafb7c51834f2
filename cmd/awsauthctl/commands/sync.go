package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/awsauth-operator/cmd/awsauthctl/handlers"
)

// Sync returns the command that runs one full sync.
//
// Optional flags:
//
//	--prune: Remove undeclared entries previously written by the operator
//	--dry-run: Print the resulting mapUsers and mapRoles without writing
func Sync(opts *handlers.Options) *cobra.Command {
	var prune, dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Write every declared IAMIdentityMapping into aws-auth",
		Long: `Upsert every declared IAMIdentityMapping into aws-auth in a single write.

Entries that are not declared are left alone unless --prune is given, in
which case entries the operator wrote earlier are removed. Entries written
by anyone else are never removed.

Examples:
  # Preview the result
  awsauthctl sync --dry-run

  # Apply and prune
  awsauthctl sync --prune`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Sync(cmd.Context(), *opts, prune, dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Remove undeclared entries previously written by the operator")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the result without writing it")

	return cmd
}
