package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/awsauth-operator/cmd/awsauthctl/handlers"
)

// Check returns the command that runs the drift check once.
func Check(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare aws-auth with the declared IAMIdentityMappings",
		Long: `Compare the usernames in aws-auth with the declared IAMIdentityMappings.

Usernames on the ignore list are not compared. The command exits non-zero
when aws-auth has drifted.

Examples:
  # Check the default aws-auth ConfigMap
  awsauthctl check

  # Compare mapRoles as well
  DRIFT_SCOPE=all awsauthctl check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Check(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
}
