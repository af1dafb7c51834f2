package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/config"
	"github.com/imamik/awsauth-operator/internal/mapping"
	"github.com/imamik/awsauth-operator/internal/operator/controller"
)

// Sync handles the sync command.
func Sync(ctx context.Context, opts Options, prune, dryRun bool, out io.Writer) error {
	k8sClient, cfg, err := setup(opts)
	if err != nil {
		return err
	}
	return runSync(ctx, k8sClient, cfg, prune, dryRun, out, isInteractiveTTY())
}

func runSync(ctx context.Context, k8sClient client.Client, cfg *config.Config, prune, dryRun bool, out io.Writer, styled bool) error {
	policy := cfg.PrunePolicy
	if prune {
		policy = mapping.PruneOwned
	}

	mapper := mapping.NewMapper(authmap.NewConfigMapStore(k8sClient, k8sClient, cfg.Key()))
	fullSync := mapping.NewFullSync(mapper, controller.NewMappingLister(k8sClient),
		mapping.WithPrunePolicy(policy),
		mapping.WithDryRun(dryRun),
	)

	report, err := fullSync.Run(ctx)
	if err != nil {
		return fmt.Errorf("full sync failed: %w", err)
	}

	fmt.Fprint(out, renderer{styled: styled}.renderSyncReport(cfg.Key().String(), report))

	if dryRun && report.Document != nil {
		users, roles, _, err := report.Document.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s:\n%s\n%s:\n%s", authmap.FieldUsers, indent(users), authmap.FieldRoles, indent(roles))
	}
	return nil
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", "\n  ") + "\n"
}
