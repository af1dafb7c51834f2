package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/awsauth-operator/internal/authmap"
	"github.com/imamik/awsauth-operator/internal/config"
	"github.com/imamik/awsauth-operator/internal/mapping"
	"github.com/imamik/awsauth-operator/internal/operator/controller"
)

// ErrDrift is returned by Check when aws-auth is out of sync.
var ErrDrift = errors.New("aws-auth is out of sync with the declared mappings")

// Check handles the check command.
func Check(ctx context.Context, opts Options, out io.Writer) error {
	k8sClient, cfg, err := setup(opts)
	if err != nil {
		return err
	}
	return runCheck(ctx, k8sClient, cfg, out, isInteractiveTTY())
}

func runCheck(ctx context.Context, k8sClient client.Client, cfg *config.Config, out io.Writer, styled bool) error {
	detector := mapping.NewDriftDetector(
		authmap.NewConfigMapStore(k8sClient, k8sClient, cfg.Key()),
		controller.NewMappingLister(k8sClient),
		mapping.WithScope(cfg.DriftScope),
		mapping.WithIgnored(cfg.IgnoreSet().UnsortedList()...),
	)

	err := detector.Check(ctx)
	var drift *mapping.OutOfSyncError
	if err != nil && !errors.As(err, &drift) {
		return err
	}

	fmt.Fprint(out, renderer{styled: styled}.renderDrift(cfg.Key().String(), drift))
	if drift != nil {
		return ErrDrift
	}
	return nil
}
