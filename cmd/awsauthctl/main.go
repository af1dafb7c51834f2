// Package main is the entry point for the awsauthctl CLI.
//
// awsauthctl inspects and repairs the aws-auth ConfigMap from outside the
// cluster using the same engine as the operator.
//
// Commands: check, sync, export, version.
//
// For detailed usage information, run:
//
//	awsauthctl --help
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imamik/awsauth-operator/cmd/awsauthctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, commands.Root(), os.Stderr)
	stop()
	os.Exit(code)
}

// run executes root with ctx so an interrupt cancels in-flight API calls.
func run(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
