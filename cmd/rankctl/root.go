package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ranker/internal/rankclient"
)

type globalOptions struct {
	server  string
	token   string
	timeout time.Duration
}

func (o *globalOptions) client() *rankclient.HTTPClient {
	return rankclient.NewHTTPClient(o.server, o.token)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "rankctl",
		Short: "Score search candidates and manage sorting configs",
		Long: `rankctl scores candidate lists offline and manages the sorting configs
of a running ranker service.

Examples:
  # Score candidates from a file with the factory weights
  rankctl score --query "zelda" --input candidates.json --explain

  # Preview an interactive weight edit
  rankctl adjust --preset balanced --set rating=50

  # Save, activate and roll back a config
  rankctl configs save --name Critics --preset critics
  rankctl configs apply <id>
  rankctl configs revert`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("RANKER_URL", "http://localhost:8600"), "ranker API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("RANKER_ADMIN_TOKEN"), "admin token for config changes")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(newScoreCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newAdjustCmd())
	root.AddCommand(newConfigsCmd(opts))

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
