// Package cli wires the slatesearch commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/slatesearch/internal/config"
	"github.com/kailas-cloud/slatesearch/internal/version"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	env      string
	logLevel string
}

// NewRootCommand builds the slatesearch command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "slatesearch",
		Short: "Semantic search across people, organizations, locations, and productions",
		Long: `slatesearch embeds directory records and answers free-text queries by meaning.

Example usage:
  slatesearch serve                                      # Start the HTTP API
  slatesearch index --kind person --file people.jsonl    # Embed and store records
  slatesearch canon --kind location --file venues.jsonl  # Print canonical text`,
		Version:       version.Version + " (" + version.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment: selects config/<env>.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newIndexCommand(opts))
	cmd.AddCommand(newCanonCommand())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
