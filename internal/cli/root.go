// Package cli implements the saaskit diagnostics commands. Both commands
// consume the read API only; neither mutates the store.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zzeleznick/saaskit/internal/kv"
	"github.com/zzeleznick/saaskit/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabasePath string
	RedisURL     string
	LogLevel     string
}

// NewRootCommand creates the root command for the saaskit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "saaskit",
		Short: "Diagnostics for the saaskit data layer",
		Long:  "Read-only tools that inspect the store: recompute item rankings or dump the raw keyspace.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DatabasePath == "" && opts.RedisURL == "" {
				return fmt.Errorf("one of --db or --redis is required")
			}
			if opts.DatabasePath != "" && opts.RedisURL != "" {
				return fmt.Errorf("--db and --redis are mutually exclusive")
			}
			logging.InitLogger(opts.LogLevel, "text")
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabasePath, "db", os.Getenv("DATABASE_PATH"), "path to the bolt database file (or set DATABASE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.RedisURL, "redis", os.Getenv("REDIS_URL"), "redis URL of the store (or set REDIS_URL)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewTopCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))

	return cmd
}

// openStore constructs the store selected by the global flags.
func openStore(opts *RootOptions) (kv.Store, error) {
	if opts.RedisURL != "" {
		return kv.OpenRedis(opts.RedisURL)
	}
	return kv.OpenBolt(opts.DatabasePath)
}
