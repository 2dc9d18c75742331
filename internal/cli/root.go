// Package cli implements the collide command line.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "collide",
		Short: "Identifier collision and distribution validator",
		Long: `collide draws a large population of identifiers from a source using
parallel workers, then checks that the population is collision free,
complete, uniformly spread over its keyspace and restricted to [a-z0-9].`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json (overrides config)")

	rootCmd.AddCommand(newRunCmd(g))
	rootCmd.AddCommand(newSharesCmd())
	return rootCmd
}

// Execute runs the collide command line. An interrupt cancels the run.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
