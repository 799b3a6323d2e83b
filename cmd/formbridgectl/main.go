// Package main provides formbridgectl, the operator CLI for the form service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/logging"
)

var (
	// cfg is loaded once for every command
	cfg *config.Config

	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "formbridgectl",
	Short: "Operator tooling for the formbridge service",
	Long: `formbridgectl mints admin tokens, generates CRM form ids, dumps the
field catalog and runs maintenance jobs against the service database.

Configuration is read from the same environment as the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(formIDCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(retentionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	// only warnings and errors unless asked
	if verbose {
		logging.SetLevel(zapcore.DebugLevel)
	} else {
		logging.SetLevel(zapcore.WarnLevel)
	}
	return nil
}
