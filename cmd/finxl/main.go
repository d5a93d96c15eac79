// Command finxl converts financial statement text into spreadsheets.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

// setup loads configuration and builds a stderr logger so command output on
// stdout stays clean.
func (g *globalOptions) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(g.envFile, g.configFile)
	if err != nil {
		return nil, nil, err
	}
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	logCfg.Format = "text"
	if g.logLevel != "" {
		logCfg.Level = g.logLevel
	}
	logger, err := infrastructure.NewLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "finxl",
		Short: "Turn Profit & Loss statements into spreadsheets",
		Long: `finxl finds the Profit & Loss table in markdown or text documents,
normalizes its figures and writes them as a styled Excel workbook or CSV.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "config.yaml", "YAML configuration file, skipped when missing")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newConvertCmd(g), newInspectCmd(g))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
