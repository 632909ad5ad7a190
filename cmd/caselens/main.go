// caselens analyzes call-center refund cases: deterministic policy math plus
// an external reasoning engine, reconciled into one auditable result.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"caselens/internal/audit"
	"caselens/internal/client"
	"caselens/internal/config"
	"caselens/internal/tui"
)

var (
	cfgPath   string
	verbose   bool
	serverURL string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "caselens",
	Short: "Policy-augmented analysis of call-center refund cases",
	Long: `caselens collects free-text case notes and booking figures, computes
refund-cap arithmetic deterministically, delegates semantic risk judgment to
an external reasoning engine, reconciles both into one structured result, and
records every completed analysis for audit.

Run without arguments to start the interactive agent workflow.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if !cfg.Logging.JSON {
			zcfg = zap.NewDevelopmentConfig()
		}
		if verbose || cfg.Logging.Level == "debug" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd)
	},
}

// runWorkflow launches the interactive TUI against a running server.
func runWorkflow(cmd *cobra.Command) error {
	api := client.New(serverURL)

	// The audit write is client-driven: the workflow persists the record
	// after the result is displayed. A store that fails to open degrades to
	// a visible audit-unavailable status, not a startup failure.
	store, err := audit.Open(cmd.Context(), cfg.Audit)
	if err != nil {
		logger.Warn("audit store unavailable", zap.Error(err))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	model := tui.New(api, store, cfg.Audit.AuditTimeout(), logger)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "caselens.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "analysis server base URL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
