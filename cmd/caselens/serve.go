package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"caselens/internal/engine"
	"caselens/internal/pipeline"
	"caselens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis endpoint",
	Long: `Serves POST /v1/analyze. Each request runs one sequential analysis:
validate, compute policy facts, build the instruction, invoke the reasoning
engine once, reconcile, respond. Nothing is retried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cfg.Engine)
		if err != nil {
			return err
		}
		logger.Info("reasoning engine configured",
			zap.String("provider", cfg.Engine.Provider),
			zap.String("model", eng.Model()))

		pipe := pipeline.New(eng, logger)
		srv := server.New(cfg, pipe, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}
