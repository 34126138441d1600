package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/netxfw/saf/internal/config"
	"github.com/netxfw/saf/internal/engine"
	"github.com/netxfw/saf/internal/utils/logger"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every configured pipeline until interrupted",
	// Short: 运行所有配置的管道直到被中断
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get(cmd.Context())

		cfg, err := config.Load(configPath())
		if err != nil {
			return err
		}

		// Wait for exit signal (Ctrl+C, etc) / 等待退出信号
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := engine.Start(ctx, cfg, engine.WithLogger(log))
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			log.Info("👋 Shutting down...")
		case <-e.Done():
			log.Warn("⚠️  All pipelines stopped")
		}
		return e.Stop(context.Background())
	},
}
