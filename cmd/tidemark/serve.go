package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/api"
	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tidemark API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	loader, err := buildLoader(cfg, log)
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		APIKey:  cfg.Server.APIKey,
		JobTTL:  time.Duration(cfg.Server.JobTTLHours) * time.Hour,
		MaxJobs: cfg.Server.MaxJobs,
		Backtest: backtest.Config{
			InitialCapital:  cfg.Backtest.InitialCapital,
			CommissionPct:   cfg.Backtest.CommissionPct,
			SlippagePct:     cfg.Backtest.SlippagePct,
			PositionSizePct: cfg.Backtest.PositionSizePct,
		},
	}, loader, buildRegistry(), log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
