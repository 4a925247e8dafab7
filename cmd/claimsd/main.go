package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/superclaims/claims-processor/internal/app"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/export"
	"github.com/superclaims/claims-processor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := app.BuildOrchestrator(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, orch, export.NewService(logger), logger)
	logger.Info("claimsd starting", "addr", cfg.Server.Addr, "model", cfg.LLM.Model)

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("claimsd stopped")
}
