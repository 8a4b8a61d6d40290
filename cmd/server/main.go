package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AngelCh415/ROAS_GO/internal/config"
	"github.com/AngelCh415/ROAS_GO/internal/httpx"
	"github.com/AngelCh415/ROAS_GO/internal/ingest"
	"github.com/AngelCh415/ROAS_GO/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	tel := telemetry.New()
	etl := ingest.NewETL(logger, tel)

	r := httpx.NewRouter(logger, cfg, etl, tel)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout,
	}

	logger.Info("starting server",
		slog.String("port", cfg.Port),
		slog.String("column_selection", cfg.Pipeline.ColumnSelection),
		slog.Bool("allow_multiple_cost_files", cfg.Pipeline.AllowMultipleCostFiles))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
