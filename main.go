package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orbitflow/config"
	"orbitflow/exporter"
	"orbitflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Orbitflow.Name,
		"version": cfg.Orbitflow.Version,
	}).Info("starting orbitflow export")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Logging.Report {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	exp, err := exporter.New(cfg)
	if err != nil {
		log.WithError(err).Error("failed to create exporter")
		os.Exit(1)
	}

	manifest, err := exp.Run(ctx)
	if err != nil {
		log.WithError(err).Error("export run failed")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"run_id": manifest.RunID,
		"bodies": len(manifest.Files),
		"out":    cfg.Export.OutDir,
	}).Info("export run complete")
}
