package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/comitanigiacomo/kanso-tally/internal/app"
	"github.com/comitanigiacomo/kanso-tally/internal/config"
	"github.com/comitanigiacomo/kanso-tally/internal/observability"
)

// @title           Kanso Tally API
// @version         1.0
// @description     Daily completion tracker: items, records, the tracker grid and statistics.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "path to a kanso.yaml file")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigPath: *configPath})
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	logger, err := observability.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
