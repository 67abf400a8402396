// Command tsanomalyd runs the demo HTTP server: it exposes the detection,
// correlation, and root-cause endpoints over whatever series have been
// PUT into it, and re-scores every stored series on a cron schedule.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tsanomaly/internal/api"
	"tsanomaly/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	rescorer := api.NewRescorer(server.Store(), cfg.DefaultAlgorithm, cfg.ScorePercentThreshold, server.Notifier(), cfg.NotifyChannels)
	if err := rescorer.Start(cfg.RescoreCronSpec); err != nil {
		log.Fatalf("failed to start rescore scheduler: %v", err)
	}
	defer rescorer.Stop()

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}
