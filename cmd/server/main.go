package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vitos/trade_analyzer/internal/app"
	"github.com/vitos/trade_analyzer/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	// 1. Load config, logger, storage and services
	a, err := app.New(*configPath)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	log := a.Logger
	defer a.Close(context.Background())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 2. Scheduled recalculation for every user (optional)
	var scheduler *cron.Cron
	if schedule := a.Config.Metrics.Schedule; schedule != "" {
		scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		_, err := scheduler.AddFunc(schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			done, err := a.Metrics.RecalculateAll(ctx)
			if err != nil {
				log.Error("Scheduled recalculation finished with errors", zap.Int("users", done), zap.Error(err))
				return
			}
			log.Info("Scheduled recalculation finished", zap.Int("users", done))
		})
		if err != nil {
			log.Fatal("Invalid metrics schedule", zap.String("schedule", schedule), zap.Error(err))
		}
		scheduler.Start()
		log.Info("Metrics schedule enabled", zap.String("schedule", schedule))
	}

	// 3. Web server
	server := web.NewServer(a.Config.Server.Port, a.Store, a.Store, a.Analyzer, a.Importer, a.Metrics, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 4. Wait for shutdown
	<-stop

	log.Info("Shutting down...")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
