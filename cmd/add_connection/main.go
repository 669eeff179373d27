package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/vitos/trade_analyzer/internal/config"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	userID := flag.String("user", "", "user id")
	exchangeName := flag.String("exchange", "bybit", "exchange name")
	status := flag.String("status", domain.ConnectionStatusActive, "connection status")
	flag.Parse()

	if *userID == "" {
		log.Fatalf("-user is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	conn := &domain.ExchangeConnection{
		UserID:     *userID,
		Exchange:   *exchangeName,
		Status:     *status,
		LastSyncAt: &now,
	}

	if err := store.SaveConnection(context.Background(), conn); err != nil {
		log.Fatalf("Failed to save connection: %v", err)
	}

	fmt.Printf("✅ Connection saved!\n")
	fmt.Printf("User: %s\n", conn.UserID)
	fmt.Printf("Exchange: %s\n", conn.Exchange)
	fmt.Printf("Status: %s\n", conn.Status)
	fmt.Printf("Last sync: %s\n", now.Format(time.RFC3339))
}
