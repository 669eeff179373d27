package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_analyzer/internal/config"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	users, err := store.ListUserIDs(ctx)
	if err != nil {
		fmt.Printf("Failed to list users: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d users in %s:\n", len(users), cfg.Storage.Path)
	for _, userID := range users {
		positions, err := store.ListPositions(ctx, userID)
		if err != nil {
			fmt.Printf("  ❌ Failed to list positions for %s: %v\n", userID, err)
			continue
		}

		fmt.Printf("- User: %s, Positions: %d\n", userID, len(positions))
		for _, p := range positions {
			r := "-"
			if p.RMultiple != nil {
				r = fmt.Sprintf("%.3f", *p.RMultiple)
			}
			fmt.Printf("    %s %-10s %-5s %.5f -> %.5f qty=%.4f net=%.2f R=%s verified=%t\n",
				p.ID, p.Symbol, p.Side, p.EntryPrice, p.ExitPrice, p.Quantity, p.NetPnL(), r, p.ExchangeVerified)
		}

		m, err := store.GetTradingMetrics(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			fmt.Printf("  ⚠️ No metrics computed yet\n")
		case err != nil:
			fmt.Printf("  ❌ Failed to get metrics: %v\n", err)
		default:
			score := "n/a"
			if m.AccuracyScore != nil {
				score = fmt.Sprintf("%.1f", *m.AccuracyScore)
			}
			fmt.Printf("  ✅ Metrics: trades=%d avgR=%.3f score=%s verified=%t status=%s\n",
				m.QualifyingTrades, m.AvgRMultiple, score, m.IsVerified, m.APIConnectionStatus)
		}
	}
}
