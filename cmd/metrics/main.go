package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_analyzer/internal/app"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	all := flag.Bool("all", false, "recalculate every user with stored positions")
	flag.Parse()

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	ctx := context.Background()

	if *all {
		done, err := a.Metrics.RecalculateAll(ctx)
		fmt.Printf("Recalculated %d users\n", done)
		if err != nil {
			fmt.Printf("❌ Errors: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Println("Usage: metrics [-all] [-config path] <user-id>")
		os.Exit(2)
	}

	m, err := a.Metrics.Recalculate(ctx, flag.Arg(0))
	if err != nil {
		fmt.Printf("❌ Recalculation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User:              %s\n", m.UserID)
	fmt.Printf("Qualifying trades: %d (verified %d)\n", m.QualifyingTrades, m.TotalVerifiedTrades)
	fmt.Printf("W / L / BE:        %d / %d / %d (win rate %.1f%%)\n", m.Wins, m.Losses, m.Breakeven, m.WinRate)
	fmt.Printf("Avg R:             %.3f\n", m.AvgRMultiple)
	fmt.Printf("Total R:           %.3f\n", m.TotalRMultiple)
	fmt.Printf("Positive R:        %.1f%%\n", m.PositiveRPercent)
	fmt.Printf("R variance:        %.4f\n", m.RMultipleVariance)
	if m.AccuracyScore != nil {
		fmt.Printf("Accuracy score:    %.1f\n", *m.AccuracyScore)
	} else {
		fmt.Printf("Accuracy score:    ⚠️ needs at least 30 trades\n")
	}
	fmt.Printf("Verified:          %t (connection %s)\n", m.IsVerified, m.APIConnectionStatus)
}
