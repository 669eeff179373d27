package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vitos/trade_analyzer/internal/config"
	"github.com/vitos/trade_analyzer/internal/infrastructure/exchange"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	symbol := flag.String("symbol", "BTCUSDT", "symbol to fetch")
	days := flag.Int("days", 7, "number of daily candles to fetch")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing Bybit Interaction...\n")
	fmt.Printf("Endpoint: %s (%s)\n", cfg.Exchange.RESTEndpoint, cfg.Exchange.Category)

	adapter := exchange.NewBybitAdapter(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.RESTEndpoint, cfg.Exchange.Category)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -*days)
	candles, err := adapter.GetDailyCandles(ctx, *symbol, from, to)
	if err != nil {
		fmt.Printf("❌ Failed to get candles: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %d daily candles for %s:\n", len(candles), exchange.BybitSymbol(*symbol))
	for _, c := range candles {
		fmt.Printf("  %s O=%.2f H=%.2f L=%.2f C=%.2f V=%.2f\n",
			time.Unix(c.Time, 0).UTC().Format("2006-01-02"), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
}
