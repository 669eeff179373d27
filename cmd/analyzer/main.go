package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_analyzer/internal/app"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	userID := flag.String("user", "", "import matched trades for this user instead of only analyzing")
	platform := flag.String("platform", usecase.DefaultImportPlatform, "platform tag stored on imported positions")
	asJSON := flag.Bool("json", false, "print the full analysis as JSON")
	template := flag.Bool("template", false, "print a sample CSV and exit")
	flag.Parse()

	if *template {
		fmt.Print(usecase.CSVTemplate)
		return
	}

	if flag.NArg() != 1 {
		fmt.Println("Usage: analyzer [flags] <orders.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	var analysis *domain.TradeAnalysis
	if *userID != "" {
		res, err := a.Importer.Import(context.Background(), *userID, *platform, string(data))
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			os.Exit(1)
		}
		analysis = res.Analysis
		defer fmt.Printf("\nImported %d positions for %s (%d duplicates, %d failed)\n",
			res.Inserted, *userID, res.Duplicates, res.Failed)
	} else {
		analysis, err = a.Analyzer.Analyze(string(data))
		if err != nil {
			fmt.Printf("Analysis failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Printf("Encode error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printAnalysis(analysis)
}

func printAnalysis(a *domain.TradeAnalysis) {
	fmt.Printf("Detected columns:\n")
	for header, field := range a.ParseResult.FieldMappings {
		fmt.Printf("  %-24s -> %s\n", header, field)
	}

	fmt.Printf("\nMatched trades (%d):\n", len(a.MatchedTrades))
	fmt.Printf("%-12s | %-5s | %-12s | %-12s | %-10s | %-12s | %-8s | %s\n",
		"Symbol", "Side", "Entry", "Exit", "Qty", "Net P/L", "P/L %", "Exit Time")
	fmt.Println("----------------------------------------------------------------------------------------------------")
	for _, t := range a.MatchedTrades {
		fmt.Printf("%-12s | %-5s | %-12.5f | %-12.5f | %-10.4f | %-12.2f | %-8.3f | %s\n",
			t.Symbol, t.Side, t.EntryPrice, t.ExitPrice, t.Quantity, t.NetPnL, t.PnLPercent,
			t.ExitTime.Format("2006-01-02 15:04"))
	}

	if len(a.UnmatchedOrders) > 0 {
		fmt.Printf("\nUnmatched orders (%d):\n", len(a.UnmatchedOrders))
		for _, o := range a.UnmatchedOrders {
			fmt.Printf("  row %-5d %-12s %-4s %.4f @ %.5f\n", o.RowNumber, o.Symbol, o.Side, o.Quantity, o.FillPrice)
		}
	}

	if len(a.ParseResult.SkippedRows) > 0 {
		fmt.Printf("\nSkipped rows (%d):\n", len(a.ParseResult.SkippedRows))
		for _, r := range a.ParseResult.SkippedRows {
			fmt.Printf("  row %-5d %s\n", r.RowNumber, r.Reason)
		}
	}

	s := a.Summary
	fmt.Printf("\nSummary: %d trades, win rate %.1f%%, net P/L %.2f (gross %.2f, commission %.2f)\n",
		s.TotalTrades, s.WinRate, s.NetPnL, s.GrossPnL, s.TotalCommission)
	fmt.Printf("Best %.2f, worst %.2f, avg %.2f\n", s.BestTrade, s.WorstTrade, s.AvgPnL)

	fmt.Printf("\n%-10s | %-8s | %-12s | %s\n", "Symbol", "Trades", "Net P/L", "Win %")
	for _, sym := range s.BySymbol {
		fmt.Printf("%-10s | %-8d | %-12.2f | %.1f\n", sym.Symbol, sym.Trades, sym.NetPnL, sym.WinRate)
	}

	fmt.Printf("\n%-10s | %-8s | %-12s | %s\n", "Date", "Trades", "Net P/L", "Win %")
	for _, d := range s.Daily {
		fmt.Printf("%-10s | %-8d | %-12.2f | %.1f\n", d.Date, d.Trades, d.NetPnL, d.WinRate)
	}
}
