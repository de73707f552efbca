// Command backtest runs a strategy simulation over stored candle history
// and prints the derived metrics block.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/trainflow/strategy-engine/internal/backtest"
	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/storage"
	"github.com/trainflow/strategy-engine/internal/tools"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/strategy-engine.db", "path to SQLite database")
	symbol := flag.String("symbol", "", "symbol to simulate (default from config)")
	timeframe := flag.String("timeframe", "1h", "candle timeframe")
	rule := flag.String("rule", "sma_crossover", "rule set: sma_crossover, rsi, price_cross")
	params := flag.String("params", "{}", "rule parameters as JSON")
	strategyID := flag.String("strategy", "", "strategy id to persist the results on")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database init error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	if err := tools.SeedMarketData(repo); err != nil {
		fmt.Fprintf(os.Stderr, "seed market data error: %v\n", err)
		os.Exit(1)
	}

	sym := *symbol
	if sym == "" {
		sym = cfg.Backtest.DefaultSymbol
	}

	stored, err := repo.GetCandles(sym, *timeframe, 500)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load candles error: %v\n", err)
		os.Exit(1)
	}
	if len(stored) == 0 {
		fmt.Fprintf(os.Stderr, "no candle data for %s (%s)\n", sym, *timeframe)
		os.Exit(1)
	}

	candles := make([]backtest.Candle, len(stored))
	for i, c := range stored {
		candles[i] = backtest.Candle{
			Time: c.Time, Open: c.Open, High: c.High, Low: c.Low,
			Close: c.Close, Volume: c.Volume,
		}
	}

	ruleJSON := fmt.Sprintf(`{"type":%q,"params":%s}`, *rule, *params)
	signal, err := backtest.ParseRules([]byte(ruleJSON))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rule error: %v\n", err)
		os.Exit(1)
	}

	start := cfg.Backtest.StartingEquity
	trades, curve := backtest.Simulate(candles, signal, start)
	metrics := backtest.ComputeMetrics(trades, curve, start)

	fmt.Printf("Backtest: %s (%s), %d candles, rule %s\n\n", sym, *timeframe, len(candles), *rule)
	fmt.Printf("  Total return:   %8.2f %%\n", metrics.TotalReturnPct)
	fmt.Printf("  Total trades:   %8d\n", metrics.TotalTrades)
	fmt.Printf("  Winning trades: %8d\n", metrics.WinningTrades)
	fmt.Printf("  Losing trades:  %8d\n", metrics.LosingTrades)
	fmt.Printf("  Win rate:       %8.2f %%\n", metrics.WinRate)
	fmt.Printf("  Profit factor:  %8.2f\n", metrics.ProfitFactor)
	fmt.Printf("  Max drawdown:   %8.2f %%\n", metrics.MaxDrawdownPct)
	fmt.Printf("  Average win:    %8.2f\n", metrics.AverageWin)
	fmt.Printf("  Average loss:   %8.2f\n", metrics.AverageLoss)
	fmt.Printf("  Largest win:    %8.2f\n", metrics.LargestWin)
	fmt.Printf("  Largest loss:   %8.2f\n", metrics.LargestLoss)

	if *strategyID != "" {
		metricsJSON, _ := json.Marshal(metrics)
		curveJSON, _ := json.Marshal(curve)
		if err := repo.UpdateAnalytics(*strategyID, string(metricsJSON), string(curveJSON)); err != nil {
			fmt.Fprintf(os.Stderr, "persist analytics error: %v\n", err)
			os.Exit(1)
		}
		log.Info("analytics saved", "strategy", *strategyID)
	}
}
