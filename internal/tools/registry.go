// Package tools implements the fixed capability table behind inline
// [TOOL_CALL:...] directives. The same table is exposed to UI code directly,
// so a tool behaves identically however it is invoked.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trainflow/strategy-engine/internal/backtest"
	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/storage"
)

// Tool names in the capability table.
const (
	ToolValidateCode    = "validateCode"
	ToolRunBacktest     = "runBacktest"
	ToolGetMarketData   = "getMarketData"
	ToolAnalyzeStrategy = "analyzeStrategy"
	ToolOptimizeCode    = "optimizeCode"
	ToolGenerateName    = "generate-strategy-name"
)

// Per-tool parameter shapes. Each capability decodes its own variant rather
// than passing untyped JSON around.

type ValidateCodeParams struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type RunBacktestParams struct {
	Strategy  string `json:"strategy"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type GetMarketDataParams struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Limit     int    `json:"limit,omitempty"`
}

type AnalyzeStrategyParams struct {
	Strategy        string                       `json:"strategy"`
	BacktestResults *backtest.PerformanceMetrics `json:"backtestResults,omitempty"`
}

type OptimizeCodeParams struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Focus    string `json:"focus,omitempty"`
}

type GenerateNameParams struct {
	UserPrompt string `json:"userPrompt,omitempty"`
	AISummary  string `json:"aiSummary,omitempty"`
	Code       string `json:"code,omitempty"`
	CheckName  string `json:"checkName,omitempty"`
}

type MarketData struct {
	Symbol    string            `json:"symbol"`
	Timeframe string            `json:"timeframe"`
	Data      []backtest.Candle `json:"data"`
}

// Registry binds the capability table to its collaborators.
type Registry struct {
	repo   *storage.Repository
	cfg    *config.Config
	logger *logger.Logger
}

func NewRegistry(repo *storage.Repository, cfg *config.Config, log *logger.Logger) *Registry {
	return &Registry{repo: repo, cfg: cfg, logger: log}
}

// Names returns the capability table's tool names.
func Names() []string {
	return []string{
		ToolValidateCode, ToolRunBacktest, ToolGetMarketData,
		ToolAnalyzeStrategy, ToolOptimizeCode, ToolGenerateName,
	}
}

// Call invokes one capability with raw JSON parameters and returns its
// structured result. Unknown names and decode failures are errors; this is
// the direct (non-directive) invocation path used by the web layer.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) (any, error) {
	switch name {
	case ToolValidateCode:
		var p ValidateCodeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return r.ValidateCode(p), nil

	case ToolRunBacktest:
		var p RunBacktestParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return r.RunBacktest(ctx, p)

	case ToolGetMarketData:
		var p GetMarketDataParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return r.GetMarketData(p)

	case ToolAnalyzeStrategy:
		var p AnalyzeStrategyParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return r.AnalyzeStrategy(p), nil

	case ToolOptimizeCode:
		var p OptimizeCodeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return r.OptimizeCode(p), nil

	case ToolGenerateName:
		// Consumed out-of-band by the naming coordinator; the direct path
		// just validates the shape.
		var p GenerateNameParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode %s parameters: %w", name, err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("unknown tool %q", name)
}

// RunBacktest simulates the described strategy over stored candles and
// returns the derived metrics block.
func (r *Registry) RunBacktest(ctx context.Context, p RunBacktestParams) (backtest.PerformanceMetrics, error) {
	symbol := p.Symbol
	if symbol == "" {
		symbol = r.cfg.Backtest.DefaultSymbol
	}
	timeframe := p.Timeframe
	if timeframe == "" {
		timeframe = "1h"
	}

	stored, err := r.repo.GetCandles(symbol, timeframe, 500)
	if err != nil {
		return backtest.PerformanceMetrics{}, fmt.Errorf("load candles for %s: %w", symbol, err)
	}
	if len(stored) == 0 {
		return backtest.PerformanceMetrics{}, fmt.Errorf("no candle data for %s (%s)", symbol, timeframe)
	}

	candles := make([]backtest.Candle, len(stored))
	for i, c := range stored {
		candles[i] = backtest.Candle{
			Time: c.Time, Open: c.Open, High: c.High, Low: c.Low,
			Close: c.Close, Volume: c.Volume,
		}
	}

	signal, err := backtest.ParseRules(rulesFromDescription(p.Strategy))
	if err != nil {
		return backtest.PerformanceMetrics{}, fmt.Errorf("derive rules: %w", err)
	}

	start := r.cfg.Backtest.StartingEquity
	trades, curve := backtest.Simulate(candles, signal, start)
	return backtest.ComputeMetrics(trades, curve, start), nil
}

// rulesFromDescription picks a rule set from a free-text strategy
// description. RSI wording selects the RSI rule; everything else falls back
// to an SMA crossover.
func rulesFromDescription(desc string) []byte {
	d := strings.ToLower(desc)
	if strings.Contains(d, "rsi") || strings.Contains(d, "mean reversion") {
		return []byte(`{"type":"rsi"}`)
	}
	return []byte(`{"type":"sma_crossover"}`)
}
