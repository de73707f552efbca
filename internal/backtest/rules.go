package backtest

import (
	"encoding/json"
	"fmt"
)

// Signal is the per-bar decision of a strategy rule.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalNone Signal = ""
)

// SignalFunc evaluates one bar of candle history.
type SignalFunc func(candles []Candle, idx int) Signal

// Rules is the JSON rule description accepted by the simulator.
type Rules struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// ParseRules compiles a JSON rule description into a signal function.
// Supported types: sma_crossover, rsi, price_cross.
func ParseRules(data []byte) (SignalFunc, error) {
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse strategy rules: %w", err)
	}

	switch rules.Type {
	case "sma_crossover":
		params := struct {
			Fast int `json:"fast"`
			Slow int `json:"slow"`
		}{Fast: 10, Slow: 30}
		if len(rules.Params) > 0 {
			if err := json.Unmarshal(rules.Params, &params); err != nil {
				return nil, fmt.Errorf("sma_crossover params: %w", err)
			}
		}
		return smaCrossover(params.Fast, params.Slow), nil

	case "rsi":
		params := struct {
			Period     int     `json:"period"`
			Overbought float64 `json:"overbought"`
			Oversold   float64 `json:"oversold"`
		}{Period: 14, Overbought: 70, Oversold: 30}
		if len(rules.Params) > 0 {
			if err := json.Unmarshal(rules.Params, &params); err != nil {
				return nil, fmt.Errorf("rsi params: %w", err)
			}
		}
		return rsiThreshold(params.Period, params.Overbought, params.Oversold), nil

	case "price_cross":
		params := struct {
			Level     *float64 `json:"level"`
			Direction string   `json:"direction"`
		}{Direction: "both"}
		if len(rules.Params) > 0 {
			if err := json.Unmarshal(rules.Params, &params); err != nil {
				return nil, fmt.Errorf("price_cross params: %w", err)
			}
		}
		if params.Level == nil {
			return nil, fmt.Errorf("missing level for price_cross")
		}
		return priceCross(*params.Level, params.Direction), nil
	}

	return nil, fmt.Errorf("unsupported rule type %q", rules.Type)
}

func smaCrossover(fast, slow int) SignalFunc {
	return func(candles []Candle, idx int) Signal {
		if idx < slow {
			return SignalNone
		}
		fastMA := sma(candles, idx, fast)
		slowMA := sma(candles, idx, slow)
		switch {
		case fastMA > slowMA:
			return SignalBuy
		case fastMA < slowMA:
			return SignalSell
		}
		return SignalNone
	}
}

func sma(candles []Candle, idx, period int) float64 {
	sum := 0.0
	for i := idx - period; i < idx; i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

func rsiThreshold(period int, overbought, oversold float64) SignalFunc {
	return func(candles []Candle, idx int) Signal {
		rsi := computeRSI(candles, idx, period)
		switch {
		case rsi > overbought:
			return SignalSell
		case rsi < oversold:
			return SignalBuy
		}
		return SignalNone
	}
}

func computeRSI(candles []Candle, idx, period int) float64 {
	if idx < period {
		return 50
	}
	gains, losses := 0.0, 0.0
	for i := idx - period + 1; i <= idx; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		avgLoss = 1e-9
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func priceCross(level float64, direction string) SignalFunc {
	return func(candles []Candle, idx int) Signal {
		price := candles[idx].Close
		if (direction == "both" || direction == "above") && price > level {
			return SignalBuy
		}
		if (direction == "both" || direction == "below") && price < level {
			return SignalSell
		}
		return SignalNone
	}
}
