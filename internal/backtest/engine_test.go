package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesOf(closes ...float64) []Candle {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	candles := make([]Candle, len(closes))
	for i, c := range closes {
		candles[i] = Candle{
			Time: base.Add(time.Duration(i) * time.Hour),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	return candles
}

func signalAt(signals map[int]Signal) SignalFunc {
	return func(_ []Candle, idx int) Signal {
		return signals[idx]
	}
}

func TestSimulateEnterAndReverseExit(t *testing.T) {
	candles := candlesOf(10, 11, 12, 13)
	trades, curve := Simulate(candles, signalAt(map[int]Signal{0: SignalBuy, 2: SignalSell}), 10000)

	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, SideBuy, tr.Side)
	assert.InDelta(t, 10.0, tr.EntryPrice, 1e-9)
	require.NotNil(t, tr.Profit)
	assert.InDelta(t, 2.0, *tr.Profit, 1e-9)

	require.Len(t, curve, 4)
	assert.InDelta(t, 10002.0, curve[len(curve)-1].Equity, 1e-9)
}

func TestSimulateClosesOnFinalBar(t *testing.T) {
	candles := candlesOf(10, 12, 9)
	trades, _ := Simulate(candles, signalAt(map[int]Signal{0: SignalBuy}), 10000)

	require.Len(t, trades, 1)
	assert.Equal(t, StatusClosed, trades[0].Status)
	assert.InDelta(t, -1.0, *trades[0].Profit, 1e-9)
}

func TestSimulateShortSide(t *testing.T) {
	candles := candlesOf(100, 95, 90)
	trades, curve := Simulate(candles, signalAt(map[int]Signal{0: SignalSell}), 10000)

	require.Len(t, trades, 1)
	assert.Equal(t, SideSell, trades[0].Side)
	assert.InDelta(t, 10.0, *trades[0].Profit, 1e-9)
	assert.InDelta(t, 10010.0, curve[len(curve)-1].Equity, 1e-9)
}

func TestSimulateNoSignalsNoTrades(t *testing.T) {
	trades, curve := Simulate(candlesOf(10, 11, 12), signalAt(nil), 10000)

	assert.Empty(t, trades)
	require.Len(t, curve, 3)
	for _, pt := range curve {
		assert.InDelta(t, 10000.0, pt.Equity, 1e-9)
		assert.Zero(t, pt.DrawdownPercent)
	}
}

func TestSimulateDrawdownTracksPeak(t *testing.T) {
	// A win lifts the peak to 10005, the final losing trade drops equity
	// back to 10000; drawdown is measured against the peak.
	candles := candlesOf(10, 15, 20, 10, 5)
	signals := map[int]Signal{0: SignalBuy, 1: SignalSell, 3: SignalBuy}
	trades, curve := Simulate(candles, signalAt(signals), 10000)

	require.Len(t, trades, 2)
	last := curve[len(curve)-1]
	assert.InDelta(t, (10005.0-10000.0)/10005.0*100, last.DrawdownPercent, 1e-9)
}

func TestParseRulesUnknownType(t *testing.T) {
	_, err := ParseRules([]byte(`{"type":"martingale"}`))
	assert.Error(t, err)
}

func TestParseRulesPriceCrossRequiresLevel(t *testing.T) {
	_, err := ParseRules([]byte(`{"type":"price_cross"}`))
	assert.Error(t, err)

	signal, err := ParseRules([]byte(`{"type":"price_cross","params":{"level":50}}`))
	require.NoError(t, err)
	assert.Equal(t, SignalBuy, signal(candlesOf(60), 0))
	assert.Equal(t, SignalSell, signal(candlesOf(40), 0))
}

func TestParseRulesSMACrossoverTrend(t *testing.T) {
	signal, err := ParseRules([]byte(`{"type":"sma_crossover","params":{"fast":2,"slow":4}}`))
	require.NoError(t, err)

	// Steady uptrend: fast average sits above slow once there is history.
	candles := candlesOf(10, 11, 12, 13, 14, 15)
	assert.Equal(t, SignalNone, signal(candles, 3))
	assert.Equal(t, SignalBuy, signal(candles, 5))
}
