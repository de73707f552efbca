package backtest

// StartingEquity is the fixed capital every simulation begins with.
const StartingEquity = 10000.0

// Simulate runs a signal function over the candle series with a single
// position at a time: enter on a buy/sell signal, exit on the reverse signal
// or the final bar. It returns the trade ledger and one equity point per bar.
func Simulate(candles []Candle, signal SignalFunc, startEquity float64) ([]Trade, []EquityPoint) {
	if startEquity <= 0 {
		startEquity = StartingEquity
	}

	var trades []Trade
	curve := make([]EquityPoint, 0, len(candles))

	equity := startEquity
	peak := equity
	var open *Trade

	for idx, c := range candles {
		sig := signal(candles, idx)
		lastBar := idx == len(candles)-1

		switch {
		case open == nil && (sig == SignalBuy || sig == SignalSell):
			side := SideBuy
			if sig == SignalSell {
				side = SideSell
			}
			open = OpenTrade(side, c.Time, c.Close, 1)

		case open != nil && (lastBar || reverses(open.Side, sig)):
			if err := open.Close(c.Time, c.Close); err == nil {
				equity += *open.Profit
				if equity > peak {
					peak = equity
				}
				trades = append(trades, *open)
			}
			open = nil
		}

		curve = append(curve, EquityPoint{
			Time:            c.Time,
			Equity:          equity,
			DrawdownPercent: (peak - equity) / peak * 100,
		})
	}

	return trades, curve
}

func reverses(side Side, sig Signal) bool {
	return (side == SideBuy && sig == SignalSell) || (side == SideSell && sig == SignalBuy)
}
