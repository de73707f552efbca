package backtest

// PerformanceMetrics is derived wholesale from the trade ledger and equity
// trajectory; it is never partially mutated. Every ratio is guarded: zero
// closed trades or zero losers yield 0, never NaN or Inf.
type PerformanceMetrics struct {
	TotalReturnPct float64 `json:"totalReturnPct"`
	TotalTrades    int     `json:"totalTrades"`
	WinningTrades  int     `json:"winningTrades"`
	LosingTrades   int     `json:"losingTrades"`
	WinRate        float64 `json:"winRate"`
	ProfitFactor   float64 `json:"profitFactor"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	GrossProfit    float64 `json:"grossProfit"`
	GrossLoss      float64 `json:"grossLoss"`
	AverageWin     float64 `json:"averageWin"`
	AverageLoss    float64 `json:"averageLoss"`
	LargestWin     float64 `json:"largestWin"`
	LargestLoss    float64 `json:"largestLoss"`
}

// ComputeMetrics derives the statistics block from a trade ledger and its
// equity trajectory. startEquity must match the equity the trajectory began
// with.
func ComputeMetrics(trades []Trade, curve []EquityPoint, startEquity float64) PerformanceMetrics {
	if startEquity <= 0 {
		startEquity = StartingEquity
	}

	var m PerformanceMetrics

	finalEquity := startEquity
	if len(curve) > 0 {
		finalEquity = curve[len(curve)-1].Equity
	}
	m.TotalReturnPct = (finalEquity - startEquity) / startEquity * 100

	peak := startEquity
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if dd := (peak - pt.Equity) / peak * 100; dd > m.MaxDrawdownPct {
			m.MaxDrawdownPct = dd
		}
	}

	for _, t := range trades {
		if t.Status != StatusClosed || t.Profit == nil {
			continue
		}
		p := *t.Profit
		m.TotalTrades++
		if p > 0 {
			m.WinningTrades++
			m.GrossProfit += p
			if p > m.LargestWin {
				m.LargestWin = p
			}
		} else {
			m.LosingTrades++
			m.GrossLoss += p
			if p < m.LargestLoss {
				m.LargestLoss = p
			}
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	if m.GrossLoss != 0 {
		m.ProfitFactor = abs(m.GrossProfit) / abs(m.GrossLoss)
	}
	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.GrossLoss / float64(m.LosingTrades)
	}

	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
