package tools

import "strings"

type StrategyAnalysis struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	RiskLevel       string   `json:"riskLevel"`
}

type OptimizationResult struct {
	Suggestions []string `json:"optimizations"`
}

// AnalyzeStrategy produces a heuristic assessment from the strategy text and
// an optional metrics block.
func (r *Registry) AnalyzeStrategy(p AnalyzeStrategyParams) StrategyAnalysis {
	a := StrategyAnalysis{RiskLevel: "medium"}

	if m := p.BacktestResults; m != nil {
		if m.WinRate > 60 {
			a.Strengths = append(a.Strengths, "Good win rate")
		} else {
			a.Weaknesses = append(a.Weaknesses, "Low win rate, consider improving entry conditions")
		}
		if m.ProfitFactor > 1.5 {
			a.Strengths = append(a.Strengths, "Strong profit factor")
		} else {
			a.Weaknesses = append(a.Weaknesses, "Low profit factor, review risk management")
		}
		if m.MaxDrawdownPct > 15 {
			a.Weaknesses = append(a.Weaknesses, "High maximum drawdown")
			a.Recommendations = append(a.Recommendations, "Consider reducing position size or adding a stop-loss")
			a.RiskLevel = "high"
		}
		if m.TotalReturnPct < 0 {
			a.Weaknesses = append(a.Weaknesses, "Negative total return")
			a.Recommendations = append(a.Recommendations, "Strategy needs optimization")
		}
	}

	desc := strings.ToLower(p.Strategy)
	if strings.Contains(desc, "rsi") {
		a.Strengths = append(a.Strengths, "Uses RSI, good for identifying overbought and oversold conditions")
	}
	if strings.Contains(desc, "moving average") {
		a.Strengths = append(a.Strengths, "Uses moving averages, good for trend following")
	}
	if !strings.Contains(desc, "stop loss") && !strings.Contains(desc, "stop-loss") {
		a.Weaknesses = append(a.Weaknesses, "No stop-loss mentioned")
		a.Recommendations = append(a.Recommendations, "Add a stop-loss for risk management")
	}

	return a
}

// OptimizeCode returns per-language suggestions for the requested focus.
// An unset focus means performance.
func (r *Registry) OptimizeCode(p OptimizeCodeParams) OptimizationResult {
	focus := p.Focus
	if focus == "" {
		focus = "performance"
	}

	var out OptimizationResult
	switch strings.ToLower(p.Language) {
	case "pinescript", "pine-script", "pine":
		switch focus {
		case "performance":
			out.Suggestions = []string{
				"Use ta.sma() instead of sma() for better performance",
				"Avoid repainting indicators, use historical data functions",
				"Use the var keyword for variables that don't need recalculation",
			}
		case "readability":
			out.Suggestions = []string{
				"Add more descriptive variable names",
				"Include comments for complex calculations",
				"Group related logic into functions",
			}
		case "safety":
			out.Suggestions = []string{
				"Add input validation for user parameters",
				"Include error handling for edge cases",
				"Use proper risk management functions",
			}
		}
	case "mql4", "mql5":
		switch focus {
		case "performance":
			out.Suggestions = []string{
				"Use proper variable types (double, int)",
				"Avoid unnecessary calculations in OnTick()",
				"Use static variables for expensive calculations",
			}
		case "readability":
			out.Suggestions = []string{
				"Add descriptive function and variable names",
				"Include comments for complex logic",
				"Structure code into logical functions",
			}
		case "safety":
			out.Suggestions = []string{
				"Add proper error handling with GetLastError()",
				"Include position size validation",
				"Use proper order management functions",
			}
		}
	}
	return out
}
