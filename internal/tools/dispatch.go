package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/trainflow/strategy-engine/internal/backtest"
)

// directiveRegex lexes [TOOL_CALL:<name>:<json>] spans. The JSON capture is
// brace-naive: it stops at the first closing brace, so nested objects are
// not supported in directives (the prompt forbids them).
var directiveRegex = regexp.MustCompile(`\[TOOL_CALL:([^:\]]+):(\{[^}]*\})\]`)

// NameRequest records a generate-strategy-name directive for out-of-band
// handling. Its directive span substitutes to the empty string.
type NameRequest struct {
	UserPrompt string
	AISummary  string
	Code       string
	CheckName  string
}

// DispatchResult is a processed model narrative: every directive span is
// replaced by its textual outcome, and naming requests are surfaced
// separately.
type DispatchResult struct {
	Text         string
	NameRequests []NameRequest
}

// Dispatch scans text left to right, executes each directive against the
// capability table, and substitutes the outcome in place. Failures never
// abort the scan; they substitute an error string so the surrounding
// narrative survives.
func (r *Registry) Dispatch(ctx context.Context, text string) DispatchResult {
	var result DispatchResult
	result.Text = directiveRegex.ReplaceAllStringFunc(text, func(span string) string {
		m := directiveRegex.FindStringSubmatch(span)
		name, raw := m[1], m[2]

		if name == ToolGenerateName {
			var p GenerateNameParams
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				r.logger.Errorf("tool %s: bad parameters: %v", name, err)
				return fmt.Sprintf("❌ Tool %s failed: invalid parameters", name)
			}
			result.NameRequests = append(result.NameRequests, NameRequest{
				UserPrompt: p.UserPrompt,
				AISummary:  p.AISummary,
				Code:       p.Code,
				CheckName:  p.CheckName,
			})
			return ""
		}

		out, err := r.Call(ctx, name, json.RawMessage(raw))
		if err != nil {
			r.logger.Errorf("tool %s: %v", name, err)
			return fmt.Sprintf("❌ Tool %s failed: %v", name, err)
		}
		return summarize(name, out)
	})
	return result
}

// summarize renders a tool result as the short narrative fragment that
// replaces its directive span.
func summarize(name string, out any) string {
	switch v := out.(type) {
	case ValidationResult:
		if v.IsValid {
			s := "✅ Code validation passed"
			if len(v.Warnings) > 0 {
				s += fmt.Sprintf(" with %d warning(s): %s", len(v.Warnings), strings.Join(v.Warnings, "; "))
			}
			return s
		}
		return fmt.Sprintf("❌ Code validation failed: %s", strings.Join(v.Errors, "; "))

	case MarketData:
		return fmt.Sprintf("📈 Market data for %s (%s): %d candles retrieved", v.Symbol, v.Timeframe, len(v.Data))

	case StrategyAnalysis:
		return fmt.Sprintf("🔍 Strategy analysis: risk level %s, %d strength(s), %d recommendation(s)",
			v.RiskLevel, len(v.Strengths), len(v.Recommendations))

	case OptimizationResult:
		return fmt.Sprintf("⚡ %d optimization suggestion(s): %s", len(v.Suggestions), strings.Join(v.Suggestions, "; "))

	case backtest.PerformanceMetrics:
		return fmt.Sprintf("📊 Backtest completed: %d trades, win rate %.1f%%, profit factor %.2f, return %.2f%%, max drawdown %.2f%%",
			v.TotalTrades, v.WinRate, v.ProfitFactor, v.TotalReturnPct, v.MaxDrawdownPct)
	}
	return fmt.Sprintf("🔧 Tool %s executed", name)
}
