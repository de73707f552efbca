package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
)

func testRegistry() *Registry {
	cfg := &config.Config{}
	cfg.Backtest.StartingEquity = 10000
	cfg.Backtest.DefaultSymbol = "EURUSD"
	return NewRegistry(nil, cfg, logger.New("error"))
}

const validPine = `//@version=5
strategy("Test", overlay=true)
fast = input(10) // fast period`

func TestDispatchSubstitutesValidation(t *testing.T) {
	r := testRegistry()
	text := "Checking your code now. [TOOL_CALL:validateCode:{\"code\":\"//@version=5\\nstrategy(x)\\n// ok\\ninput(1)\",\"language\":\"pinescript\"}] Done."

	out := r.Dispatch(context.Background(), text)

	assert.NotContains(t, out.Text, "TOOL_CALL")
	assert.Contains(t, out.Text, "Checking your code now.")
	assert.Contains(t, out.Text, "Code validation passed")
	assert.Contains(t, out.Text, "Done.")
	assert.Empty(t, out.NameRequests)
}

func TestDispatchUnknownToolErrorSubstitution(t *testing.T) {
	r := testRegistry()

	out := r.Dispatch(context.Background(), "before [TOOL_CALL:doMagic:{}] after")

	assert.Contains(t, out.Text, "Tool doMagic failed")
	assert.Contains(t, out.Text, "before")
	assert.Contains(t, out.Text, "after")
	assert.NotContains(t, out.Text, "TOOL_CALL")
}

func TestDispatchBadParamsErrorSubstitution(t *testing.T) {
	r := testRegistry()

	out := r.Dispatch(context.Background(), `[TOOL_CALL:validateCode:{"code": }]`)

	assert.Contains(t, out.Text, "Tool validateCode failed")
}

func TestDispatchNameRequestSubstitutesEmpty(t *testing.T) {
	r := testRegistry()
	text := `Your strategy is ready.[TOOL_CALL:generate-strategy-name:{"userPrompt":"rsi bot","aiSummary":"an RSI strategy"}]`

	out := r.Dispatch(context.Background(), text)

	assert.Equal(t, "Your strategy is ready.", out.Text)
	require.Len(t, out.NameRequests, 1)
	assert.Equal(t, "rsi bot", out.NameRequests[0].UserPrompt)
	assert.Equal(t, "an RSI strategy", out.NameRequests[0].AISummary)
}

func TestDispatchLeftToRightMultiple(t *testing.T) {
	r := testRegistry()
	text := `[TOOL_CALL:doMagic:{}] mid [TOOL_CALL:generate-strategy-name:{"checkName":"Alpha"}]`

	out := r.Dispatch(context.Background(), text)

	assert.Contains(t, out.Text, "Tool doMagic failed")
	require.Len(t, out.NameRequests, 1)
	assert.Equal(t, "Alpha", out.NameRequests[0].CheckName)
}

func TestDispatchLeavesPlainTextAlone(t *testing.T) {
	r := testRegistry()
	text := "No directives here, just [brackets] and {braces}."

	out := r.Dispatch(context.Background(), text)
	assert.Equal(t, text, out.Text)
}

func TestValidatePineRules(t *testing.T) {
	r := testRegistry()

	v := r.ValidateCode(ValidateCodeParams{Code: validPine, Language: "pinescript"})
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)

	v = r.ValidateCode(ValidateCodeParams{Code: "plot(close)", Language: "pinescript"})
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Errors, "Missing @version=5 declaration")
	assert.Contains(t, v.Errors, "Missing strategy() or indicator() declaration")

	v = r.ValidateCode(ValidateCodeParams{
		Code:     "//@version=5\nstrategy(\"x\")\nhline(50)\ninput(1)",
		Language: "pinescript",
	})
	assert.True(t, v.IsValid)
	assert.NotEmpty(t, v.Warnings)
}

func TestValidateMQLRules(t *testing.T) {
	r := testRegistry()

	good := "#property strict\nint OnInit() {}\nvoid OnTick() { // trade\n OrderSend(1); }\ndouble StopLoss;"
	v := r.ValidateCode(ValidateCodeParams{Code: good, Language: "mql5"})
	assert.True(t, v.IsValid)

	v = r.ValidateCode(ValidateCodeParams{Code: "void OnTick() { Sleep(100); }", Language: "mql4"})
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Errors, "Avoid Sleep(), use proper event handling")
}

func TestValidateUnsupportedLanguage(t *testing.T) {
	r := testRegistry()
	v := r.ValidateCode(ValidateCodeParams{Code: "x", Language: "cobol"})
	assert.False(t, v.IsValid)
	require.Len(t, v.Errors, 1)
}

func TestAnalyzeStrategyHeuristics(t *testing.T) {
	r := testRegistry()

	a := r.AnalyzeStrategy(AnalyzeStrategyParams{Strategy: "An RSI mean reversion system with stop loss"})
	assert.NotEmpty(t, a.Strengths)
	assert.Equal(t, "medium", a.RiskLevel)

	a = r.AnalyzeStrategy(AnalyzeStrategyParams{Strategy: "buy everything"})
	assert.Contains(t, a.Weaknesses, "No stop-loss mentioned")
}

func TestOptimizeCodeSuggestions(t *testing.T) {
	r := testRegistry()

	o := r.OptimizeCode(OptimizeCodeParams{Code: "x", Language: "pinescript"})
	assert.NotEmpty(t, o.Suggestions)

	o = r.OptimizeCode(OptimizeCodeParams{Code: "x", Language: "mql5", Focus: "safety"})
	assert.Contains(t, o.Suggestions, "Add proper error handling with GetLastError()")
}

func TestGenerateSeriesDeterministic(t *testing.T) {
	s := seedTable[0]
	a := generateSeries(s)
	b := generateSeries(s)

	require.Len(t, a, s.bars)
	assert.Equal(t, a, b)
	for _, c := range a {
		assert.GreaterOrEqual(t, c.High, c.Low)
		assert.Equal(t, s.symbol, c.Symbol)
	}
}
