package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pineBody = `//@version=5
strategy("SMA Cross", overlay=true)
fast = ta.sma(close, 10)
slow = ta.sma(close, 30)`

const mql5Body = `#property copyright "TrainFlow"
#property strict
void OnTick()
  {
  }`

const pythonBody = `def signal(candles):
    return "buy"`

func TestParseTaggedBlocks(t *testing.T) {
	raw := "Here is your strategy:\n\n```pinescript\n" + pineBody + "\n```\n\nAnd the MetaTrader port:\n\n```mql5\n" + mql5Body + "\n```\nEnjoy."

	res := Parse(raw, "")

	assert.Equal(t, pineBody, res.Get(PlatformPine))
	assert.Equal(t, mql5Body, res.Get(PlatformMQL5))
	assert.Empty(t, res.Get(PlatformMQL4))
	assert.True(t, res.HasCode())

	assert.Contains(t, res.Narrative, "Here is your strategy:")
	assert.Contains(t, res.Narrative, "And the MetaTrader port:")
	assert.NotContains(t, res.Narrative, "//@version")
	assert.NotContains(t, res.Narrative, "#property")
}

func TestParseTagAliases(t *testing.T) {
	raw := "```pine\n" + pineBody + "\n```\n```mq5\n" + mql5Body + "\n```\n```py\n" + pythonBody + "\n```"

	res := Parse(raw, "")

	assert.Equal(t, pineBody, res.Get(PlatformPine))
	assert.Equal(t, mql5Body, res.Get(PlatformMQL5))
	assert.Equal(t, pythonBody, res.Get(PlatformPython))
}

func TestParseFirstValidMatchWins(t *testing.T) {
	second := "//@version=5\nindicator(\"Second\")"
	raw := "```pinescript\n" + pineBody + "\n```\n```pinescript\n" + second + "\n```"

	res := Parse(raw, "")

	assert.Equal(t, pineBody, res.Get(PlatformPine))
	// The discarded duplicate stays in the narrative.
	assert.Contains(t, res.Narrative, "Second")
}

func TestParseRejectsStructurallyInvalid(t *testing.T) {
	raw := "```pinescript\njust some prose, no version directive\n```"

	res := Parse(raw, "")

	// Invalid tagged Pine is not claimed as Pine, but the untagged-style
	// fallback never applies to tagged fences either.
	assert.False(t, res.HasCode())
}

func TestParseRejectsMQLWithoutMarkers(t *testing.T) {
	raw := "```mql4\nvoid OnTick() {}\n```" // missing #property

	res := Parse(raw, "")
	assert.Empty(t, res.Get(PlatformMQL4))
}

func TestParseUntaggedFallsBackToPine(t *testing.T) {
	raw := "Result:\n```\n" + pineBody + "\n```"

	res := Parse(raw, "")
	assert.Equal(t, pineBody, res.Get(PlatformPine))
	assert.Equal(t, "Result:", res.Narrative)
}

func TestParseUntaggedDoesNotOverrideTaggedPine(t *testing.T) {
	raw := "```pinescript\n" + pineBody + "\n```\n```\nplain block\n```"

	res := Parse(raw, "")
	assert.Equal(t, pineBody, res.Get(PlatformPine))
	assert.Contains(t, res.Narrative, "plain block")
}

func TestParseHintFallback(t *testing.T) {
	// Mistagged MQL5 code under a generic tag; the user asked for MQL5.
	raw := "```cpp\n" + mql5Body + "\n```"

	res := Parse(raw, PlatformMQL5)
	assert.Equal(t, mql5Body, res.Get(PlatformMQL5))
}

func TestParseHintFallbackPythonNeedsTag(t *testing.T) {
	raw := "```cpp\n" + pythonBody + "\n```"

	res := Parse(raw, PlatformPython)
	// Python has no structural marker, so a non-python tag never qualifies.
	assert.Empty(t, res.Get(PlatformPython))
}

func TestParseNoFences(t *testing.T) {
	res := Parse("Just a narrative answer with no code at all.", "")

	require.NotNil(t, res)
	assert.False(t, res.HasCode())
	assert.Equal(t, "Just a narrative answer with no code at all.", res.Narrative)
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		prompt string
		want   Platform
	}{
		{"Build me an RSI strategy for MQL5", PlatformMQL5},
		{"port this to MetaTrader 4 please", PlatformMQL4},
		{"I use MetaTrader", PlatformMQL5},
		{"a TradingView indicator", PlatformPine},
		{"pine script momentum strategy", PlatformPine},
		{"backtest it in python", PlatformPython},
		{"just a moving average strategy", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectPlatform(c.prompt), c.prompt)
	}
}
