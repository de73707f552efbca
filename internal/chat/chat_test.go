package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainflow/strategy-engine/internal/ai"
	"github.com/trainflow/strategy-engine/internal/storage"
)

func TestWelcomeCarriesSuggestions(t *testing.T) {
	m := Welcome()
	assert.Equal(t, SenderAI, m.Sender)
	assert.NotEmpty(t, m.Content)
	assert.Equal(t, ai.WelcomeSuggestions, m.Suggestions)
	assert.NotEmpty(t, m.ID)
}

func TestToWireMapsSenders(t *testing.T) {
	history := []Message{
		{Sender: SenderUser, Content: "build me a bot"},
		{Sender: SenderAI, Content: "done"},
	}

	wire := toWire(history)

	require.Len(t, wire, 2)
	assert.Equal(t, "user", wire[0].Role)
	assert.Equal(t, "assistant", wire[1].Role)
	assert.Equal(t, "build me a bot", wire[0].Content)
}

func TestApplyArtifactsMergesOverExisting(t *testing.T) {
	svc := &Service{}
	strat := &storage.Strategy{ID: "s1"}
	strat.SetCode(storage.CodeMap{
		storage.PlatformPine: "old pine",
		storage.PlatformMQL5: "old mql5",
	})

	parsed := &ai.ParseResult{
		Code: map[ai.Platform]string{
			ai.PlatformPine: "new pine",
		},
		Narrative: "Here is the update.\nDetails follow.",
	}
	svc.applyArtifacts(strat, parsed)

	code := strat.Code()
	assert.Equal(t, "new pine", code[storage.PlatformPine])
	assert.Equal(t, "old mql5", code[storage.PlatformMQL5], "platforms the turn did not produce are kept")
	assert.Equal(t, "Here is the update.", strat.Description)
}

func TestApplyArtifactsNoCodeIsNoop(t *testing.T) {
	svc := &Service{}
	strat := &storage.Strategy{ID: "s1"}
	strat.SetCode(storage.CodeMap{storage.PlatformPine: "keep"})

	svc.applyArtifacts(strat, &ai.ParseResult{Code: map[ai.Platform]string{}})

	assert.Equal(t, "keep", strat.Code()[storage.PlatformPine])
	assert.Empty(t, strat.Description)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "whole", firstLine("whole"))
	assert.Equal(t, "", firstLine(""))
}
