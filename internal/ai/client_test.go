package ai

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		status int
		want   FailureCategory
	}{
		{401, FailureAuth},
		{403, FailureAuth},
		{429, FailureRateLimit},
		{500, FailureConnectivity},
	}
	for _, c := range cases {
		err := fmt.Errorf("call: %w", &openai.APIError{HTTPStatusCode: c.status})
		assert.Equal(t, c.want, Categorize(err), "status %d", c.status)
	}

	assert.Equal(t, FailureConnectivity, Categorize(errors.New("dial tcp: timeout")))
}

func TestTruncateHistoryWindow(t *testing.T) {
	history := []Message{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	}

	got := truncateHistory(history, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Content)
	assert.Equal(t, "third", got[1].Content)
}

func TestTruncateHistoryShorterThanWindow(t *testing.T) {
	history := []Message{{Role: "user", Content: "only"}}
	got := truncateHistory(history, 5)
	assert.Len(t, got, 1)
}
