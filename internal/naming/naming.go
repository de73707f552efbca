// Package naming turns generated strategies into short display titles and
// keeps them unique among stored strategies.
package naming

import (
	"context"
	"fmt"
	"strings"

	"github.com/trainflow/strategy-engine/internal/ai"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/storage"
)

// FallbackName is used whenever the naming call fails or returns nothing.
const FallbackName = "AI Generated Strategy"

// modifiers are tried in order before falling back to numbered suffixes.
var modifiers = []string{"Pro", "Max", "Elite", "Plus", "X", "v2", "v3", "v4"}

// codePreference orders which artifact is forwarded to the naming call when
// a strategy carries several platforms.
var codePreference = []string{
	storage.PlatformMQL5, storage.PlatformMQL4,
	storage.PlatformPine, storage.PlatformPython,
}

type namer interface {
	GenerateName(ctx context.Context, userPrompt, aiSummary, code string) (string, error)
}

type titleLookup interface {
	FindTitlesLike(substr string) ([]string, error)
}

// Coordinator generates and de-duplicates strategy names.
type Coordinator struct {
	client namer
	repo   titleLookup
	logger *logger.Logger
}

func NewCoordinator(client *ai.Client, repo *storage.Repository, log *logger.Logger) *Coordinator {
	return &Coordinator{client: client, repo: repo, logger: log}
}

// Request carries the inputs of one naming round.
type Request struct {
	UserPrompt string
	AISummary  string
	Code       storage.CodeMap
	// CheckName, when set, skips generation and only answers whether the
	// name is free.
	CheckName string
}

// BestCode picks the artifact forwarded to the naming call.
func BestCode(code storage.CodeMap) string {
	for _, p := range codePreference {
		if c := code[p]; c != "" {
			return c
		}
	}
	return ""
}

// Name resolves a request to a unique display title. It never returns an
// error: generation failures fall back to the fixed literal, and lookup
// failures accept the candidate unmodified.
func (c *Coordinator) Name(ctx context.Context, req Request) string {
	candidate, err := c.client.GenerateName(ctx, req.UserPrompt, req.AISummary, BestCode(req.Code))
	if err != nil || strings.TrimSpace(candidate) == "" {
		if err != nil {
			c.logger.Errorf("naming call failed, using fallback: %v", err)
		}
		candidate = FallbackName
	}
	candidate = sanitize(candidate)

	existing, err := c.repo.FindTitlesLike(candidate)
	if err != nil {
		c.logger.Errorf("title lookup failed, accepting %q as-is: %v", candidate, err)
		return candidate
	}
	return MakeUniqueName(candidate, existing)
}

// CheckName reports whether a title is free. Lookup failures report the name
// as available.
func (c *Coordinator) CheckName(name string) bool {
	existing, err := c.repo.FindTitlesLike(name)
	if err != nil {
		c.logger.Errorf("title lookup failed for %q: %v", name, err)
		return true
	}
	return !collides(name, existing)
}

// MakeUniqueName appends the first free modifier when base collides with an
// existing title. When every modifier collides it counts upward from v5.
func MakeUniqueName(base string, existing []string) string {
	if !collides(base, existing) {
		return base
	}
	for _, m := range modifiers {
		if cand := base + " " + m; !collides(cand, existing) {
			return cand
		}
	}
	for n := 5; ; n++ {
		if cand := fmt.Sprintf("%s v%d", base, n); !collides(cand, existing) {
			return cand
		}
	}
}

func collides(name string, existing []string) bool {
	for _, e := range existing {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// sanitize trims quotes and fence noise from the model output and caps the
// title at four words.
func sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'`")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	words := strings.Fields(s)
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return FallbackName
	}
	return strings.Join(words, " ")
}
