// Package chat drives the strategy conversation: each user turn runs one
// completion through the tool dispatcher, notification extractor, and code
// parser, then persists the outcome as a full strategy write.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trainflow/strategy-engine/internal/ai"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/naming"
	"github.com/trainflow/strategy-engine/internal/storage"
	syncstore "github.com/trainflow/strategy-engine/internal/sync"
	"github.com/trainflow/strategy-engine/internal/toast"
	"github.com/trainflow/strategy-engine/internal/tools"
)

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is one rendered turn of a strategy conversation. This is the
// stored and displayed shape, distinct from the wire messages sent to the
// model.
type Message struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Image       string    `json:"image,omitempty"`
}

// Notifier receives extracted notification events. Implementations must not
// block the turn.
type Notifier interface {
	NotifyEvent(n toast.Notification)
}

// TurnResult is everything one user turn produced.
type TurnResult struct {
	Reply         Message
	Notifications []toast.Notification
	Strategy      *storage.Strategy
}

// Service owns the per-turn pipeline.
type Service struct {
	client    *ai.Client
	registry  *tools.Registry
	namer     *naming.Coordinator
	store     *syncstore.Store
	autosaver *syncstore.Autosaver
	notifier  Notifier
	logger    *logger.Logger
}

func NewService(client *ai.Client, registry *tools.Registry, namer *naming.Coordinator,
	store *syncstore.Store, autosaver *syncstore.Autosaver, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		client:    client,
		registry:  registry,
		namer:     namer,
		store:     store,
		autosaver: autosaver,
		notifier:  notifier,
		logger:    log,
	}
}

// Welcome returns the greeting shown when a conversation has no history yet.
func Welcome() Message {
	return Message{
		ID:     uuid.NewString(),
		Sender: SenderAI,
		Content: "Hi! I'm your AI trading strategy assistant. Describe the strategy you have " +
			"in mind and I'll generate the code for your platform.",
		Timestamp:   time.Now(),
		Suggestions: ai.WelcomeSuggestions,
	}
}

// HandleTurn runs one user message through the full pipeline against the
// strategy identified by strategyID. An empty id starts a new strategy;
// image is an optional attachment URL forwarded to the model.
// A panic anywhere in the pipeline is converted into an error so one bad
// turn cannot take the server down.
func (s *Service) HandleTurn(ctx context.Context, strategyID, userID, text, image string) (result *TurnResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("chat turn panicked: %v", r)
			err = fmt.Errorf("chat turn failed: %v", r)
		}
	}()

	strat, history, err := s.loadOrCreate(strategyID, userID)
	if err != nil {
		return nil, err
	}

	userMsg := Message{
		ID:        uuid.NewString(),
		Sender:    SenderUser,
		Content:   text,
		Timestamp: time.Now(),
		Image:     image,
	}
	history = append(history, userMsg)

	raw, err := s.client.Generate(ctx, text, toWire(history[:len(history)-1]), image)
	if err != nil {
		return nil, fmt.Errorf("generate completion: %w", err)
	}

	dispatched := s.registry.Dispatch(ctx, raw)
	notifications, narrative := toast.Extract(dispatched.Text)
	parsed := ai.Parse(narrative, ai.DetectPlatform(text))

	s.applyArtifacts(strat, parsed)
	s.applyNaming(ctx, strat, dispatched.NameRequests, text, parsed)

	reply := Message{
		ID:        uuid.NewString(),
		Sender:    SenderAI,
		Content:   parsed.Narrative,
		Timestamp: time.Now(),
	}
	history = append(history, reply)

	if encoded, merr := json.Marshal(history); merr != nil {
		s.logger.Errorf("encode chat history: %v", merr)
	} else {
		strat.ChatHistory = string(encoded)
	}

	s.autosaver.Touch(strat)

	if s.notifier != nil {
		for _, n := range notifications {
			s.notifier.NotifyEvent(n)
		}
	}

	return &TurnResult{Reply: reply, Notifications: notifications, Strategy: strat}, nil
}

// loadOrCreate fetches the strategy and decodes its history, or builds a
// fresh one when no id is given.
func (s *Service) loadOrCreate(strategyID, userID string) (*storage.Strategy, []Message, error) {
	if strategyID == "" {
		return &storage.Strategy{
			ID:     uuid.NewString(),
			UserID: userID,
		}, []Message{Welcome()}, nil
	}

	strat, err := s.store.Get(strategyID)
	if err != nil {
		return nil, nil, fmt.Errorf("load strategy %s: %w", strategyID, err)
	}

	var history []Message
	if strat.ChatHistory != "" {
		if err := json.Unmarshal([]byte(strat.ChatHistory), &history); err != nil {
			s.logger.Errorf("decode chat history for %s, starting fresh: %v", strategyID, err)
			history = nil
		}
	}
	return strat, history, nil
}

// applyArtifacts merges newly parsed code over the stored map. Platforms the
// completion did not produce keep their previous source; the write itself is
// always the full map.
func (s *Service) applyArtifacts(strat *storage.Strategy, parsed *ai.ParseResult) {
	if !parsed.HasCode() {
		return
	}
	code := strat.Code()
	for _, p := range ai.Platforms {
		if src := parsed.Get(p); src != "" {
			code[string(p)] = src
		}
	}
	strat.SetCode(code)
	if strat.Description == "" {
		strat.Description = firstLine(parsed.Narrative)
	}
}

// applyNaming resolves a title when the model requested one or when new
// artifacts appeared on a still-untitled strategy.
func (s *Service) applyNaming(ctx context.Context, strat *storage.Strategy, reqs []tools.NameRequest, userPrompt string, parsed *ai.ParseResult) {
	untitled := strat.Title == "" || strat.Title == naming.FallbackName

	for _, r := range reqs {
		if r.CheckName != "" {
			continue
		}
		req := naming.Request{UserPrompt: r.UserPrompt, AISummary: r.AISummary, Code: strat.Code()}
		if req.UserPrompt == "" {
			req.UserPrompt = userPrompt
		}
		if r.Code != "" {
			req.Code = storage.CodeMap{storage.PlatformPine: r.Code}
		}
		strat.Title = s.namer.Name(ctx, req)
		return
	}

	if untitled && parsed.HasCode() {
		strat.Title = s.namer.Name(ctx, naming.Request{
			UserPrompt: userPrompt,
			AISummary:  firstLine(parsed.Narrative),
			Code:       strat.Code(),
		})
	}
}

func toWire(history []Message) []ai.Message {
	wire := make([]ai.Message, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Sender == SenderAI {
			role = "assistant"
		}
		wire = append(wire, ai.Message{Role: role, Content: m.Content})
	}
	return wire
}

func firstLine(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			return text[:i]
		}
	}
	return text
}
