package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/trainflow/strategy-engine/internal/backtest"
	"github.com/trainflow/strategy-engine/internal/chat"
	"github.com/trainflow/strategy-engine/internal/storage"
	"github.com/trainflow/strategy-engine/internal/toast"
)

type chatRequest struct {
	StrategyID string `json:"strategyId"`
	UserID     string `json:"userId"`
	Message    string `json:"message"`
	Image      string `json:"image,omitempty"`
}

type chatResponse struct {
	StrategyID    string               `json:"strategyId"`
	Title         string               `json:"title"`
	Reply         chat.Message         `json:"reply"`
	Notifications []toast.Notification `json:"notifications"`
	Code          map[string]string    `json:"code"`
}

type toolRequest struct {
	Tool       string          `json:"tool"`
	Parameters json.RawMessage `json:"parameters"`
}

type backtestRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

type backtestResponse struct {
	Metrics backtest.PerformanceMetrics `json:"metrics"`
	Curve   []backtest.EquityPoint      `json:"equityCurve"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.chat.HandleTurn(r.Context(), req.StrategyID, req.UserID, req.Message, req.Image)
	if err != nil {
		s.logger.Error("chat turn", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		StrategyID:    result.Strategy.ID,
		Title:         result.Strategy.Title,
		Reply:         result.Reply,
		Notifications: result.Notifications,
		Code:          result.Strategy.Code(),
	})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := s.repo.ListStrategies(100)
	if err != nil {
		s.logger.Error("list strategies", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list strategies")
		return
	}
	s.writeJSON(w, http.StatusOK, strategies)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	strat, err := s.repo.GetStrategy(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		s.logger.Error("get strategy", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load strategy")
		return
	}
	s.writeJSON(w, http.StatusOK, strat)
}

// handleBacktest simulates the stored strategy over candle history and
// persists the resulting metrics and equity curve on the strategy row.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	strat, err := s.repo.GetStrategy(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		s.logger.Error("get strategy for backtest", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load strategy")
		return
	}

	var req backtestRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Symbol == "" {
		req.Symbol = s.config.Backtest.DefaultSymbol
	}
	if req.Timeframe == "" {
		req.Timeframe = "1h"
	}

	stored, err := s.repo.GetCandles(req.Symbol, req.Timeframe, 500)
	if err != nil || len(stored) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "no candle data for "+req.Symbol)
		return
	}
	candles := make([]backtest.Candle, len(stored))
	for i, c := range stored {
		candles[i] = backtest.Candle{
			Time: c.Time, Open: c.Open, High: c.High, Low: c.Low,
			Close: c.Close, Volume: c.Volume,
		}
	}

	signal, err := backtest.ParseRules(rulesFor(strat.Description))
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := s.config.Backtest.StartingEquity
	trades, curve := backtest.Simulate(candles, signal, start)
	metrics := backtest.ComputeMetrics(trades, curve, start)

	metricsJSON, _ := json.Marshal(metrics)
	curveJSON, _ := json.Marshal(curve)
	if err := s.repo.UpdateAnalytics(id, string(metricsJSON), string(curveJSON)); err != nil {
		s.logger.Error("persist analytics", "strategy", id, "error", err)
	}

	s.writeJSON(w, http.StatusOK, backtestResponse{Metrics: metrics, Curve: curve})
}

// handleWatchStrategy streams change events for one strategy as SSE. The
// underlying poller fires at most once per distinct content hash, so idle
// strategies produce no traffic.
func (s *Server) handleWatchStrategy(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.store.Poll(r.Context(), r.PathValue("id"), s.config.PollInterval(), func(strat *storage.Strategy) {
		payload, err := json.Marshal(map[string]any{
			"id":    strat.ID,
			"title": strat.Title,
			"code":  strat.Code(),
		})
		if err != nil {
			s.logger.Error("encode change event", "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	})
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.registry.Call(r.Context(), req.Tool, req.Parameters)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":      name,
		"available": s.namer.CheckName(name),
	})
}

func rulesFor(description string) []byte {
	if strings.Contains(strings.ToLower(description), "rsi") {
		return []byte(`{"type":"rsi"}`)
	}
	return []byte(`{"type":"sma_crossover"}`)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
