// Package backtest simulates trades over candle data and derives aggregate
// performance statistics from the resulting ledger.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Trade transitions open -> closed exactly once; Profit is fixed at close
// time and never recomputed.
type Trade struct {
	ID         string     `json:"id"`
	Side       Side       `json:"side"`
	EntryTime  time.Time  `json:"entryTime"`
	EntryPrice float64    `json:"entryPrice"`
	ExitTime   *time.Time `json:"exitTime,omitempty"`
	ExitPrice  *float64   `json:"exitPrice,omitempty"`
	Quantity   float64    `json:"quantity"`
	Profit     *float64   `json:"profit,omitempty"`
	Status     Status     `json:"status"`
}

// OpenTrade starts a trade on signal entry.
func OpenTrade(side Side, entryTime time.Time, entryPrice, quantity float64) *Trade {
	return &Trade{
		ID:         uuid.NewString(),
		Side:       side,
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Status:     StatusOpen,
	}
}

// Close transitions the trade to closed and fixes its profit:
// (exit - entry) * quantity, sign flipped for the short side. Closing twice
// is an error.
func (t *Trade) Close(exitTime time.Time, exitPrice float64) error {
	if t.Status == StatusClosed {
		return fmt.Errorf("trade %s already closed", t.ID)
	}
	profit := (exitPrice - t.EntryPrice) * t.Quantity
	if t.Side == SideSell {
		profit = (t.EntryPrice - exitPrice) * t.Quantity
	}
	t.ExitTime = &exitTime
	t.ExitPrice = &exitPrice
	t.Profit = &profit
	t.Status = StatusClosed
	return nil
}

// EquityPoint is one step of the equity trajectory, ordered by time.
type EquityPoint struct {
	Time            time.Time `json:"time"`
	Equity          float64   `json:"equity"`
	DrawdownPercent float64   `json:"drawdownPercent"`
}
