package storage

import "time"

// Platform keys used in a strategy's code map.
const (
	PlatformPine   = "pine-script"
	PlatformMQL4   = "mql4"
	PlatformMQL5   = "mql5"
	PlatformPython = "python"
)

// CodeMap holds per-platform source keyed by platform identifier. A missing
// or empty entry means no artifact exists for that platform.
type CodeMap map[string]string

// Strategy is the long-lived aggregate: created on the first AI-generated
// artifact, mutated by every subsequent chat turn, never hard-deleted here.
type Strategy struct {
	ID        string    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string `gorm:"index" json:"user_id"`
	Title       string `gorm:"index" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	PineScript string `gorm:"type:text" json:"pine_script"`
	MQL4       string `gorm:"type:text" json:"mql4"`
	MQL5       string `gorm:"type:text" json:"mql5"`
	Python     string `gorm:"type:text" json:"python"`

	ChatHistory string `gorm:"type:text" json:"chat_history"` // JSON array of messages
	Analytics   string `gorm:"type:text" json:"analytics"`    // JSON metrics block, empty when absent
	EquityCurve string `gorm:"type:text" json:"equity_curve"` // JSON array of equity points

	IsPublic bool `json:"is_public"`
	Likes    int  `json:"likes"`
	Copies   int  `json:"copies"`
}

// Code returns the per-platform map view of the four code columns.
func (s *Strategy) Code() CodeMap {
	return CodeMap{
		PlatformPine:   s.PineScript,
		PlatformMQL4:   s.MQL4,
		PlatformMQL5:   s.MQL5,
		PlatformPython: s.Python,
	}
}

// SetCode overwrites all four code columns from the map. Writes always carry
// the full map; there are no partial-field patches.
func (s *Strategy) SetCode(code CodeMap) {
	s.PineScript = code[PlatformPine]
	s.MQL4 = code[PlatformMQL4]
	s.MQL5 = code[PlatformMQL5]
	s.Python = code[PlatformPython]
}

// Candle is one stored OHLCV bar for a symbol and timeframe.
type Candle struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Symbol    string    `gorm:"index;not null" json:"symbol"`
	Timeframe string    `gorm:"not null" json:"timeframe"`
	Time      time.Time `gorm:"index" json:"time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
