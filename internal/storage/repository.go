package storage

import (
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Strategies

func (r *Repository) SaveStrategy(s *Strategy) error {
	return r.db.Save(s).Error
}

func (r *Repository) GetStrategy(id string) (*Strategy, error) {
	var s Strategy
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListStrategies(limit int) ([]Strategy, error) {
	var strategies []Strategy
	err := r.db.Order("updated_at DESC").Limit(limit).Find(&strategies).Error
	return strategies, err
}

// FindTitlesLike returns existing titles containing the substring,
// case-insensitively. Used by the naming coordinator's uniqueness check.
func (r *Repository) FindTitlesLike(substr string) ([]string, error) {
	var titles []string
	err := r.db.Model(&Strategy{}).
		Where("title LIKE ?", "%"+substr+"%").
		Pluck("title", &titles).Error
	return titles, err
}

// UpdateAnalytics writes the metrics block and equity curve in one record
// update, stamping updated_at.
func (r *Repository) UpdateAnalytics(id, analyticsJSON, equityCurveJSON string) error {
	return r.db.Model(&Strategy{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"analytics":    analyticsJSON,
			"equity_curve": equityCurveJSON,
			"updated_at":   time.Now(),
		}).Error
}

// Candles

func (r *Repository) SaveCandles(candles []Candle) error {
	if len(candles) == 0 {
		return nil
	}
	return r.db.Create(&candles).Error
}

func (r *Repository) GetCandles(symbol, timeframe string, limit int) ([]Candle, error) {
	var candles []Candle
	err := r.db.Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Order("time ASC").Limit(limit).Find(&candles).Error
	return candles, err
}

func (r *Repository) CountCandles(symbol string) (int64, error) {
	var n int64
	err := r.db.Model(&Candle{}).Where("symbol = ?", symbol).Count(&n).Error
	return n, err
}
