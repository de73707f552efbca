package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/storage"
)

// ChangeFunc is the expensive side effect fired when a polled record's
// content hash changes (e.g. capturing a visual snapshot).
type ChangeFunc func(s *storage.Strategy)

// Store is the write/read surface over the persisted strategy record.
// Writes always carry the full per-platform code map keyed by strategy id;
// two completions' artifacts for the same platform are never merged.
type Store struct {
	repo   *storage.Repository
	logger *logger.Logger
}

func NewStore(repo *storage.Repository, log *logger.Logger) *Store {
	return &Store{repo: repo, logger: log}
}

// Save writes the full record. The caller owns assembling the complete code
// map; partial-field patches are not supported by design.
func (st *Store) Save(s *storage.Strategy) error {
	if s.ID == "" {
		return fmt.Errorf("save strategy: missing id")
	}
	if err := st.repo.SaveStrategy(s); err != nil {
		return fmt.Errorf("save strategy %s: %w", s.ID, err)
	}
	st.logger.Debug("strategy saved", "id", s.ID, "hash", ContentHash(s.Code()))
	return nil
}

func (st *Store) Get(id string) (*storage.Strategy, error) {
	return st.repo.GetStrategy(id)
}

// Poll re-reads the record on the given interval until ctx is cancelled,
// firing onChange at most once per distinct content hash. Read errors are
// logged and the loop continues; a missing record simply skips the tick.
func (st *Store) Poll(ctx context.Context, id string, interval time.Duration, onChange ChangeFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	st.logger.Info("sync poll started", "id", id, "interval", interval.String())

	var lastHash uint64
	seeded := false

	check := func() {
		s, err := st.repo.GetStrategy(id)
		if err != nil {
			st.logger.Error("sync poll read", "id", id, "error", err)
			return
		}
		h := ContentHash(s.Code())
		if seeded && h == lastHash {
			return
		}
		lastHash = h
		seeded = true
		onChange(s)
	}

	check()

	for {
		select {
		case <-ctx.Done():
			st.logger.Info("sync poll stopped", "id", id)
			return
		case <-ticker.C:
			check()
		}
	}
}
