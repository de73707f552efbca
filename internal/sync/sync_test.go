package sync

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Repository) {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	repo := storage.NewRepository(db)
	return NewStore(repo, logger.New("error")), repo
}

func testStrategy() *storage.Strategy {
	s := &storage.Strategy{ID: uuid.NewString(), Title: "Test Strategy"}
	s.SetCode(storage.CodeMap{storage.PlatformPine: "//@version=5\nstrategy(\"t\")"})
	return s
}

func TestContentHashStable(t *testing.T) {
	a := storage.CodeMap{"pine-script": "x", "mql5": "y"}
	b := storage.CodeMap{"mql5": "y", "pine-script": "x"}
	assert.Equal(t, ContentHash(a), ContentHash(b))
}

func TestContentHashDistinguishesContent(t *testing.T) {
	a := storage.CodeMap{"pine-script": "x"}
	b := storage.CodeMap{"pine-script": "y"}
	c := storage.CodeMap{"mql5": "x"}
	assert.NotEqual(t, ContentHash(a), ContentHash(b))
	assert.NotEqual(t, ContentHash(a), ContentHash(c))
}

func TestStoreSaveRequiresID(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Save(&storage.Strategy{})
	assert.Error(t, err)
}

func TestStoreSaveRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	s := testStrategy()
	require.NoError(t, store.Save(s))

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Title, got.Title)
	assert.Equal(t, ContentHash(s.Code()), ContentHash(got.Code()))
}

func TestPollFiresOncePerDistinctHash(t *testing.T) {
	store, _ := newTestStore(t)
	s := testStrategy()
	require.NoError(t, store.Save(s))

	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Poll(ctx, s.ID, 10*time.Millisecond, func(*storage.Strategy) {
			fired.Add(1)
		})
		close(done)
	}()

	// Several idle intervals: only the seed check fires.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	// A content change fires exactly one more time.
	s.SetCode(storage.CodeMap{storage.PlatformPine: "//@version=5\nstrategy(\"t2\")"})
	require.NoError(t, store.Save(s))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(2), fired.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll did not stop on cancellation")
	}
}

func TestPollSurvivesMissingRecord(t *testing.T) {
	store, _ := newTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var fired atomic.Int32
	store.Poll(ctx, "no-such-id", 10*time.Millisecond, func(*storage.Strategy) {
		fired.Add(1)
	})
	assert.Zero(t, fired.Load())
}

func TestAutosaverCollapsesBurst(t *testing.T) {
	store, repo := newTestStore(t)
	a := NewAutosaver(store, 30*time.Millisecond)
	defer a.Close()

	s := testStrategy()
	for i := 0; i < 5; i++ {
		s.Description = string(rune('a' + i))
		a.Touch(s)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)

	got, err := repo.GetStrategy(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "e", got.Description, "only the final state is written")
}

func TestAutosaverFlush(t *testing.T) {
	store, repo := newTestStore(t)
	a := NewAutosaver(store, time.Hour)
	defer a.Close()

	s := testStrategy()
	a.Touch(s)
	a.Flush()

	_, err := repo.GetStrategy(s.ID)
	assert.NoError(t, err)
}

func TestAutosaverCloseDropsPending(t *testing.T) {
	store, repo := newTestStore(t)
	a := NewAutosaver(store, 20*time.Millisecond)

	s := testStrategy()
	a.Touch(s)
	a.Close()

	time.Sleep(50 * time.Millisecond)
	_, err := repo.GetStrategy(s.ID)
	assert.Error(t, err, "pending write must be cancelled by Close")

	// Touch after Close is a no-op.
	a.Touch(testStrategy())
	a.Flush()
	_, err = repo.GetStrategy(s.ID)
	assert.Error(t, err)
}
