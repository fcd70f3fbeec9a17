package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizparty-games/quizparty/internal/cache"
	storage "github.com/quizparty-games/quizparty/internal/database"
	"github.com/quizparty-games/quizparty/internal/database/results/model"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	sDB, err := storage.NewFromEnv(context.Background(), &storage.Config{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sDB.Close(context.Background()) })

	c, err := cache.NewLRU(8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	return New(sDB, c)
}

func roomResults(roomID string, at time.Time) []model.Result {
	return []model.Result{
		{RoomID: roomID, PlayerID: "host", Name: "Quiz Master", Score: 4, Winner: true, CompletedAt: at},
		{RoomID: roomID, PlayerID: "p2", Name: "Pat", Score: 1, CompletedAt: at},
	}
}

func TestResultsRoundTrip(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	now := time.Now()

	if err := db.Add(roomResults("r1", now)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.Add(roomResults("r2", now.Add(time.Minute))); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := db.FetchByRoomID("r1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0].RoomID != "r1" || !got[0].Winner {
		t.Errorf("results mangled: %+v", got)
	}

	// second fetch is served from the cache and must agree
	cached, err := db.FetchByRoomID("r1")
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if len(cached) != len(got) || cached[0].PlayerID != got[0].PlayerID {
		t.Errorf("cached fetch diverged: %+v vs %+v", cached, got)
	}
}

func TestResultsNotFound(t *testing.T) {
	t.Parallel()

	db := testDB(t)

	if _, err := db.FetchByRoomID("r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty db: expected ErrNotFound, got %v", err)
	}

	if err := db.Add(roomResults("r1", time.Now())); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := db.FetchByRoomID("unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room: expected ErrNotFound, got %v", err)
	}
}

func TestResultsAddEmpty(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	if err := db.Add(nil); err != nil {
		t.Fatalf("adding nothing must be a no-op, got %v", err)
	}
}
