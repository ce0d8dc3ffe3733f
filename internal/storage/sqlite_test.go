package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/blockfall/internal/multiplayer"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	if err := store.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestSaveAndRetrieveScores(t *testing.T) {
	store := openTemp(t)

	runs := []ScoreEntry{
		{Player: "ann", Score: 100, Lines: 2, Level: 1},
		{Player: "bob", Score: 500, Lines: 9, Level: 2},
		{Player: "ann", Score: 250, Lines: 4, Level: 1},
	}
	for _, r := range runs {
		id, err := store.SaveScore(r)
		if err != nil {
			t.Fatalf("SaveScore failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("Expected positive ID, got %d", id)
		}
	}

	entries, err := store.TopScores(10)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	// Should be sorted by score descending
	if entries[0].Score != 500 || entries[1].Score != 250 || entries[2].Score != 100 {
		t.Errorf("Scores not sorted correctly: %v", entries)
	}
	if entries[0].Player != "bob" || entries[0].Lines != 9 || entries[0].Level != 2 {
		t.Errorf("Unexpected top entry: %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}
}

func TestTopScoresLimit(t *testing.T) {
	store := openTemp(t)

	for i := range 5 {
		if _, err := store.SaveScore(ScoreEntry{Score: (i + 1) * 100}); err != nil {
			t.Fatalf("SaveScore failed: %v", err)
		}
	}

	entries, err := store.TopScores(3)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Score != 500 {
		t.Errorf("Expected top score 500, got %d", entries[0].Score)
	}
}

func TestHighScore(t *testing.T) {
	store := openTemp(t)

	high, err := store.HighScore()
	if err != nil {
		t.Fatalf("HighScore failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty database, got %d", high)
	}

	store.SaveScore(ScoreEntry{Score: 100})
	store.SaveScore(ScoreEntry{Score: 300})
	store.SaveScore(ScoreEntry{Score: 200})

	high, err = store.HighScore()
	if err != nil {
		t.Fatalf("HighScore failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score 300, got %d", high)
	}
}

func TestClearScores(t *testing.T) {
	store := openTemp(t)

	store.SaveScore(ScoreEntry{Score: 100})
	store.SaveScore(ScoreEntry{Score: 200})

	if err := store.ClearScores(); err != nil {
		t.Fatalf("ClearScores failed: %v", err)
	}

	entries, _ := store.AllScores()
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", len(entries))
	}
}

func TestOnlineMatches(t *testing.T) {
	store := openTemp(t)

	_, err := store.SaveOnlineMatch(OnlineMatchResult{
		MatchID:   "m-1",
		Peer:      "10.0.0.2:55756",
		Result:    "won",
		EndReason: "completed",
		Duration:  75,
		LinesSent: 6,
	})
	if err != nil {
		t.Fatalf("SaveOnlineMatch failed: %v", err)
	}

	got, err := store.OnlineMatchByID("m-1")
	if err != nil {
		t.Fatalf("OnlineMatchByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected match m-1")
	}
	if got.Peer != "10.0.0.2:55756" || got.Result != "won" || got.Duration != 75 || got.LinesSent != 6 {
		t.Errorf("Unexpected match: %+v", got)
	}

	missing, err := store.OnlineMatchByID("nope")
	if err != nil {
		t.Fatalf("OnlineMatchByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown match, got %+v", missing)
	}
}

func TestSaveMatchResult(t *testing.T) {
	store := openTemp(t)

	var saver multiplayer.MatchResultSaver = store
	err := saver.SaveMatchResult(multiplayer.MatchResultData{
		MatchID:       "m-2",
		Peer:          "peer",
		Result:        "lost",
		EndReason:     "completed",
		Duration:      42*time.Second + 600*time.Millisecond,
		LinesReceived: 3,
	})
	if err != nil {
		t.Fatalf("SaveMatchResult failed: %v", err)
	}
	saver.SaveMatchResult(multiplayer.MatchResultData{MatchID: "m-3", Peer: "peer", Result: "won", EndReason: "completed"})
	saver.SaveMatchResult(multiplayer.MatchResultData{MatchID: "m-4", Peer: "peer", Result: "disconnected", EndReason: "disconnect"})

	recent, err := store.RecentOnlineMatches(10)
	if err != nil {
		t.Fatalf("RecentOnlineMatches failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(recent))
	}
	// Same timestamp resolution, so newest id first
	if recent[0].MatchID != "m-4" {
		t.Errorf("Expected newest match first, got %s", recent[0].MatchID)
	}

	m2, _ := store.OnlineMatchByID("m-2")
	if m2 == nil || m2.Duration != 42 || m2.LinesReceived != 3 {
		t.Errorf("Unexpected stored result: %+v", m2)
	}

	store.SaveScore(ScoreEntry{Score: 100, Lines: 2})
	store.SaveScore(ScoreEntry{Score: 300, Lines: 5})

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.TotalLines != 7 {
		t.Errorf("Unexpected run stats: %+v", stats)
	}
	if stats.Wins != 1 || stats.Losses != 1 {
		t.Errorf("Expected 1 win and 1 loss, got %+v", stats)
	}
}

func TestNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed for nested path: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
