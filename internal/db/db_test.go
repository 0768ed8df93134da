package db

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"gridrush/internal/rooms"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		database.conn.Exec("DELETE FROM game_results")
		database.conn.Exec("DELETE FROM game_summaries")
		database.Close()
	})
	return database
}

func sampleSummary() rooms.GameSummary {
	return rooms.GameSummary{
		ID:         "8b38e9a1-4a3e-4d2e-9a50-123456789abc",
		RoomCode:   "123456",
		Mode:       "race",
		Difficulty: "medium",
		EndedAt:    time.Now(),
		Results: []rooms.PlayerResult{
			{Username: "alice", Score: 500, TimeSecs: 30, Rank: 1, Winner: true},
			{Username: "bob", Score: 500, TimeSecs: 45, Rank: 2},
		},
	}
}

func TestSink_Write(t *testing.T) {
	database := getTestDB(t)

	sink := NewSink(database, zap.NewNop())
	sink.Record(sampleSummary())
	sink.Close()

	var count int
	if err := database.conn.QueryRow(`SELECT COUNT(*) FROM game_results`).Scan(&count); err != nil {
		t.Fatalf("counting results: %v", err)
	}
	if count != 2 {
		t.Errorf("game_results rows = %d, want 2", count)
	}

	var winner string
	err := database.conn.QueryRow(`
		SELECT username FROM game_results WHERE winner = true
	`).Scan(&winner)
	if err != nil {
		t.Fatalf("querying winner: %v", err)
	}
	if winner != "alice" {
		t.Errorf("winner = %q, want %q", winner, "alice")
	}
}

func TestSink_FullBufferDrops(t *testing.T) {
	// No database: writes fail, but Record must never block the caller.
	s := &Sink{
		buffer: make(chan rooms.GameSummary), // unbuffered and undrained
		log:    zap.NewNop(),
	}

	done := make(chan struct{})
	go func() {
		s.Record(sampleSummary())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Record() blocked with no consumer")
	}
}
