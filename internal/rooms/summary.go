package rooms

import (
	"time"

	"github.com/google/uuid"

	"gridrush/internal/events"
)

// PlayerResult is one row of a finished game, already ranked.
type PlayerResult struct {
	Username   string
	Score      int
	TimeSecs   int
	Rank       int
	Eliminated bool
	Winner     bool
}

// GameSummary describes a finished round for the persistence collaborator.
type GameSummary struct {
	ID         string
	RoomCode   string
	Mode       string
	Difficulty string
	EndedAt    time.Time
	Results    []PlayerResult
}

// SummarySink consumes finished-game summaries out-of-band. Implementations
// must never block the caller; the coordinator has no dependency on their
// availability.
type SummarySink interface {
	Record(summary GameSummary)
}

func buildSummary(room *Room, results []events.Player, winner string) GameSummary {
	summary := GameSummary{
		ID:         uuid.NewString(),
		RoomCode:   room.Code,
		Mode:       string(room.Mode),
		Difficulty: room.Difficulty,
		EndedAt:    time.Now(),
		Results:    make([]PlayerResult, len(results)),
	}
	for i, p := range results {
		summary.Results[i] = PlayerResult{
			Username:   p.Username,
			Score:      p.Score,
			TimeSecs:   p.Time,
			Rank:       i + 1,
			Eliminated: p.Eliminated,
			Winner:     p.Username == winner && winner != "",
		}
	}
	return summary
}
