package db

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gridrush/internal/rooms"
)

const sinkBuffer = 256

// Sink implements rooms.SummarySink on top of a buffered channel so the
// coordinator is never blocked by a slow or absent database. A full buffer
// drops the summary; the live game always wins over the leaderboard.
type Sink struct {
	db     *DB
	buffer chan rooms.GameSummary
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewSink(db *DB, log *zap.Logger) *Sink {
	s := &Sink{
		db:     db,
		buffer: make(chan rooms.GameSummary, sinkBuffer),
		log:    log,
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s
}

func (s *Sink) Record(summary rooms.GameSummary) {
	select {
	case s.buffer <- summary:
	default:
		s.log.Warn("summary buffer full, dropping game summary",
			zap.String("room", summary.RoomCode))
	}
}

// Close drains and stops the writer.
func (s *Sink) Close() {
	close(s.buffer)
	s.wg.Wait()
}

func (s *Sink) writeLoop() {
	defer s.wg.Done()
	for summary := range s.buffer {
		if err := s.write(summary); err != nil {
			s.log.Error("writing game summary",
				zap.String("room", summary.RoomCode), zap.Error(err))
		}
	}
}

func (s *Sink) write(summary rooms.GameSummary) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO game_summaries (id, room_code, game_mode, difficulty, ended_at)
		VALUES ($1, $2, $3, $4, $5)
	`, summary.ID, summary.RoomCode, summary.Mode, summary.Difficulty, summary.EndedAt)
	if err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}

	for _, r := range summary.Results {
		_, err = tx.Exec(`
			INSERT INTO game_results (game_id, username, score, time_secs, finish_rank, eliminated, winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, summary.ID, r.Username, r.Score, r.TimeSecs, r.Rank, r.Eliminated, r.Winner)
		if err != nil {
			return fmt.Errorf("inserting result for %s: %w", r.Username, err)
		}
	}

	return tx.Commit()
}
