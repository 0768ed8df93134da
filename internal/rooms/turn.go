package rooms

import (
	"go.uber.org/zap"

	"gridrush/internal/events"
)

var validActions = map[string]bool{
	"reveal":     true,
	"flag":       true,
	"eliminated": true,
}

// HandleAction processes a game_action event. Actions that fail the turn
// gate, arrive from an eliminated player, or hit a non-Playing room are
// silently dropped: a stale or racy client proposal must be harmless, not
// an error. Only reveal consumes the turn in turn-based mode.
func (c *Coordinator) HandleAction(connID string, req events.GameActionRequest) error {
	if !validActions[req.Action] {
		return nil
	}

	session, ok := c.sessions.Get(connID)
	if !ok {
		return nil
	}

	token, err := c.lockRoom(session.RoomCode)
	if err != nil {
		return err
	}
	defer c.unlockRoom(session.RoomCode, token)

	room, ok := c.rooms.Get(session.RoomCode)
	if !ok {
		return nil
	}
	if room.Status != StatusPlaying {
		return nil
	}
	player := room.playerByConn(connID)
	if player == nil || player.Eliminated {
		return nil
	}

	if req.Action == "eliminated" {
		c.eliminate(room, player, req.Clicks)
		return nil
	}

	if req.Row < 0 || req.Row > maxCoordinate || req.Col < 0 || req.Col > maxCoordinate {
		return nil
	}
	if room.Board != nil && !room.Board.InBounds(req.Row, req.Col) {
		return nil
	}
	// Turn gate: only the turn holder's proposal can mutate state. The
	// loser of a delivery race is dropped, never applied out of order.
	if room.Mode == ModeTurn && room.CurrentTurn != player.Username {
		return nil
	}

	c.cast.SendMany(room.connIDsExcept(connID), events.Event{Type: "player_action", Payload: events.PlayerAction{
		Username: player.Username,
		Action:   req.Action,
		Row:      req.Row,
		Col:      req.Col,
	}})

	if room.Mode == ModeTurn && req.Action == "reveal" {
		if room.advanceTurn() {
			c.cast.SendMany(room.connIDs(), events.Event{Type: "turn_changed", Payload: events.TurnChanged{
				CurrentTurn: room.CurrentTurn,
			}})
		}
	}
	return nil
}

// eliminate marks the player out of the rotation and checks for
// termination. Caller must hold the room lock.
func (c *Coordinator) eliminate(room *Room, player *Player, finalScore int) {
	player.Eliminated = true
	player.Finished = true
	player.Score = clampScore(finalScore)

	active := room.activePlayers()
	switch len(active) {
	case 1:
		// Last player standing wins.
		winner := active[0]
		winner.Finished = true

		c.cast.SendMany(room.connIDs(), events.Event{Type: "player_eliminated", Payload: events.PlayerEliminated{
			Username: player.Username,
			Winner:   winner.Username,
		}})
		results := room.rankByElimination()
		c.cast.SendMany(room.connIDs(), events.Event{Type: "game_ended", Payload: events.GameEnded{
			Results: results,
		}})
		c.finishRound(room, results, winner.Username)

	case 0:
		// Simultaneous elimination, nobody left to win.
		results := room.rankByElimination()
		c.cast.SendMany(room.connIDs(), events.Event{Type: "game_ended", Payload: events.GameEnded{
			Results: results,
		}})
		c.finishRound(room, results, "")

	default:
		c.cast.SendMany(room.connIDs(), events.Event{Type: "player_eliminated", Payload: events.PlayerEliminated{
			Username: player.Username,
		}})
		if room.Mode == ModeTurn && room.CurrentTurn == player.Username {
			if room.advanceTurn() {
				c.cast.SendMany(room.connIDs(), events.Event{Type: "turn_changed", Payload: events.TurnChanged{
					CurrentTurn: room.CurrentTurn,
				}})
			}
		}
		c.log.Debug("player eliminated",
			zap.String("room", room.Code),
			zap.String("username", player.Username),
			zap.Int("active", len(active)))
	}
}
