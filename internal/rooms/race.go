package rooms

import "gridrush/internal/events"

// HandleFinished records an independent race-mode completion. Scores and
// times are clamped to sane bounds; anything beyond that is the external
// validator's job. When the last player finishes, the final ranking is
// broadcast and the room returns to Waiting.
func (c *Coordinator) HandleFinished(connID string, req events.GameFinishedRequest) error {
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
	if room.Status != StatusPlaying || room.Mode != ModeRace {
		return nil
	}
	player := room.playerByConn(connID)
	if player == nil || player.Eliminated {
		return nil
	}

	player.Score = clampScore(req.Score)
	player.TimeSecs = clampTime(req.Time)
	player.Finished = true

	c.cast.SendMany(room.connIDs(), events.Event{Type: "player_finished", Payload: events.PlayerFinished{
		Username: player.Username,
		Score:    player.Score,
		Time:     player.TimeSecs,
		Players:  room.roster(),
	}})

	if room.allFinished() {
		results := room.rankByScore()
		c.cast.SendMany(room.connIDs(), events.Event{Type: "game_ended", Payload: events.GameEnded{
			Results: results,
		}})
		winner := ""
		if len(results) > 0 {
			winner = results[0].Username
		}
		c.finishRound(room, results, winner)
	}
	return nil
}
