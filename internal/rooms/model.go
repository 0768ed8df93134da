package rooms

import (
	"sort"
	"strings"
	"time"

	"gridrush/internal/board"
	"gridrush/internal/events"
)

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

type GameMode string

const (
	ModeRace GameMode = "race"
	ModeTurn GameMode = "turn-based"
)

// ParseMode canonicalizes a client-supplied mode string. "luck" is the
// legacy name for turn-based mode and is still accepted on the wire.
func ParseMode(raw string) GameMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "turn-based", "turn_based", "luck":
		return ModeTurn
	default:
		return ModeRace
	}
}

const (
	MinPlayers = 2
	MaxPlayers = 10

	maxUsernameLen = 50
	maxScore       = 100000
	maxTimeSecs    = 86400
	maxCoordinate  = 100
)

// Player is always owned by exactly one Room. Ephemeral fields (Ready,
// Score, TimeSecs, Finished, Eliminated) are cleared every time the room
// returns to Waiting.
type Player struct {
	Username   string
	ConnID     string
	Ready      bool
	Score      int
	TimeSecs   int
	Finished   bool
	Eliminated bool
}

// Session maps a connection to its room membership. A connection owns at
// most one membership at a time; the room code is a non-owning
// back-reference used for disconnect routing.
type Session struct {
	Username string
	RoomCode string
}

// Room is the unit of mutual exclusion. It carries no mutex of its own:
// every multi-step mutation must hold the "room:<code>" lock from the lock
// manager, which totally orders mutations per room. Code, Host, MaxPlayers,
// Difficulty and CreatedAt are immutable after the room is published.
type Room struct {
	Code        string
	Host        string
	MaxPlayers  int
	Mode        GameMode
	Difficulty  string
	Status      Status
	Players     []*Player // join order
	CurrentTurn string
	Board       *board.Board
	CreatedAt   time.Time
}

func (r *Room) playerByConn(connID string) *Player {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) hasUsername(username string) bool {
	for _, p := range r.Players {
		if p.Username == username {
			return true
		}
	}
	return false
}

// removeConn drops the player owned by connID, preserving join order, and
// reports whether anyone was removed.
func (r *Room) removeConn(connID string) bool {
	for i, p := range r.Players {
		if p.ConnID == connID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) activePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

func (r *Room) allReady() bool {
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return len(r.Players) > 0
}

func (r *Room) allFinished() bool {
	for _, p := range r.Players {
		if !p.Finished {
			return false
		}
	}
	return len(r.Players) > 0
}

// resetEphemeral returns the room to its between-rounds state. The board is
// left in place until the refreshed one is installed.
func (r *Room) resetEphemeral() {
	r.Status = StatusWaiting
	r.CurrentTurn = ""
	for _, p := range r.Players {
		p.Ready = false
		p.Score = 0
		p.TimeSecs = 0
		p.Finished = false
		p.Eliminated = false
	}
}

// advanceTurn moves CurrentTurn to the next non-eliminated player in join
// order, wrapping circularly. The scan is bounded by the player count so a
// fully-eliminated roster cannot loop forever; in that case CurrentTurn is
// left unchanged and false is returned.
func (r *Room) advanceTurn() bool {
	if len(r.Players) == 0 {
		r.CurrentTurn = ""
		return false
	}
	cur := 0
	for i, p := range r.Players {
		if p.Username == r.CurrentTurn {
			cur = i
			break
		}
	}
	next := (cur + 1) % len(r.Players)
	for attempts := 0; attempts < len(r.Players); attempts++ {
		if !r.Players[next].Eliminated {
			r.CurrentTurn = r.Players[next].Username
			return true
		}
		next = (next + 1) % len(r.Players)
	}
	return false
}

// roster builds the broadcast view of the player list in join order.
func (r *Room) roster() []events.Player {
	out := make([]events.Player, len(r.Players))
	for i, p := range r.Players {
		out[i] = events.Player{
			Username:   p.Username,
			Ready:      p.Ready,
			Score:      p.Score,
			Time:       p.TimeSecs,
			Finished:   p.Finished,
			Eliminated: p.Eliminated,
		}
	}
	return out
}

func (r *Room) connIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ConnID
	}
	return ids
}

func (r *Room) connIDsExcept(connID string) []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ConnID != connID {
			ids = append(ids, p.ConnID)
		}
	}
	return ids
}

// rankByElimination orders survivors first, then by score descending.
// Used for turn-based terminal results so the winner leads the list.
func (r *Room) rankByElimination() []events.Player {
	ranked := make([]*Player, len(r.Players))
	copy(ranked, r.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Eliminated != ranked[j].Eliminated {
			return !ranked[i].Eliminated
		}
		return ranked[i].Score > ranked[j].Score
	})
	return toRoster(ranked)
}

// rankByScore orders by score descending with elapsed time ascending as the
// tie-break. Used for race terminal results.
func (r *Room) rankByScore() []events.Player {
	ranked := make([]*Player, len(r.Players))
	copy(ranked, r.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TimeSecs < ranked[j].TimeSecs
	})
	return toRoster(ranked)
}

func toRoster(players []*Player) []events.Player {
	out := make([]events.Player, len(players))
	for i, p := range players {
		out[i] = events.Player{
			Username:   p.Username,
			Ready:      p.Ready,
			Score:      p.Score,
			Time:       p.TimeSecs,
			Finished:   p.Finished,
			Eliminated: p.Eliminated,
		}
	}
	return out
}

func clampUsername(raw string) string {
	name := strings.TrimSpace(raw)
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	return name
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func clampTime(secs int) int {
	if secs < 0 {
		return 0
	}
	if secs > maxTimeSecs {
		return maxTimeSecs
	}
	return secs
}
