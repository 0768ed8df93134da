package rooms

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gridrush/internal/board"
	"gridrush/internal/events"
	"gridrush/internal/locks"
	"gridrush/internal/metrics"
	"gridrush/internal/registry"
)

// Broadcaster delivers events to connections. Implementations must not
// block: the coordinator calls these while holding room locks.
type Broadcaster interface {
	Send(connID string, ev events.Event)
	SendMany(connIDs []string, ev events.Event)
}

type Config struct {
	MaxRooms          int
	MaxSessions       int
	LockTimeout       time.Duration
	RoomTTL           time.Duration
	SweepInterval     time.Duration
	DefaultDifficulty string
}

func (c *Config) applyDefaults() {
	if c.MaxRooms <= 0 {
		c.MaxRooms = 1000
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 10000
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = 5 * time.Second
	}
	if c.RoomTTL <= 0 {
		c.RoomTTL = 30 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 5 * time.Minute
	}
	if c.DefaultDifficulty == "" {
		c.DefaultDifficulty = "medium"
	}
}

// Coordinator owns the Rooms and Sessions registries and the room lifecycle
// state machine. Every connection handler calls into it concurrently;
// per-room mutations are serialized through the lock manager.
type Coordinator struct {
	cfg      Config
	rooms    *registry.Store[*Room]
	sessions *registry.Store[Session]
	locks    locks.Manager
	gen      board.Generator
	cast     Broadcaster
	sink     SummarySink // nil when persistence is not configured
	log      *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewCoordinator(cfg Config, lm locks.Manager, gen board.Generator, cast Broadcaster, sink SummarySink, log *zap.Logger) *Coordinator {
	cfg.applyDefaults()
	c := &Coordinator{
		cfg:      cfg,
		rooms:    registry.New[*Room](),
		sessions: registry.New[Session](),
		locks:    lm,
		gen:      gen,
		cast:     cast,
		sink:     sink,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.sweepLoop()
	return c
}

// Close stops the idle-room sweeper. Safe to call more than once.
func (c *Coordinator) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func roomKey(code string) string     { return "room:" + code }
func creationKey(code string) string { return "room_creation:" + code }

// lockRoom serializes multi-step mutations for one room.
func (c *Coordinator) lockRoom(code string) (locks.Token, error) {
	token, err := c.locks.Acquire(roomKey(code), c.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, locks.ErrTimeout) {
			metrics.LockTimeouts.Inc()
			return "", ErrLockTimeout
		}
		return "", err
	}
	return token, nil
}

func (c *Coordinator) unlockRoom(code string, token locks.Token) {
	c.locks.Release(roomKey(code), token)
}

// CreateRoom builds a room with the creator as host and sole player.
// Board generation happens before the room is published, so no lock is held
// across the collaborator call.
func (c *Coordinator) CreateRoom(connID string, req events.CreateRoomRequest) error {
	if c.sessions.Len() >= c.cfg.MaxSessions || c.rooms.Len() >= c.cfg.MaxRooms {
		return ErrCapacityExceeded
	}

	username := clampUsername(req.Username)
	if username == "" {
		return ErrUsernameRequired
	}
	if req.MaxPlayers < MinPlayers || req.MaxPlayers > MaxPlayers {
		return ErrInvalidMaxPlayers
	}
	mode := ParseMode(req.GameMode)
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = c.cfg.DefaultDifficulty
	}

	b, err := c.gen.Generate(difficulty)
	if err != nil {
		return fmt.Errorf("generating board: %w", err)
	}

	room := &Room{
		Host:       username,
		MaxPlayers: req.MaxPlayers,
		Mode:       mode,
		Difficulty: difficulty,
		Status:     StatusWaiting,
		Board:      b,
		CreatedAt:  time.Now(),
		Players: []*Player{{
			Username: username,
			ConnID:   connID,
		}},
	}

	if err := c.insertRoom(room); err != nil {
		return err
	}

	c.sessions.Set(connID, Session{Username: username, RoomCode: room.Code})

	metrics.RoomsCreated.Inc()
	metrics.ActiveRooms.Set(float64(c.rooms.Len()))
	c.log.Info("room created",
		zap.String("room", room.Code),
		zap.String("host", username),
		zap.String("mode", string(mode)),
		zap.Int("max_players", room.MaxPlayers))

	c.cast.Send(connID, events.Event{Type: "room_created", Payload: events.RoomCreated{
		RoomCode:   room.Code,
		Difficulty: difficulty,
		MaxPlayers: room.MaxPlayers,
		GameMode:   string(mode),
	}})
	return nil
}

const codeAttempts = 100

// insertRoom assigns a unique code and publishes the room. Each candidate
// code is claimed under its "room_creation:" lock so two creators cannot
// race the same fresh code. After repeated collisions idle rooms are
// reclaimed and the whole attempt repeated once.
func (c *Coordinator) insertRoom(room *Room) error {
	for round := 0; round < 2; round++ {
		for attempt := 0; attempt < codeAttempts; attempt++ {
			code, err := GenerateCode()
			if err != nil {
				return fmt.Errorf("generating room code: %w", err)
			}

			token, err := c.locks.Acquire(creationKey(code), c.cfg.LockTimeout)
			if err != nil {
				continue
			}
			room.Code = code
			ok := c.rooms.SetIfAbsent(code, room)
			c.locks.Release(creationKey(code), token)
			if ok {
				return nil
			}
		}
		if round == 0 {
			reclaimed := c.reclaimIdleRooms()
			c.log.Warn("room code space under pressure",
				zap.Int("reclaimed", reclaimed))
		}
	}
	room.Code = ""
	return ErrCapacityExceeded
}

// JoinRoom appends a player to a waiting room under the room's lock.
func (c *Coordinator) JoinRoom(connID string, req events.JoinRoomRequest) error {
	if c.sessions.Len() >= c.cfg.MaxSessions {
		return ErrCapacityExceeded
	}

	code, err := NormalizeCode(req.RoomCode)
	if err != nil {
		return err
	}
	username := clampUsername(req.Username)
	if username == "" {
		return ErrUsernameRequired
	}

	token, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer c.unlockRoom(code, token)

	room, ok := c.rooms.Get(code)
	if !ok {
		return ErrRoomNotFound
	}
	if room.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if len(room.Players) >= room.MaxPlayers {
		return ErrRoomFull
	}
	if room.hasUsername(username) {
		return ErrAlreadyInRoom
	}

	room.Players = append(room.Players, &Player{
		Username: username,
		ConnID:   connID,
	})
	c.sessions.Set(connID, Session{Username: username, RoomCode: code})

	c.log.Info("player joined",
		zap.String("room", code),
		zap.String("username", username),
		zap.Int("players", len(room.Players)))

	c.cast.Send(connID, events.Event{Type: "room_joined", Payload: events.RoomJoined{
		RoomCode:   code,
		Difficulty: room.Difficulty,
		Host:       room.Host,
		Players:    room.roster(),
	}})
	c.cast.SendMany(room.connIDsExcept(connID), events.Event{Type: "player_joined", Payload: events.PlayerJoined{
		Username: username,
		Players:  room.roster(),
	}})
	return nil
}

// MarkReady flags the caller ready and, inside the same critical section,
// starts the round once at least two players are all ready. Two concurrent
// "last player readies" calls cannot both start the game: the loser of the
// lock race observes Playing and drops out.
func (c *Coordinator) MarkReady(connID string) error {
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
	if room.Status != StatusWaiting {
		return nil
	}
	player := room.playerByConn(connID)
	if player == nil {
		return nil
	}

	player.Ready = true
	allReady := room.allReady()

	c.cast.SendMany(room.connIDs(), events.Event{Type: "player_ready_update", Payload: events.PlayerReadyUpdate{
		Username: player.Username,
		Players:  room.roster(),
		AllReady: allReady,
	}})

	if allReady && len(room.Players) >= MinPlayers {
		c.startRound(room, "")
	}
	return nil
}

// startRound transitions Waiting -> Playing. Caller must hold the room
// lock. firstTurn overrides the turn holder for turn-based mode; empty
// selects the first player in join order.
func (c *Coordinator) startRound(room *Room, firstTurn string) {
	for _, p := range room.Players {
		p.Score = 0
		p.TimeSecs = 0
		p.Finished = false
		p.Eliminated = false
	}
	room.Status = StatusPlaying
	room.CurrentTurn = ""
	if room.Mode == ModeTurn {
		if firstTurn == "" {
			firstTurn = room.Players[0].Username
		}
		room.CurrentTurn = firstTurn
	}

	metrics.GamesStarted.Inc()
	c.log.Info("game started",
		zap.String("room", room.Code),
		zap.String("mode", string(room.Mode)),
		zap.Int("players", len(room.Players)))

	c.cast.SendMany(room.connIDs(), events.Event{Type: "game_start", Payload: events.GameStart{
		Difficulty:  room.Difficulty,
		Board:       room.Board.View(),
		GameMode:    string(room.Mode),
		CurrentTurn: room.CurrentTurn,
		Players:     room.roster(),
	}})
}

// ChangeMode is the host-only administrative override: it switches the game
// mode, installs a fresh board, force-readies everyone and starts
// immediately, bypassing the ready gate.
func (c *Coordinator) ChangeMode(connID string, req events.ChangeModeRequest) error {
	session, ok := c.sessions.Get(connID)
	if !ok {
		return nil
	}
	peek, ok := c.rooms.Get(session.RoomCode)
	if !ok {
		return nil
	}

	// Difficulty is immutable, so the replacement board can be generated
	// before taking the lock.
	b, err := c.gen.Generate(peek.Difficulty)
	if err != nil {
		return fmt.Errorf("generating board: %w", err)
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
	if room.Host != session.Username {
		return ErrNotHost
	}

	mode := ParseMode(req.GameMode)
	room.Mode = mode
	room.Board = b
	for _, p := range room.Players {
		p.Ready = true
	}
	c.startRound(room, room.Host)

	c.log.Info("game mode changed",
		zap.String("room", room.Code),
		zap.String("mode", string(mode)),
		zap.String("host", room.Host))
	return nil
}

// LeaveRoom removes the caller from their room and acknowledges with a
// left_room event.
func (c *Coordinator) LeaveRoom(connID string) error {
	return c.removePlayer(connID, true)
}

// Disconnect tears down a vanished connection: the player is removed from
// their room and the session entry deleted. Unknown connections are a no-op.
func (c *Coordinator) Disconnect(connID string) {
	c.removePlayer(connID, false)
}

func (c *Coordinator) removePlayer(connID string, ack bool) error {
	session, ok := c.sessions.Get(connID)
	if !ok {
		return nil
	}

	token, err := c.lockRoom(session.RoomCode)
	if err != nil {
		return err
	}

	if room, ok := c.rooms.Get(session.RoomCode); ok && room.playerByConn(connID) != nil {
		// A leaver holding the turn must not stall the rotation. The turn
		// advances while the leaver is still in the roster so the successor
		// is the next active player in join order.
		turnChanged := false
		if room.Status == StatusPlaying && room.Mode == ModeTurn && room.CurrentTurn == session.Username {
			turnChanged = room.advanceTurn() && room.CurrentTurn != session.Username
			if !turnChanged {
				room.CurrentTurn = ""
			}
		}
		room.removeConn(connID)

		if len(room.Players) == 0 {
			c.rooms.Delete(room.Code)
			metrics.ActiveRooms.Set(float64(c.rooms.Len()))
			c.log.Info("room deleted", zap.String("room", room.Code))
		} else {
			c.cast.SendMany(room.connIDs(), events.Event{Type: "player_left", Payload: events.PlayerLeft{
				Username:         session.Username,
				PlayersRemaining: len(room.Players),
				Players:          room.roster(),
			}})
			if turnChanged {
				c.cast.SendMany(room.connIDs(), events.Event{Type: "turn_changed", Payload: events.TurnChanged{
					CurrentTurn: room.CurrentTurn,
				}})
			}
		}
	}
	c.unlockRoom(session.RoomCode, token)

	c.sessions.Delete(connID)
	if ack {
		c.cast.Send(connID, events.Event{Type: "left_room", Payload: events.LeftRoom{Success: true}})
	}
	return nil
}

// finishRound handles a terminal result: metrics, the persistence summary,
// the reset to Waiting, and the asynchronous board refresh. Caller must
// hold the room lock; the refresh re-acquires it on its own.
func (c *Coordinator) finishRound(room *Room, results []events.Player, winner string) {
	metrics.GamesEnded.Inc()
	if c.sink != nil {
		c.sink.Record(buildSummary(room, results, winner))
	}
	room.resetEphemeral()

	c.log.Info("game ended",
		zap.String("room", room.Code),
		zap.String("winner", winner))

	go c.refreshBoard(room.Code, room.Difficulty)
}

// refreshBoard generates a replacement board outside any lock and installs
// it under a short re-acquire. A room deleted in the meantime is skipped.
func (c *Coordinator) refreshBoard(code, difficulty string) {
	b, err := c.gen.Generate(difficulty)
	if err != nil {
		c.log.Error("board refresh failed", zap.String("room", code), zap.Error(err))
		return
	}

	token, err := c.lockRoom(code)
	if err != nil {
		c.log.Warn("board refresh skipped", zap.String("room", code), zap.Error(err))
		return
	}
	defer c.unlockRoom(code, token)

	if room, ok := c.rooms.Get(code); ok {
		room.Board = b
	}
}

// reclaimIdleRooms deletes rooms older than the TTL, taking each room's
// lock so a reclaim cannot interleave with a live mutation.
func (c *Coordinator) reclaimIdleRooms() int {
	cutoff := time.Now().Add(-c.cfg.RoomTTL)
	reclaimed := 0

	for code, room := range c.rooms.Items() {
		if room.CreatedAt.After(cutoff) {
			continue
		}
		token, err := c.lockRoom(code)
		if err != nil {
			continue
		}
		if current, ok := c.rooms.Get(code); ok && current.CreatedAt.Before(cutoff) {
			for _, p := range current.Players {
				c.sessions.Delete(p.ConnID)
			}
			c.rooms.Delete(code)
			reclaimed++
		}
		c.unlockRoom(code, token)
	}

	if reclaimed > 0 {
		metrics.ActiveRooms.Set(float64(c.rooms.Len()))
		c.log.Info("idle rooms reclaimed", zap.Int("count", reclaimed))
	}
	return reclaimed
}

func (c *Coordinator) sweepLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.reclaimIdleRooms()
		}
	}
}

// RoomCount reports the number of active rooms.
func (c *Coordinator) RoomCount() int { return c.rooms.Len() }

// SessionCount reports the number of tracked connections with membership.
func (c *Coordinator) SessionCount() int { return c.sessions.Len() }
