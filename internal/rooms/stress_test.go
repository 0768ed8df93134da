package rooms

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrush/internal/events"
)

func TestConcurrentCreatesUniqueCodes(t *testing.T) {
	c, rec := newTestCoordinator(t, Config{})

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.CreateRoom(fmt.Sprintf("conn-%d", i), events.CreateRoomRequest{
				Username:   fmt.Sprintf("player-%d", i),
				MaxPlayers: 4,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "creator %d", i)
	}
	require.Equal(t, n, c.RoomCount())

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		ev, ok := rec.last(fmt.Sprintf("conn-%d", i), "room_created")
		require.True(t, ok, "creator %d got no room_created", i)
		code := ev.Payload.(events.RoomCreated).RoomCode
		assert.False(t, seen[code], "code %s assigned twice", code)
		seen[code] = true
	}
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	c, rec := newTestCoordinator(t, Config{})
	code := createRoom(t, c, rec, "host", "host", 4, "race")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.JoinRoom(fmt.Sprintf("conn-%d", i), events.JoinRoomRequest{
				RoomCode: code,
				Username: fmt.Sprintf("player-%d", i),
			})
		}(i)
	}
	wg.Wait()

	joined, full := 0, 0
	for _, err := range errs {
		if err == nil {
			joined++
			continue
		}
		require.ErrorIs(t, err, ErrRoomFull)
		full++
	}
	// Host plus exactly three winners of the race; everyone else bounced.
	assert.Equal(t, 3, joined)
	assert.Equal(t, n-3, full)

	room, ok := c.rooms.Get(code)
	require.True(t, ok)
	assert.Len(t, room.Players, 4)
}

func TestConcurrentReadyStartsOnce(t *testing.T) {
	c, rec := newTestCoordinator(t, Config{})
	code := createRoom(t, c, rec, "c1", "alice", 4, "race")
	join(t, c, "c2", code, "bob")
	join(t, c, "c3", code, "carol")

	var wg sync.WaitGroup
	for _, conn := range []string{"c1", "c2", "c3"} {
		wg.Add(1)
		go func(conn string) {
			defer wg.Done()
			assert.NoError(t, c.MarkReady(conn))
		}(conn)
	}
	wg.Wait()

	// The last ready-up to win the lock starts the game exactly once.
	assert.Equal(t, 1, rec.count("c1", "game_start"))
	room, _ := c.rooms.Get(code)
	assert.Equal(t, StatusPlaying, room.Status)
}

func TestConcurrentEliminationsSingleWinner(t *testing.T) {
	c, rec := newTestCoordinator(t, Config{})
	code := createRoom(t, c, rec, "c1", "alice", 10, "turn-based")
	conns := []string{"c1"}
	for i := 2; i <= 6; i++ {
		conn := fmt.Sprintf("c%d", i)
		join(t, c, conn, code, fmt.Sprintf("player-%d", i))
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		require.NoError(t, c.MarkReady(conn))
	}

	// Everyone but alice hits a mine at once.
	var wg sync.WaitGroup
	for _, conn := range conns[1:] {
		wg.Add(1)
		go func(conn string) {
			defer wg.Done()
			assert.NoError(t, c.HandleAction(conn, events.GameActionRequest{Action: "eliminated"}))
		}(conn)
	}
	wg.Wait()

	assert.Equal(t, 1, rec.count("c1", "game_ended"), "terminal broadcast must fire exactly once")
	ev, ok := rec.last("c1", "game_ended")
	require.True(t, ok)
	results := ev.Payload.(events.GameEnded).Results
	assert.Equal(t, "alice", results[0].Username)

	room, _ := c.rooms.Get(code)
	assert.Equal(t, StatusWaiting, room.Status)
}
