// Package events defines the wire-level event envelope and the typed
// payloads exchanged over the duplex channel.
package events

import "gridrush/internal/board"

// Event is the envelope for every frame in both directions.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Player is the roster entry included in broadcasts. Connection ids are
// internal and never serialized.
type Player struct {
	Username   string `json:"username"`
	Ready      bool   `json:"ready"`
	Score      int    `json:"score"`
	Time       int    `json:"time"`
	Finished   bool   `json:"finished"`
	Eliminated bool   `json:"eliminated"`
}

// Inbound payloads.

type CreateRoomRequest struct {
	Username   string `mapstructure:"username"`
	MaxPlayers int    `mapstructure:"max_players"`
	GameMode   string `mapstructure:"game_mode"`
	Difficulty string `mapstructure:"difficulty"`
}

type JoinRoomRequest struct {
	RoomCode string `mapstructure:"room_code"`
	Username string `mapstructure:"username"`
}

type ChangeModeRequest struct {
	GameMode string `mapstructure:"game_mode"`
}

type GameActionRequest struct {
	Action string `mapstructure:"action"`
	Row    int    `mapstructure:"row"`
	Col    int    `mapstructure:"col"`
	// Clicks carries the final score reported with an "eliminated" action.
	Clicks int `mapstructure:"clicks"`
}

type GameFinishedRequest struct {
	Score int `mapstructure:"score"`
	Time  int `mapstructure:"time"`
}

// Outbound payloads.

type Connected struct {
	ConnectionID string `json:"connection_id"`
}

type RoomCreated struct {
	RoomCode   string `json:"room_code"`
	Difficulty string `json:"difficulty"`
	MaxPlayers int    `json:"max_players"`
	GameMode   string `json:"game_mode"`
}

type RoomJoined struct {
	RoomCode   string   `json:"room_code"`
	Difficulty string   `json:"difficulty"`
	Host       string   `json:"host"`
	Players    []Player `json:"players"`
}

type PlayerJoined struct {
	Username string   `json:"username"`
	Players  []Player `json:"players"`
}

type PlayerLeft struct {
	Username         string   `json:"username"`
	PlayersRemaining int      `json:"players_remaining"`
	Players          []Player `json:"players"`
}

type LeftRoom struct {
	Success bool `json:"success"`
}

type PlayerReadyUpdate struct {
	Username string   `json:"username"`
	Players  []Player `json:"players"`
	AllReady bool     `json:"all_ready"`
}

type GameStart struct {
	Difficulty  string     `json:"difficulty"`
	Board       board.View `json:"board"`
	GameMode    string     `json:"game_mode"`
	CurrentTurn string     `json:"current_turn,omitempty"`
	Players     []Player   `json:"players"`
}

type PlayerAction struct {
	Username string `json:"username"`
	Action   string `json:"action"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type TurnChanged struct {
	CurrentTurn string `json:"current_turn"`
}

type PlayerEliminated struct {
	Username string `json:"username"`
	Winner   string `json:"winner,omitempty"`
}

type PlayerFinished struct {
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Time     int      `json:"time"`
	Players  []Player `json:"players"`
}

type GameEnded struct {
	Results []Player `json:"results"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Error wraps a safe user-facing message in an error event. Internal error
// text never travels through here.
func Error(message string) Event {
	return Event{Type: "error", Payload: ErrorPayload{Message: message}}
}
