// Package server exposes the websocket endpoint and translates wire
// messages into coordinator calls.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"gridrush/internal/events"
	"gridrush/internal/rooms"
	"gridrush/internal/ws"
)

type Server struct {
	coord *rooms.Coordinator
	hub   *ws.Hub
	log   *zap.Logger
}

func New(coord *rooms.Coordinator, hub *ws.Hub, log *zap.Logger) *Server {
	return &Server{coord: coord, hub: hub, log: log}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// dispatch routes a single inbound message to the coordinator. Any error
// that comes back is reported to the sender as a generic error event so
// internal details never reach the client.
func (s *Server) dispatch(connID string, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.hub.Send(connID, events.Error("Invalid data"))
		return
	}

	var err error
	switch env.Type {
	case "create_room":
		var req events.CreateRoomRequest
		if err = decode(env.Payload, &req); err == nil {
			err = s.coord.CreateRoom(connID, req)
		}
	case "join_room":
		var req events.JoinRoomRequest
		if err = decode(env.Payload, &req); err == nil {
			err = s.coord.JoinRoom(connID, req)
		}
	case "leave_room":
		err = s.coord.LeaveRoom(connID)
	case "player_ready":
		err = s.coord.MarkReady(connID)
	case "change_game_mode":
		var req events.ChangeModeRequest
		if err = decode(env.Payload, &req); err == nil {
			err = s.coord.ChangeMode(connID, req)
		}
	case "game_action":
		var req events.GameActionRequest
		if err = decode(env.Payload, &req); err == nil {
			err = s.coord.HandleAction(connID, req)
		}
	case "game_finished":
		var req events.GameFinishedRequest
		if err = decode(env.Payload, &req); err == nil {
			err = s.coord.HandleFinished(connID, req)
		}
	default:
		s.hub.Send(connID, events.Error("Invalid message type"))
		return
	}

	if err != nil {
		s.log.Debug("request failed",
			zap.String("conn_id", connID),
			zap.String("type", env.Type),
			zap.Error(err))
		s.hub.Send(connID, events.Error(safeMessage(err)))
	}
}

// decode maps a JSON payload onto a typed request. WeaklyTypedInput lets
// JSON numbers (always float64) land in int fields.
func decode(payload map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

// safeMessage converts coordinator errors into the fixed client-facing
// strings. Anything unrecognized collapses to a generic message.
func safeMessage(err error) string {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, rooms.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, rooms.ErrGameInProgress):
		return "Game already in progress"
	case errors.Is(err, rooms.ErrAlreadyInRoom):
		return "Already in room"
	case errors.Is(err, rooms.ErrLockTimeout):
		return "Room is busy, please try again"
	case errors.Is(err, rooms.ErrCapacityExceeded):
		return "Server at capacity. Please try again later."
	case errors.Is(err, rooms.ErrInvalidRoomCode):
		return "Invalid room code format - must be 6 digits"
	case errors.Is(err, rooms.ErrInvalidMaxPlayers):
		return "Max players must be between 2 and 10"
	case errors.Is(err, rooms.ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, rooms.ErrNotHost):
		return "Only the host can change the game mode"
	default:
		return "Invalid request"
	}
}
