package server

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gridrush/internal/events"
	"gridrush/internal/metrics"
	"gridrush/internal/ws"
)

// handleWS upgrades the connection and runs the read loop until the peer
// goes away. Cleanup always runs through the coordinator so a dropped
// socket behaves exactly like an explicit leave.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	client := ws.NewClient(connID, conn)
	s.hub.Register(client)
	metrics.ActiveConnections.Inc()
	s.log.Info("client connected", zap.String("conn_id", connID))

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.coord.Disconnect(connID)
		s.hub.Unregister(connID)
		metrics.ActiveConnections.Dec()
		conn.Close(websocket.StatusNormalClosure, "")
		s.log.Info("client disconnected", zap.String("conn_id", connID))
	}()

	go client.WritePump(ctx)

	s.hub.Send(connID, events.Event{
		Type:    "connected",
		Payload: events.Connected{ConnectionID: connID},
	})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		s.dispatch(connID, data)
	}
}
