package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gridrush/internal/board"
	"gridrush/internal/config"
	"gridrush/internal/db"
	"gridrush/internal/locks"
	"gridrush/internal/rooms"
	"gridrush/internal/ws"
)

// Run wires the whole server together and blocks serving HTTP.
func Run(cfg config.Config, log *zap.Logger) error {
	hub := ws.NewHub(log)
	lockMgr := locks.NewInProcess(cfg.StaleLockAfter())
	generator := board.NewMinesweeper(time.Now().UnixNano())

	// Persistence is optional; without it summaries are simply not recorded.
	var sink rooms.SummarySink
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL, log)
		if err != nil {
			log.Warn("running without database", zap.Error(err))
		} else {
			if err := database.Migrate(); err != nil {
				return err
			}
			sink = db.NewSink(database, log)
		}
	} else {
		log.Info("DATABASE_URL not set, running without database")
	}

	coord := rooms.NewCoordinator(rooms.Config{
		MaxRooms:          cfg.MaxRooms,
		MaxSessions:       cfg.MaxSessions,
		LockTimeout:       cfg.LockTimeout(),
		RoomTTL:           cfg.RoomTTL(),
		SweepInterval:     cfg.SweepInterval(),
		DefaultDifficulty: cfg.DefaultDifficulty,
	}, lockMgr, generator, hub, sink, log)
	defer coord.Close()

	srv := New(coord, hub, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	addr := "0.0.0.0:" + cfg.Port
	log.Info("server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
