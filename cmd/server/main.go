package main

import (
	"log"

	"go.uber.org/zap"

	"gridrush/internal/config"
	"gridrush/internal/server"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	if err := server.Run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
