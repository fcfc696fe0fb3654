package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/FarahBaraket-03/ChatTily/internal/app/registry"
	"github.com/FarahBaraket-03/ChatTily/internal/app/router"
	"github.com/FarahBaraket-03/ChatTily/internal/app/server"
	"github.com/FarahBaraket-03/ChatTily/internal/config"
	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
	"github.com/FarahBaraket-03/ChatTily/internal/platform/logger"
	"github.com/FarahBaraket-03/ChatTily/internal/platform/telemetry"
	"github.com/FarahBaraket-03/ChatTily/internal/plugins/postgres"
	redisPlugin "github.com/FarahBaraket-03/ChatTily/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	_ = godotenv.Load()
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN, "err", err)
		return
	}
	log.Info("postgres connected")

	// Adapters
	userRepo := postgres.NewUserRepo(pdb)
	roomRepo := postgres.NewRoomRepo(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	friendRepo := postgres.NewFriendRepo(pdb)
	txManager := postgres.NewTxManager(pdb)

	// Redis is a cache in front of the profile store; the app runs without it.
	var profiles contracts.ProfileSource = userRepo
	var rdb *goredis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Warn("redis connection failed, serving profiles from the store", "url", cfg.Redis.URL, "err", err)
	} else {
		log.Info("redis connected")
		profiles = redisPlugin.NewProfileCache(rdb, userRepo, cfg.Redis.ProfileTTL)
	}

	// Core
	presence := registry.NewPresenceRegistry(log)
	rooms := registry.NewRoomManager(log, roomRepo)
	msgRouter := router.New(log, presence, rooms)

	tokenSvc := services.NewTokenService(cfg.SecretToken)
	msgSvc := services.NewMessageService(log, msgRepo, roomRepo, friendRepo, msgRouter, txManager)
	roomSvc := services.NewRoomService(log, roomRepo, rooms, msgRouter, txManager)
	friendSvc := services.NewFriendService(log, friendRepo, msgRouter, txManager)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr, tokenSvc, presence, rooms, roomSvc, msgSvc, friendSvc, profiles)
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "err", err)
	}
}
