package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkedup/backend/internal/api/handler"
	"linkedup/backend/internal/chat"
	"linkedup/backend/internal/chathub"
	"linkedup/backend/internal/config"
	"linkedup/backend/internal/models"
	"linkedup/backend/internal/storage"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb, cfg.UserCacheTTL)
	chatSvc := chat.NewService(store)

	hub := chathub.NewManager(chatSvc, chathub.NewPresence())
	go hub.Run()

	h := handler.NewHandler(hub, chatSvc)

	r := gin.Default()
	api := r.Group("/api/v1")
	{
		conversations := api.Group("/conversations", handler.RequireAuth(cfg.JWTSecret))
		conversations.POST("", h.CreateConversation)
		conversations.GET("", h.ListConversations)
		conversations.GET("/:id/messages", h.ListMessages)
		conversations.POST("/:id/messages", h.SendMessage)
	}
	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
		// No write timeout: the /ws route holds long-lived connections.
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting chat backend")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
