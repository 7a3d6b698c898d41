package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/cerberus/adapters/accounts"
	"github.com/layer-3/cerberus/adapters/events"
	"github.com/layer-3/cerberus/adapters/hasher"
	"github.com/layer-3/cerberus/adapters/sessions"
	"github.com/layer-3/cerberus/adapters/store"
	"github.com/layer-3/cerberus/adapters/tokenizer"
	"github.com/layer-3/cerberus/internal/config"
	"github.com/layer-3/cerberus/internal/rsasig"
	"github.com/layer-3/cerberus/service"
	transport "github.com/layer-3/cerberus/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis backs the temporary-token and challenge TTL store
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to parse Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// PostgreSQL backs accounts and durable sessions
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	accountStore, err := accounts.NewPostgresStore(ctx, db)
	if err != nil {
		logger.Error("failed to initialize account store", "error", err)
		os.Exit(1)
	}
	sessionStore, err := sessions.NewPostgresStore(ctx, db)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	// Watermill publishes auth events over Redis streams
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}

	kvStore := store.NewRedisStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)
	jwtTokenizer := tokenizer.NewJWTTokenizer(cfg.JWTSecret, cfg.JWTIssuer)
	passwordHasher := hasher.NewBcrypt()
	verifier := rsasig.NewVerifier()

	authService := service.NewAuthService(
		accountStore, kvStore, passwordHasher, verifier, jwtTokenizer, eventPub,
		logger, cfg.CredentialTTL,
	)
	sessionService := service.NewSessionService(
		accountStore, sessionStore, passwordHasher, eventPub,
		logger, cfg.SessionTTL,
	)

	sweeper := service.NewSweeper(sessionStore, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	router := transport.SetupRouter(authService, sessionService)

	logger.Info("starting server", "address", cfg.Address)
	if err := router.Run(cfg.Address); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
