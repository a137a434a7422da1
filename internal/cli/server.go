package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"vocab-sprint/internal/app"
	"vocab-sprint/internal/auth"
	"vocab-sprint/internal/config"
	"vocab-sprint/internal/infra/datamuse"
	"vocab-sprint/internal/infra/gemini"
	"vocab-sprint/internal/infra/memory"
	pgloader "vocab-sprint/internal/infra/postgres"
	"vocab-sprint/internal/infra/rabbitmq"
	infraredis "vocab-sprint/internal/infra/redis"
	"vocab-sprint/internal/scoring"
	transport "vocab-sprint/internal/transport/http"
	"vocab-sprint/internal/words"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if cfg.Gemini.APIKey == "" {
		log.Printf("no gemini api key configured, submissions will fail")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 45*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var fallback words.FallbackLoader = memory.NewStaticFallbackLoader(nil)
	if pool != nil {
		fallback = pgloader.NewFallbackLoader(pool)
	}

	lookupTimeout := config.TTLDuration(cfg.Words.Timeout, 10*time.Second)
	var lookup words.Lookup = datamuse.NewClient(cfg.Words.BaseURL, lookupTimeout)
	cacheTTL := config.TTLDuration(cfg.Words.CacheTTL, time.Hour)
	if redisClient != nil {
		lookup = infraredis.NewCandidateCache(redisClient, lookup, cacheTTL)
	} else {
		lookup = memory.NewCandidateCache(lookup, cacheTTL)
	}
	query := words.DefaultQuery()
	if cfg.Words.Pattern != "" {
		query.Pattern = cfg.Words.Pattern
	}
	if cfg.Words.Max > 0 {
		query.Max = cfg.Words.Max
	}
	source := words.NewSource(lookup, fallback, query, lookupTimeout)

	model := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey)
	submitter := scoring.NewSubmitter(model, config.TTLDuration(cfg.Gemini.Timeout, scoring.DefaultTimeout))

	var store app.SessionRepository
	var revocations auth.Revocations
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
		revocations = infraredis.NewRevocationStore(redisClient)
	} else {
		store = memory.NewSessionStore()
		revocations = memory.NewRevocationStore()
	}

	var outcomes app.OutcomePublisher = memory.NewOutcomeLog()
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer publisher.Close()
		outcomes = publisher
	}

	game := app.NewGameService(store, source, submitter, outcomes, app.Options{
		RoundBudget: cfg.Round.Seconds,
		WordBudget:  cfg.Round.WordSeconds,
	})
	identity := auth.NewService(
		auth.NewDirectory(),
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL)),
		revocations,
	)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(game, identity),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting vocab sprint on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	game.Shutdown(shutdownCtx)
	return server.Shutdown(shutdownCtx)
}
