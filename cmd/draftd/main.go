package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/neerajsa/fantasy-football-assistant/internal/config"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/outbox"
	"github.com/neerajsa/fantasy-football-assistant/internal/draft/repository"
	"github.com/neerajsa/fantasy-football-assistant/internal/players"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open database pool")
	}
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	log.Info().
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("database", cfg.DB.Database).
		Msg("connected to database")

	repo := repository.NewPostgres(db)
	pool := players.NewPostgresPool(db)
	app := draft.NewApp(repo, pool)

	sessions, err := app.ListSessions(ctx, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("list draft sessions")
	}
	log.Info().Int("recent_sessions", len(sessions)).Msg("draft engine ready")

	var publisher outbox.EventPublisher
	if cfg.NATS.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		publisher, err = outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create JetStream publisher")
		}
	} else {
		publisher = outbox.NewLogPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}()

	workerCfg := outbox.DefaultConfig()
	if cfg.Draft.OutboxPollSeconds > 0 {
		workerCfg.PollInterval = cfg.Draft.PollInterval()
	}
	if cfg.Draft.OutboxBatchSize > 0 {
		workerCfg.BatchSize = cfg.Draft.OutboxBatchSize
	}
	worker := outbox.NewWorker(repo, publisher, workerCfg, clockwork.NewRealClock())
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start outbox worker")
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		if err := worker.Stop(); err != nil {
			log.Error().Err(err).Msg("stop outbox worker")
		}
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("graceful shutdown complete")
	case <-shutdownCtx.Done():
		log.Warn().Msg("shutdown timed out")
	}
}
