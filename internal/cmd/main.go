package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auction"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/dbconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/gateway"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tournament configuration: teams, categories, purse defaults
	tournament, err := loadTournament()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tournament config")
	}

	adminKey := os.Getenv("ADMIN_KEY")
	if adminKey == "" {
		log.Fatal().Msg("ADMIN_KEY environment variable is required")
	}

	// Connect to database
	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	repo := store.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	// Every running instance gets its own origin id so the consumer
	// can tell its own events apart from remote ones.
	origin := uuid.New().String()

	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	jsCfg := gateway.DefaultJetStreamConfig()
	jsCfg.URL = natsURL

	publisher, err := gateway.NewJetStreamPublisher(jsCfg, origin)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create jetstream publisher")
	}
	defer publisher.Close()

	// The store writes locally first, then to the repository and the
	// event stream.
	st := store.New(clockwork.NewRealClock(), repo, publisher)

	players, cfg, offerID, activity, err := repo.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load persisted state")
	}
	if cfg == nil {
		c := tournament.Tournament
		cfg = &c
	}
	st.Hydrate(players, cfg, offerID, activity)

	auctionApp := auction.NewApp(st, tournament.Teams, clockwork.NewRealClock())

	// The consumer name is derived from the origin id inside the
	// gateway; sharing one name across instances would load-balance
	// the change stream instead of fanning it out.
	consumerCfg := gateway.DefaultConsumerConfig()
	consumerCfg.URL = natsURL

	gatewayService, err := gateway.NewService(gateway.Config{
		ConnectionConfig: gateway.DefaultConnectionConfig(),
		ConsumerConfig:   consumerCfg,
		AdminKey:         adminKey,
		Origin:           origin,
	}, st, auctionApp, tournament)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	server := setupServer(gatewayService)

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", natsURL).
		Str("addr", server.Addr).
		Int("players", len(players)).
		Msg("starting auction server")

	go func() {
		if err := gatewayService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	time.Sleep(1 * time.Second)

	log.Info().Msg("auction server shutdown complete")
}

func loadTournament() (*auctionconfig.Config, error) {
	path := os.Getenv("TOURNAMENT_CONFIG")
	if path == "" {
		return auctionconfig.Default(), nil
	}
	return auctionconfig.Load(path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
