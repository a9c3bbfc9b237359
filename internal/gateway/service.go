// Package gateway is the change-propagation layer: it observes every
// record-store mutation and fans the full current value of the changed
// path out to all connected clients, locally via store subscriptions
// and across instances via the JetStream change feed.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auction"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

// Service composes the websocket fan-out, the change-event consumer
// and the HTTP API.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	api               *API
}

// Config holds configuration for the gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	ConsumerConfig   ConsumerConfig
	AdminKey         string
	Origin           string
}

// NewService wires the gateway against the store and the auction app.
func NewService(cfg Config, st *store.Store, auctionApp *auction.App, tournament *auctionconfig.Config) (*Service, error) {
	connectionManager := NewConnectionManager(cfg.ConnectionConfig)
	wsHandler := NewWebSocketHandler(connectionManager, st)

	eventConsumer, err := NewEventConsumer(st, cfg.ConsumerConfig, cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	api := NewAPI(st, auctionApp, tournament, cfg.AdminKey)

	// Every local or remote mutation ends up notifying these
	// subscriptions, which is the only source of websocket traffic.
	for _, path := range []string{store.PathPlayers, store.PathConfig, store.PathCurrentOffer, store.PathActivityLog} {
		st.Subscribe(path, func(path string, value any) {
			connectionManager.Broadcast(Snapshot{Path: path, Value: value})
		})
	}

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
		eventConsumer:     eventConsumer,
		api:               api,
	}, nil
}

// Start runs the gateway until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("auction gateway service shutting down")
	return s.Stop()
}

// Stop gracefully shuts down the gateway service.
func (s *Service) Stop() error {
	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	log.Info().Msg("auction gateway service stopped")
	return nil
}

// RegisterRoutes registers websocket and API routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.api.RegisterRoutes(mux)
	log.Info().Msg("auction gateway routes registered")
}

// ConnectionCount reports the number of connected clients.
func (s *Service) ConnectionCount() int {
	return s.connectionManager.ConnectionCount()
}
