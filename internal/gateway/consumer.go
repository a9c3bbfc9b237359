package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

// ConsumerConfig holds configuration for the JetStream consumer.
type ConsumerConfig struct {
	URL               string
	StreamName        string
	ConsumerPrefix    string
	SubjectFilter     string
	MaxDeliver        int
	AckWait           time.Duration
	MaxAckPending     int
	MaxReconnects     int
	ReconnectWait     time.Duration
	InactiveThreshold time.Duration
}

// DefaultConsumerConfig returns default consumer configuration.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:               nats.DefaultURL,
		StreamName:        "AUCTION_EVENTS",
		ConsumerPrefix:    "auction-gateway",
		SubjectFilter:     "auction.events.>",
		MaxDeliver:        5,
		AckWait:           30 * time.Second,
		MaxAckPending:     100,
		MaxReconnects:     -1,
		ReconnectWait:     2 * time.Second,
		InactiveThreshold: 10 * time.Minute,
	}
}

// EventConsumer applies change events from the stream to the local
// store, which in turn fans the new snapshot out to subscribers.
// Events published by this instance are acknowledged and skipped;
// they were already applied on the write path.
//
// Each instance binds its own consumer, named after its origin id.
// A name shared across instances would make JetStream load-balance the
// stream between them, and an event delivered to one instance would
// never reach the others' stores. InactiveThreshold lets consumers of
// dead instances expire on the server.
type EventConsumer struct {
	st       *store.Store
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   ConsumerConfig
	origin   string
	name     string
}

// consumerNameFor derives the per-instance consumer name.
func consumerNameFor(prefix, origin string) string {
	return fmt.Sprintf("%s-%s", prefix, origin)
}

// NewEventConsumer connects to NATS and ensures this instance's
// consumer exists.
func NewEventConsumer(st *store.Store, config ConsumerConfig, origin string) (*EventConsumer, error) {
	nc, err := nats.Connect(config.URL, natsOptions(config.MaxReconnects, config.ReconnectWait)...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ec := &EventConsumer{
		st:     st,
		nc:     nc,
		js:     js,
		config: config,
		origin: origin,
		name:   consumerNameFor(config.ConsumerPrefix, origin),
	}

	if err := ec.ensureConsumer(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	return ec, nil
}

func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := ec.js.Stream(ctx, ec.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	// Named but not durable: the server drops the consumer once this
	// instance has been gone for InactiveThreshold.
	consumerConfig := jetstream.ConsumerConfig{
		Name:              ec.name,
		Description:       "Auction gateway change-event consumer",
		FilterSubject:     ec.config.SubjectFilter,
		DeliverPolicy:     jetstream.DeliverLastPerSubjectPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		MaxDeliver:        ec.config.MaxDeliver,
		AckWait:           ec.config.AckWait,
		MaxAckPending:     ec.config.MaxAckPending,
		ReplayPolicy:      jetstream.ReplayInstantPolicy,
		InactiveThreshold: ec.config.InactiveThreshold,
	}

	consumer, err := stream.Consumer(ctx, ec.name)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().
			Str("consumer", ec.name).
			Str("stream", ec.config.StreamName).
			Msg("created JetStream consumer")
	}

	ec.consumer = consumer
	return nil
}

// Start consumes events until the context is cancelled.
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("consumer", ec.name).
		Str("stream", ec.config.StreamName).
		Msg("starting change-event consumer")

	messageCh := make(chan jetstream.Msg, 100)

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(msg); err != nil {
				log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
				if nakErr := msg.Nak(); nakErr != nil {
					log.Error().Err(nakErr).Msg("failed to NAK message")
				}
			} else if ackErr := msg.Ack(); ackErr != nil {
				log.Error().Err(ackErr).Msg("failed to ACK message")
			}
		}
	}
}

func (ec *EventConsumer) processMessage(msg jetstream.Msg) error {
	var event ChangeEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("unmarshal change event: %w", err)
	}

	if event.Origin == ec.origin {
		// Our own write, already applied optimistically.
		return nil
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("path", event.Path).
		Str("op", string(event.Op)).
		Msg("applying remote change")

	switch event.Op {
	case OpPut:
		return ec.st.ApplyRemote(event.Path, event.Value)
	case OpDelete:
		return ec.st.ApplyRemoteDelete(event.Path)
	default:
		return fmt.Errorf("unknown op %q", event.Op)
	}
}

// Stop closes the NATS connection.
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
