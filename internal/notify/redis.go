package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultChannel = "task-tracker:events"

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	MinIdleConns   int
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Channel        string
	PublishTimeout time.Duration
}

func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:           "localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		DialTimeout:    5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
		Channel:        DefaultChannel,
		PublishTimeout: 2 * time.Second,
	}
}

func NewRedisClient(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		// Relayed events are fire-and-forget; a failed command is not resent.
		MaxRetries:   -1,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})
}

type envelope struct {
	Origin  string          `json:"origin"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBroadcaster delivers events to the local hub right away and relays
// them through a Redis channel so hubs in other processes see them too.
type RedisBroadcaster struct {
	client  *redis.Client
	hub     *Hub
	channel string
	timeout time.Duration
	origin  string
	logger  zerolog.Logger
	pubsub  *redis.PubSub
}

func NewRedisBroadcaster(client *redis.Client, hub *Hub, config *RedisConfig, logger zerolog.Logger) *RedisBroadcaster {
	if config == nil {
		config = DefaultRedisConfig()
	}
	channel := config.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	timeout := config.PublishTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &RedisBroadcaster{
		client:  client,
		hub:     hub,
		channel: channel,
		timeout: timeout,
		origin:  uuid.Must(uuid.NewV4()).String(),
		logger:  logger.With().Str("component", "notify_redis").Logger(),
	}
}

func (b *RedisBroadcaster) Publish(event Event) {
	b.hub.Publish(event)

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		b.hub.Metrics().RecordRelayError()
		b.logger.Error().Err(err).Str("event", event.Type).Msg("failed to encode event payload")
		return
	}
	data, err := json.Marshal(envelope{Origin: b.origin, Type: event.Type, Payload: payload})
	if err != nil {
		b.hub.Metrics().RecordRelayError()
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
			b.hub.Metrics().RecordRelayError()
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to relay event")
		}
	}()
}

// Start subscribes to the relay channel and returns once Redis has confirmed
// the subscription. Events from other processes are then fed into the hub
// until ctx is done or Close is called.
func (b *RedisBroadcaster) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.pubsub = pubsub

	go b.relay(ctx, pubsub.Channel())
	return nil
}

func (b *RedisBroadcaster) relay(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.hub.Metrics().RecordRelayError()
				b.logger.Warn().Err(err).Msg("discarding malformed relayed event")
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Publish(Event{Type: env.Type, Payload: env.Payload})
		}
	}
}

func (b *RedisBroadcaster) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroadcaster) Close() error {
	if b.pubsub == nil {
		return nil
	}
	err := b.pubsub.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
