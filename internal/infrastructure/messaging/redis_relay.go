package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS BROADCAST RELAY
// ══════════════════════════════════════════════════════════════════════════════

// RelayChannel is the default Redis Pub/Sub channel for leaderboard entries.
const RelayChannel = "brainquest:leaderboard:entries"

// relayEnvelope carries an entry over the wire with the publishing instance id
// so an instance can skip its own publishes.
type relayEnvelope struct {
	InstanceID string            `json:"instance_id"`
	Entry      leaderboard.Entry `json:"entry"`
}

// RedisRelay connects independently-deployed server instances: an entry
// published on one instance is relayed over Redis Pub/Sub and fanned out to
// the other instances' local viewers.
//
// The relay inherits the broadcast channel's best-effort contract: Redis
// Pub/Sub has no replay, so an instance that was disconnected simply misses
// the entries published meanwhile.
type RedisRelay struct {
	client     *redis.Client
	local      *BroadcastHub
	channel    string
	instanceID string
	logger     *slog.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
}

// RedisRelayConfig contains configuration for the relay.
type RedisRelayConfig struct {
	// Client is the Redis client to use.
	Client *redis.Client

	// Local is the hub receiving remote entries.
	Local *BroadcastHub

	// Channel is the Pub/Sub channel name (default: RelayChannel).
	Channel string

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewRedisRelay creates the relay and starts its subscriber loop.
func NewRedisRelay(config RedisRelayConfig) (*RedisRelay, error) {
	if config.Client == nil {
		return nil, errors.New("messaging: redis client is required")
	}
	if config.Local == nil {
		return nil, errors.New("messaging: local hub is required")
	}
	if config.Channel == "" {
		config.Channel = RelayChannel
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &RedisRelay{
		client:     config.Client,
		local:      config.Local,
		channel:    config.Channel,
		instanceID: uuid.NewString(),
		logger:     config.Logger,
		cancel:     cancel,
	}

	sub := r.client.Subscribe(ctx, r.channel)

	r.wg.Add(1)
	go r.receive(ctx, sub)

	return r, nil
}

// Publish relays the entry to the other instances and fans it out locally.
// Relay failures are logged and dropped: gameplay is never blocked on the
// broadcast path.
func (r *RedisRelay) Publish(entry leaderboard.Entry) {
	r.local.Publish(entry)

	payload, err := json.Marshal(relayEnvelope{InstanceID: r.instanceID, Entry: entry})
	if err != nil {
		r.logger.Error("relay marshal failed", "owner_id", entry.OwnerID, "error", err)
		return
	}

	if err := r.client.Publish(context.Background(), r.channel, payload).Err(); err != nil {
		r.logger.Warn("relay publish dropped", "owner_id", entry.OwnerID, "error", err)
	}
}

// Subscribe delegates to the local hub.
func (r *RedisRelay) Subscribe(viewerID string) (<-chan leaderboard.Entry, error) {
	return r.local.Subscribe(viewerID)
}

// Unsubscribe delegates to the local hub.
func (r *RedisRelay) Unsubscribe(viewerID string) {
	r.local.Unsubscribe(viewerID)
}

// receive pumps remote entries into the local hub.
func (r *RedisRelay) receive(ctx context.Context, sub *redis.PubSub) {
	defer r.wg.Done()
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warn("relay message discarded", "error", err)
				continue
			}
			if env.InstanceID == r.instanceID {
				continue // own publish, already fanned out locally
			}

			r.local.Publish(env.Entry)
		}
	}
}

// Close stops the subscriber loop and closes the local hub.
func (r *RedisRelay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.local.Close()
}
