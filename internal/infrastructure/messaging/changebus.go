// Package messaging implements the change bus: the publish/subscribe
// channel that propagates record store mutations to every live view. It
// provides an in-memory bus for same-process delivery and a Redis-backed
// bus that adds cross-view delivery on top of it.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gradehub/gradehub-core/internal/domain/shared"
)

// ErrBusClosed is returned when operations are attempted on a closed bus.
var ErrBusClosed = errors.New("messaging: change bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY CHANGE BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryChangeBus delivers changes to handlers in the same process.
// Delivery is synchronous and in publish order, which is what gives the bus
// its in-process ordering guarantee.
type InMemoryChangeBus struct {
	mu      sync.RWMutex
	subs    map[int]shared.ChangeHandler
	order   []int
	nextID  int
	closed  bool
	logger  *slog.Logger
	metrics *BusMetrics
}

// NewInMemoryChangeBus creates a new in-memory change bus.
func NewInMemoryChangeBus(logger *slog.Logger) *InMemoryChangeBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryChangeBus{
		subs:    make(map[int]shared.ChangeHandler),
		logger:  logger,
		metrics: &BusMetrics{},
	}
}

// Subscribe registers a handler. The returned unsubscribe function is
// idempotent and fully detaches the handler.
func (b *InMemoryChangeBus) Subscribe(handler shared.ChangeHandler) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = handler
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, sid := range b.order {
			if sid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers a change to all current subscribers, in subscription
// order, synchronously.
func (b *InMemoryChangeBus) Publish(_ context.Context, change shared.KeyChange) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]shared.ChangeHandler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	b.metrics.recordPublish(len(handlers))

	for _, h := range handlers {
		h(change)
	}
	return nil
}

// Close shuts down the bus and detaches all subscribers.
func (b *InMemoryChangeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.subs = make(map[int]shared.ChangeHandler)
	b.order = nil
	return nil
}

// Metrics returns the bus counters.
func (b *InMemoryChangeBus) Metrics() BusMetricsSnapshot {
	return b.metrics.snapshot()
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS CHANGE BUS (cross-view delivery)
// ══════════════════════════════════════════════════════════════════════════════

// RedisClient is the transport interface the Redis bus needs. It exists so
// tests can substitute a fake without a running Redis.
type RedisClient interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
	Close() error
}

// Message is one message received from the transport.
type Message struct {
	Payload string
	Err     error
}

// RedisChangeBusConfig contains configuration for RedisChangeBus.
type RedisChangeBusConfig struct {
	// Client is the transport to use.
	Client RedisClient

	// Channel is the pub/sub channel (default: "gradehub:changes").
	Channel string

	// ViewID uniquely identifies this view. Used to discard changes this
	// view published itself: the writer already processed its own write.
	ViewID string

	// Logger for structured logging.
	Logger *slog.Logger
}

// RedisChangeBus layers cross-view delivery over an in-memory bus. Local
// subscribers see local publishes synchronously and in order; changes from
// other views arrive asynchronously with no ordering guarantee beyond the
// storage write order.
type RedisChangeBus struct {
	client  RedisClient
	local   *InMemoryChangeBus
	channel string
	viewID  string
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// changeEnvelope is the wire format on the Redis channel.
type changeEnvelope struct {
	ViewID string    `json:"view_id"`
	Key    string    `json:"key"`
	Value  []byte    `json:"value"`
	At     time.Time `json:"at"`
}

// NewRedisChangeBus creates a cross-view change bus and starts its
// subscription listener.
func NewRedisChangeBus(cfg RedisChangeBusConfig) (*RedisChangeBus, error) {
	if cfg.Client == nil {
		return nil, errors.New("messaging: redis client is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = "gradehub:changes"
	}
	if cfg.ViewID == "" {
		cfg.ViewID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisChangeBus{
		client:  cfg.Client,
		local:   NewInMemoryChangeBus(cfg.Logger),
		channel: cfg.Channel,
		viewID:  cfg.ViewID,
		logger:  cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	messages, err := bus.client.Subscribe(ctx, bus.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("messaging: start subscriber: %w", err)
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		bus.subscriptionLoop(messages)
	}()

	return bus, nil
}

// ViewID returns the identifier this bus stamps on outgoing changes.
func (b *RedisChangeBus) ViewID() string {
	return b.viewID
}

// Subscribe registers a handler on both delivery paths. The unsubscribe
// function detaches it from both.
func (b *RedisChangeBus) Subscribe(handler shared.ChangeHandler) func() {
	return b.local.Subscribe(handler)
}

// Publish sends a change to other views over Redis and to local handlers.
// A Redis failure degrades to local-only delivery; the change is already
// durably stored, so losing cross-view propagation is survivable.
func (b *RedisChangeBus) Publish(ctx context.Context, change shared.KeyChange) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	b.mu.RUnlock()

	change.Origin = b.viewID

	data, err := json.Marshal(changeEnvelope{
		ViewID: b.viewID,
		Key:    change.Key,
		Value:  change.Value,
		At:     change.At,
	})
	if err != nil {
		return fmt.Errorf("messaging: marshal change: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, string(data)); err != nil {
		b.logger.Error("failed to publish change to redis", "key", change.Key, "error", err)
	}

	return b.local.Publish(ctx, change)
}

// subscriptionLoop processes envelopes from other views.
func (b *RedisChangeBus) subscriptionLoop(messages <-chan Message) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.logger.Error("redis subscription error", "error", msg.Err)
				continue
			}
			b.handleRemote(msg)
		}
	}
}

func (b *RedisChangeBus) handleRemote(msg Message) {
	var env changeEnvelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Error("failed to unmarshal change envelope", "error", err)
		return
	}

	// Changes from this view were already delivered locally at publish
	// time; re-delivering would make the writer double-process its own
	// write.
	if env.ViewID == b.viewID {
		return
	}

	change := shared.KeyChange{
		Key:    env.Key,
		Value:  env.Value,
		Origin: env.ViewID,
		At:     env.At,
	}
	if err := b.local.Publish(b.ctx, change); err != nil {
		b.logger.Error("failed to deliver remote change", "key", env.Key, "error", err)
	}
}

// Close detaches both delivery paths and stops the subscription listener.
func (b *RedisChangeBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	if err := b.local.Close(); err != nil {
		b.logger.Error("failed to close local bus", "error", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GO-REDIS ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// GoRedisClient adapts a *redis.Client to the RedisClient interface.
type GoRedisClient struct {
	client *redis.Client
}

// NewGoRedisClient wraps an existing go-redis client.
func NewGoRedisClient(client *redis.Client) *GoRedisClient {
	return &GoRedisClient{client: client}
}

// Publish sends a payload on a channel.
func (c *GoRedisClient) Publish(ctx context.Context, channel, payload string) error {
	return c.client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a subscription and converts it to a Message channel.
// The forwarding goroutine exits when ctx is cancelled.
func (c *GoRedisClient) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- Message{Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the underlying client.
func (c *GoRedisClient) Close() error {
	return c.client.Close()
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// BusMetrics tracks change bus counters.
type BusMetrics struct {
	mu        sync.Mutex
	published int64
	delivered int64
}

func (m *BusMetrics) recordPublish(handlers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published++
	m.delivered += int64(handlers)
}

func (m *BusMetrics) snapshot() BusMetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return BusMetricsSnapshot{Published: m.published, Delivered: m.delivered}
}

// BusMetricsSnapshot is a point-in-time copy of the counters.
type BusMetricsSnapshot struct {
	Published int64
	Delivered int64
}
