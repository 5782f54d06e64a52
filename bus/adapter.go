package bus

import (
	"context"
	"fmt"

	"github.com/kasuganosora/enemyai/bus/local"
	busredis "github.com/kasuganosora/enemyai/bus/redis"
	"github.com/kasuganosora/enemyai/config"
)

// ChannelCombat carries JSON-encoded world.CombatEvent values.
const ChannelCombat = "combat"

const defaultBuf = 256

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
	Close() error
}

// New returns a PubSub backed by Redis if RedisAddr is set,
// otherwise an in-process fan-out bus.
func New(cfg config.BusConfig) (PubSub, error) {
	bufSize := cfg.LocalBuf
	if bufSize <= 0 {
		bufSize = defaultBuf
	}
	if cfg.RedisAddr != "" {
		rps, err := busredis.NewPubSub(busredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("bus: connect redis %s: %w", cfg.RedisAddr, err)
		}
		return &redisAdapter{ps: rps, buf: bufSize}, nil
	}
	return &localAdapter{ps: local.NewPubSub(bufSize), buf: bufSize}, nil
}

// ---- adapters to bridge sub-package message types to bus.Message ----

type localAdapter struct {
	ps  *local.PubSub
	buf int
}

func (a *localAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *localAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, fmt.Errorf("bus: subscribe: %w", err)
	}
	out := make(chan *Message, a.buf)
	go func() {
		defer close(out)
		for msg := range in {
			out <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, cancel, nil
}

func (a *localAdapter) Close() error { return a.ps.Close() }

type redisAdapter struct {
	ps  *busredis.PubSub
	buf int
}

func (a *redisAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *redisAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, fmt.Errorf("bus: subscribe: %w", err)
	}
	out := make(chan *Message, a.buf)
	go func() {
		defer close(out)
		for msg := range in {
			out <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	return out, cancel, nil
}

func (a *redisAdapter) Close() error { return a.ps.Close() }
