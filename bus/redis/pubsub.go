package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Message is the message type returned by PubSub.Subscribe.
type Message struct {
	Channel string
	Payload string
}

// PubSub wraps the Redis PubSub client.
type PubSub struct {
	client *goredis.Client
}

// NewPubSub creates a Redis-backed PubSub and checks the server answers.
func NewPubSub(cfg Config) (*PubSub, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &PubSub{client: client}, nil
}

func (r *PubSub) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

// Subscribe waits for the subscription to be confirmed before returning, so a message
// published right after Subscribe is not lost.
func (r *PubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ps := r.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}
	ch := make(chan *Message, 256)

	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			ch <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()

	cancel := func() {
		_ = ps.Close()
	}
	return ch, cancel, nil
}

func (r *PubSub) Close() error { return r.client.Close() }
