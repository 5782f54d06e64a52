package local

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("bus: closed")

// Message is an in-process pub/sub message.
type Message struct {
	Channel string
	Payload string
}

type subscriber struct {
	ch   chan *Message
	once sync.Once
}

// PubSub is an in-process fan-out pub/sub implementation. A slow subscriber loses
// messages instead of blocking the publisher.
type PubSub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	bufSize     int
	closed      bool
}

// NewPubSub creates a new PubSub with the given per-subscriber buffer size.
func NewPubSub(bufSize int) *PubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &PubSub{
		subscribers: make(map[string][]*subscriber),
		bufSize:     bufSize,
	}
}

// Publish sends a message to all subscribers of the given channel.
func (ps *PubSub) Publish(_ context.Context, channel, message string) error {
	msg := &Message{Channel: channel, Payload: message}
	// hold the read lock while sending so cancel cannot close a channel under us
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, s := range ps.subscribers[channel] {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of messages for the given channels, and a cancel function.
// Cancel closes the channel and may be called more than once.
func (ps *PubSub) Subscribe(_ context.Context, channels ...string) (<-chan *Message, func(), error) {
	s := &subscriber{ch: make(chan *Message, ps.bufSize)}

	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		return nil, nil, ErrClosed
	}
	for _, c := range channels {
		ps.subscribers[c] = append(ps.subscribers[c], s)
	}
	ps.mu.Unlock()

	cancel := func() {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		for _, c := range channels {
			ps.removeLocked(c, s)
		}
		s.once.Do(func() { close(s.ch) })
	}
	return s.ch, cancel, nil
}

func (ps *PubSub) removeLocked(channel string, s *subscriber) {
	list := ps.subscribers[channel]
	for j, sub := range list {
		if sub == s {
			ps.subscribers[channel] = append(list[:j], list[j+1:]...)
			break
		}
	}
	if len(ps.subscribers[channel]) == 0 {
		delete(ps.subscribers, channel)
	}
}

// Close ends every subscription.
func (ps *PubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return nil
	}
	ps.closed = true
	for c, list := range ps.subscribers {
		for _, s := range list {
			s.once.Do(func() { close(s.ch) })
		}
		delete(ps.subscribers, c)
	}
	return nil
}

// Subscribers returns the number of live subscriptions on channel.
func (ps *PubSub) Subscribers(channel string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[channel])
}
