package eggguardian

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelTransportClosed is returned when a channel transport is used after Close.
var ErrChannelTransportClosed = errors.New("eggguardian: channel transport closed")

// Published is one telemetry message handed to a channel transport.
type Published struct {
	Topic   string
	Payload []byte
}

// PublishFunc receives every encoded telemetry message routed to a callback transport.
type PublishFunc func(topic string, payload []byte) error

// NewCallbackTransport adapts a PublishFunc into a full Transport implementation
// so callers can plug arbitrary functions without defining structs. The
// transport always reports connected, which keeps samples on the fresh publish
// path instead of the offline buffer.
func NewCallbackTransport(name string, fn PublishFunc) Transport {
	if name == "" {
		name = "callback"
	}
	return &callbackTransport{name: name, fn: fn}
}

// NewChannelTransport exposes published telemetry via a channel. Closing the
// transport closes the channel, so consumers can range over it until shutdown.
func NewChannelTransport(name string, buffer int) (Transport, <-chan Published) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	t := &channelTransport{
		name:   name,
		ch:     make(chan Published, buffer),
		closed: make(chan struct{}),
	}
	return t, t.ch
}

type callbackTransport struct {
	name string
	fn   PublishFunc
}

func (t *callbackTransport) IsConnected() bool { return true }

func (t *callbackTransport) Connect(ctx context.Context) error { return nil }

func (t *callbackTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	if t.fn == nil {
		return fmt.Errorf("callback transport %q: nil handler", t.name)
	}
	return t.fn(topic, payload)
}

func (t *callbackTransport) Close() {}

type channelTransport struct {
	name   string
	ch     chan Published
	closed chan struct{}
	once   sync.Once
}

func (t *channelTransport) IsConnected() bool {
	select {
	case <-t.closed:
		return false
	default:
		return true
	}
}

func (t *channelTransport) Connect(ctx context.Context) error {
	select {
	case <-t.closed:
		return ErrChannelTransportClosed
	default:
		return nil
	}
}

func (t *channelTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	select {
	case <-t.closed:
		return ErrChannelTransportClosed
	default:
	}

	msg := Published{Topic: topic, Payload: append([]byte(nil), payload...)}

	select {
	case <-t.closed:
		return ErrChannelTransportClosed
	case t.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *channelTransport) Close() {
	t.once.Do(func() {
		close(t.closed)
		close(t.ch)
	})
}
