package ports

import "context"

// Transport delivers encoded telemetry to the broker. Connect and Publish are
// single attempts; retry policy belongs to the connection tracker, not here.
type Transport interface {
	IsConnected() bool
	Connect(ctx context.Context) error
	Publish(ctx context.Context, topic string, payload []byte) error
	Close()
}

// NetworkProbe answers whether the network path to the broker looks usable,
// without opening a broker session.
type NetworkProbe interface {
	Reachable(ctx context.Context) bool
}
