package transport

import (
	"context"
	"net"
	"time"

	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// TCPProbe answers reachability by completing a TCP handshake with the broker
// address. It deliberately opens no MQTT session: the probe stage of the
// connection ladder must stay cheaper than a broker connect.
type TCPProbe struct {
	Addr    string
	Timeout time.Duration
}

func (p *TCPProbe) Reachable(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

var _ ports.NetworkProbe = (*TCPProbe)(nil)
