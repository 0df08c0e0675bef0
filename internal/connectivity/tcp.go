package connectivity

import (
	"context"
	"net"
	"time"
)

// TCPProbe confirms connectivity by dialing a host:port. A completed
// handshake counts as connected; any dial error counts as offline.
type TCPProbe struct {
	name    string
	addr    string
	timeout time.Duration
}

// NewTCPProbe builds a TCP connectivity probe for addr ("host:port"). A
// zero timeout falls back to the package default.
func NewTCPProbe(name, addr string, timeout time.Duration) *TCPProbe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &TCPProbe{name: name, addr: addr, timeout: timeout}
}

// Name implements Probe.
func (p *TCPProbe) Name() string { return p.name }

// Check implements Probe.
func (p *TCPProbe) Check(ctx context.Context) (bool, error) {
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return false, nil
	}
	_ = conn.Close()
	return true, nil
}
