// Package connectivity reports whether the device currently has a usable
// network path to the ingestion service.
package connectivity

import (
	"context"
	"net"
	"time"
)

// Probe reports network reachability.
type Probe interface {
	Reachable(ctx context.Context) bool
}

// DialProbe checks reachability by opening a TCP connection to a fixed
// host:port, normally the ingestion service itself.
type DialProbe struct {
	address string
	timeout time.Duration
}

// NewDialProbe creates a probe against the given host:port address.
func NewDialProbe(address string, timeout time.Duration) *DialProbe {
	return &DialProbe{
		address: address,
		timeout: timeout,
	}
}

// Reachable returns true when a TCP connection can be established within the
// probe timeout.
func (p *DialProbe) Reachable(ctx context.Context) bool {
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
