package scan

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"
)

// connectProber classifies TCP ports by attempting a full connect handshake.
// No data is exchanged; an established connection is closed immediately.
type connectProber struct {
	timeout time.Duration
}

func (p *connectProber) probe(ctx context.Context, addr net.IP, port uint16) (PortState, error) {
	dialer := net.Dialer{Timeout: p.timeout}
	target := net.JoinHostPort(addr.String(), strconv.Itoa(int(port)))

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err == nil {
		_ = conn.Close()
		return PortOpen, nil
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		// synchronous RST - nothing is listening
		return PortClosed, nil
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		// local problem with the target address, not a statement about the port
		return PortUnknown, err
	}
	// timeout, host unreachable, or anything else inconclusive
	return PortFiltered, nil
}

func (p *connectProber) close() {}
