package scan

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// datagramProber classifies UDP ports by firing an empty datagram and
// watching what comes back. The socket is bound once and reused for every
// port the owning worker scans.
//
// Most UDP services ignore empty payloads, so "filtered" dominates and says
// nothing certain about the remote service. Only a reply (open) or an ICMP
// port-unreachable surfaced as a reset-class error (closed) are conclusive.
type datagramProber struct {
	timeout time.Duration
	conn    *net.UDPConn
}

// bindDatagramSocket binds a local ephemeral UDP socket of the same address
// family as the target.
func bindDatagramSocket(addr net.IP) (*net.UDPConn, error) {
	network := "udp6"
	if addr.To4() != nil {
		network = "udp4"
	}
	return net.ListenUDP(network, nil)
}

func (p *datagramProber) probe(ctx context.Context, addr net.IP, port uint16) (PortState, error) {
	raddr := &net.UDPAddr{IP: addr, Port: int(port)}

	if _, err := p.conn.WriteToUDP(nil, raddr); err != nil {
		if isResetClass(err) {
			return PortClosed, nil
		}
		return PortUnknown, err
	}

	if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return PortUnknown, err
	}

	buf := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			return PortUnknown, ctx.Err()
		default:
		}

		_, src, err := p.conn.ReadFromUDP(buf)
		if err == nil {
			if src.Port == int(port) && src.IP.Equal(addr) {
				return PortOpen, nil
			}
			// stray datagram, e.g. a late reply to an earlier probe
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return PortFiltered, nil
		}
		if isResetClass(err) {
			return PortClosed, nil
		}
		return PortFiltered, nil
	}
}

func (p *datagramProber) close() {
	_ = p.conn.Close()
}

// isResetClass reports whether err is how the stack surfaces an ICMP
// port-unreachable (or an outright refusal) on a UDP socket.
func isResetClass(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
