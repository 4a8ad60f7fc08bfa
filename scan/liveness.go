package scan

import (
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"
)

// livenessPort is probed by HostUp. Any TCP response from the host settles
// the question, so a port that is usually closed works as well as an open
// one - the RST still proves a stack is there.
const livenessPort = 80

// HostUp reports whether the target answered anything on the wire within the
// timeout, along with the observed latency. A completed handshake or an
// active refusal both count as up; only silence is inconclusive.
func HostUp(addr net.IP, timeout time.Duration) (time.Duration, bool) {
	target := net.JoinHostPort(addr.String(), strconv.Itoa(livenessPort))

	start := time.Now()
	conn, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return time.Since(start), true
		}
		return 0, false
	}
	_ = conn.Close()
	return time.Since(start), true
}
