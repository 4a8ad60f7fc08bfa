package scan

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loopback = net.ParseIP("127.0.0.1")

func TestScanResultsSortedByPort(t *testing.T) {
	r, err := NewPortRange(32100, 32199)
	require.NoError(t, err)

	engine := NewEngine(ProtocolTCP, 250*time.Millisecond, WithWorkerCap(7))
	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	require.Len(t, report.Results, r.Size())
	for i := 1; i < len(report.Results); i++ {
		assert.Less(t, report.Results[i-1].Port, report.Results[i].Port,
			"results must be strictly ascending by port regardless of worker completion order")
	}
	for _, result := range report.Results {
		assert.Equal(t, ProtocolTCP, result.Protocol)
	}
	assert.Greater(t, report.Elapsed, time.Duration(0))
}

func TestScanTCPOpenPort(t *testing.T) {
	_, port := startTCPListener(t)

	r, err := NewPortRange(port, port)
	require.NoError(t, err)

	engine := NewEngine(ProtocolTCP, time.Second)
	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, Result{Protocol: ProtocolTCP, Port: port, State: PortOpen}, report.Results[0])
}

func TestScanTCPClosedPort(t *testing.T) {
	free, err := freeport.GetFreePort()
	require.NoError(t, err)
	port := uint16(free)

	r, err := NewPortRange(port, port)
	require.NoError(t, err)

	engine := NewEngine(ProtocolTCP, time.Second)
	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, PortClosed, report.Results[0].State)
}

func TestScanUDPOpenPort(t *testing.T) {
	port := startUDPResponder(t)

	r, err := NewPortRange(port, port)
	require.NoError(t, err)

	engine := NewEngine(ProtocolUDP, time.Second)
	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, Result{Protocol: ProtocolUDP, Port: port, State: PortOpen}, report.Results[0])
}

func TestScanUDPSilentPort(t *testing.T) {
	port := startSilentUDPListener(t)

	r, err := NewPortRange(port, port)
	require.NoError(t, err)

	engine := NewEngine(ProtocolUDP, 200*time.Millisecond)
	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, PortFiltered, report.Results[0].State)
}

func TestScanIdempotent(t *testing.T) {
	r, err := NewPortRange(32300, 32339)
	require.NoError(t, err)

	engine := NewEngine(ProtocolTCP, 250*time.Millisecond)

	first, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)
	second, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
}

func TestScanReportsProgress(t *testing.T) {
	r, err := NewPortRange(32400, 32449)
	require.NoError(t, err)

	var probed int64
	engine := NewEngine(ProtocolTCP, 250*time.Millisecond, WithProgress(func(n int) {
		atomic.AddInt64(&probed, int64(n))
	}))

	report, err := engine.Scan(context.Background(), loopback, r)
	require.NoError(t, err)

	assert.Equal(t, int64(r.Size()), atomic.LoadInt64(&probed))
	assert.Len(t, report.Results, r.Size())
}

func TestScanUnsupportedProtocol(t *testing.T) {
	engine := NewEngine(Protocol(99), time.Second)
	_, err := engine.Scan(context.Background(), loopback, DefaultPortRange())
	require.Error(t, err)
}
