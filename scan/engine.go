package scan

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// prober performs one bounded-time network operation against addr:port and
// maps the outcome to a PortState. A non-nil error means the port could not
// be probed at all and should be skipped, not classified.
type prober interface {
	probe(ctx context.Context, addr net.IP, port uint16) (PortState, error)
	close()
}

// Engine scans a port range against a single target. The probe kind is fixed
// by the protocol at construction time; a fresh pool of workers is spawned
// per Scan call and torn down when it returns.
type Engine struct {
	protocol  Protocol
	timeout   time.Duration
	workerCap int
	progress  func(n int)
}

type Option func(*Engine)

// WithWorkerCap overrides the worker cap derived from available parallelism.
func WithWorkerCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workerCap = n
		}
	}
}

// WithProgress registers a callback invoked once per probed port. It is
// called concurrently from all workers and must be safe for that.
func WithProgress(fn func(n int)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

func NewEngine(protocol Protocol, timeout time.Duration, opts ...Option) *Engine {
	e := &Engine{
		protocol:  protocol,
		timeout:   timeout,
		workerCap: DefaultWorkerCap(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan probes every port in r on addr and returns one result per port,
// sorted ascending by port number. It fails only on setup errors such as an
// unbindable local socket; per-port ambiguity always degrades to a state,
// and a crashed worker just leaves its ports out of the report.
func (e *Engine) Scan(ctx context.Context, addr net.IP, r PortRange) (*Report, error) {
	start := time.Now()

	chunks := partitionPorts(r.Ports(), e.workerCap)

	probers, err := e.buildProbers(addr, len(chunks))
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, p := range probers {
			p.close()
		}
	}()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		merged ResultSet
	)

	log.Debugf("scanning %s:%s with %d workers", addr, r, len(chunks))

	for i, chunk := range chunks {
		wg.Add(1)
		go func(id int, p prober, ports []uint16) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					log.Warnf("scan worker %d crashed, its ports are missing from the report: %v", id, rec)
				}
			}()

			local := make(ResultSet, 0, len(ports))
			for _, port := range ports {
				state, err := p.probe(ctx, addr, port)
				if e.progress != nil {
					e.progress(1)
				}
				if err != nil {
					log.Debugf("skipping %s port %d: %s", e.protocol, port, err)
					continue
				}
				local = append(local, Result{Protocol: e.protocol, Port: port, State: state})
			}

			// the lock guards only the append, never the probing above
			mu.Lock()
			merged = append(merged, local...)
			mu.Unlock()
		}(i, probers[i], chunk)
	}

	wg.Wait()
	merged.sortByPort()

	return &Report{Results: merged, Elapsed: time.Since(start)}, nil
}

// buildProbers constructs one prober per worker. UDP sockets are all bound
// up front so that a bind failure aborts the scan before any worker starts.
func (e *Engine) buildProbers(addr net.IP, n int) ([]prober, error) {
	probers := make([]prober, 0, n)

	switch e.protocol {
	case ProtocolTCP:
		for i := 0; i < n; i++ {
			probers = append(probers, &connectProber{timeout: e.timeout})
		}
	case ProtocolUDP:
		for i := 0; i < n; i++ {
			conn, err := bindDatagramSocket(addr)
			if err != nil {
				for _, p := range probers {
					p.close()
				}
				return nil, fmt.Errorf("binding local udp socket: %w", err)
			}
			probers = append(probers, &datagramProber{timeout: e.timeout, conn: conn})
		}
	default:
		return nil, fmt.Errorf("unsupported protocol '%s'", e.protocol)
	}

	return probers, nil
}
