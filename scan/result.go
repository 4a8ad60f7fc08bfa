package scan

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Protocol selects which probe an Engine runs against the target.
type Protocol uint8

const (
	ProtocolTCP Protocol = iota
	ProtocolUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolUDP:
		return "udp"
	}
	return "unknown"
}

func ParseProtocol(input string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "tcp":
		return ProtocolTCP, nil
	case "udp":
		return ProtocolUDP, nil
	}
	return 0, fmt.Errorf("unknown protocol '%s'", input)
}

// PortState classifies what a single probe learned about a port. Filtered
// means the probe saw no conclusive signal within its timeout - a dropped
// packet, a silent firewall and an unresponsive service all look the same
// from here.
type PortState uint8

const (
	PortUnknown PortState = iota
	PortOpen
	PortClosed
	PortFiltered
)

func (s PortState) String() string {
	switch s {
	case PortOpen:
		return "open"
	case PortClosed:
		return "closed"
	case PortFiltered:
		return "filtered"
	}
	return "unknown"
}

func ParsePortState(input string) (PortState, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "open":
		return PortOpen, nil
	case "closed":
		return PortClosed, nil
	case "filtered":
		return PortFiltered, nil
	}
	return PortUnknown, fmt.Errorf("unknown port state '%s'", input)
}

// Result records the classification of a single port. It is created once by
// the worker that probed the port and never mutated afterwards.
type Result struct {
	Protocol Protocol
	Port     uint16
	State    PortState
}

// ResultSet is an ordered collection of results, one per scanned port.
type ResultSet []Result

func (rs ResultSet) sortByPort() {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Port < rs[j].Port
	})
}

// Filter returns the results whose state is not in ignored.
func (rs ResultSet) Filter(ignored ...PortState) ResultSet {
	filtered := make(ResultSet, 0, len(rs))
	for _, r := range rs {
		skip := false
		for _, state := range ignored {
			if r.State == state {
				skip = true
				break
			}
		}
		if !skip {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Count returns the number of results in the given state.
func (rs ResultSet) Count(state PortState) int {
	n := 0
	for _, r := range rs {
		if r.State == state {
			n++
		}
	}
	return n
}

// Report is the outcome of one engine run: every classified port, sorted
// ascending by port number, plus the wall-clock duration of the scan.
type Report struct {
	Results ResultSet
	Elapsed time.Duration
}
