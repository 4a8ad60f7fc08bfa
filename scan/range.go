package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// PortRange is an inclusive range of ports to scan.
type PortRange struct {
	Start uint16
	End   uint16
}

// DefaultPortRange covers every usable port.
func DefaultPortRange() PortRange {
	return PortRange{Start: 1, End: 65535}
}

func NewPortRange(start, end uint16) (PortRange, error) {
	if start == 0 {
		return PortRange{}, fmt.Errorf("port numbers start at 1")
	}
	if start > end {
		return PortRange{}, fmt.Errorf("invalid port range %d-%d: start exceeds end", start, end)
	}
	return PortRange{Start: start, End: end}, nil
}

// ParsePortRange parses a textual range such as "1-1024". Both bounds are
// required and inclusive.
func ParsePortRange(input string) (PortRange, error) {
	parts := strings.Split(strings.TrimSpace(input), "-")
	if len(parts) != 2 {
		return PortRange{}, fmt.Errorf("invalid port range '%s': expected start-end", input)
	}
	start, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
	if err != nil {
		return PortRange{}, fmt.Errorf("invalid start port '%s'", parts[0])
	}
	end, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16)
	if err != nil {
		return PortRange{}, fmt.Errorf("invalid end port '%s'", parts[1])
	}
	return NewPortRange(uint16(start), uint16(end))
}

func (r PortRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Size returns the number of ports in the range.
func (r PortRange) Size() int {
	return int(r.End) - int(r.Start) + 1
}

// Ports materializes the range as an ascending slice of port numbers.
func (r PortRange) Ports() []uint16 {
	ports := make([]uint16, 0, r.Size())
	for port := int(r.Start); port <= int(r.End); port++ {
		ports = append(ports, uint16(port))
	}
	return ports
}
