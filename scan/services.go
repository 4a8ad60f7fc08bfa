package scan

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
	"sync"
)

//go:embed services/iana-tcp.csv
var tcpServicesCSV string

//go:embed services/iana-udp.csv
var udpServicesCSV string

var (
	servicesOnce sync.Once
	tcpServices  map[uint16]string
	udpServices  map[uint16]string
)

// ServiceName returns the IANA-registered service name for a port, or ""
// when the port has no well-known assignment. The tables are built once from
// the embedded registries and are read-only afterwards.
func ServiceName(protocol Protocol, port uint16) string {
	servicesOnce.Do(func() {
		tcpServices = parseServices(tcpServicesCSV)
		udpServices = parseServices(udpServicesCSV)
	})
	if protocol == ProtocolUDP {
		return udpServices[port]
	}
	return tcpServices[port]
}

func parseServices(raw string) map[uint16]string {
	services := make(map[uint16]string)
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Scan() // header
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, portStr, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		port, err := strconv.ParseUint(strings.TrimSpace(portStr), 10, 16)
		if err != nil {
			continue
		}
		services[uint16(port)] = strings.TrimSpace(name)
	}
	return services
}
