package port

import (
	"fmt"
	"net"
	"strconv"
)

// Scanner checks whether TCP ports are free on a given bind host.
//
// The host should match the address the caller will later listen on:
// a port can be free on 127.0.0.1 while taken on 0.0.0.0.
type Scanner struct {
	host string
}

// NewScanner creates a Scanner for host. An empty host means all
// interfaces, matching net.Listen(":port").
func NewScanner(host string) *Scanner {
	return &Scanner{host: host}
}

// Addr returns the host:port address for port on the scanner's host.
func (s *Scanner) Addr(port int) string {
	return net.JoinHostPort(s.host, strconv.Itoa(port))
}

// IsPortAvailable reports whether port can currently be bound. The probe
// listener is closed before returning. Ports outside 1-65535 are never
// available.
func (s *Scanner) IsPortAvailable(port int) bool {
	if port < 1 || port > 65535 {
		return false
	}
	listener, err := net.Listen("tcp", s.Addr(port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// FindAvailablePort returns the first free port in [startPort, endPort]
// (inclusive), searching upward so the result is deterministic.
func (s *Scanner) FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		if s.IsPortAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available tcp port found in range %d-%d", startPort, endPort)
}
