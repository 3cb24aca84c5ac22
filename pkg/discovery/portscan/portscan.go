// Package portscan tests a fixed set of well-known TCP ports for connect
// success. Scanning is best effort: any dial failure means the port is
// treated as closed, with no distinction between refused, filtered, and
// timed out. The candidate list order is a compatibility contract; open
// ports are reported in scan order, not numeric order.
package portscan

import (
	"context"
	"net"
	"strconv"
	"time"
)

// DefaultPorts is the fixed candidate port list, tested in this exact order
var DefaultPorts = []int{80, 443, 22, 21, 3389, 8080, 1723}

// Scan attempts a TCP connection to each candidate port on host and returns
// the ports that accepted, in scan order. Connections are released
// immediately after the handshake. Scan never fails: a host with every port
// closed yields an empty result.
func Scan(ctx context.Context, host string, ports []int, timeout time.Duration) []int {
	dialer := &net.Dialer{Timeout: timeout}

	var openPorts []int
	for _, port := range ports {
		if ctx.Err() != nil {
			break
		}

		address := net.JoinHostPort(host, strconv.Itoa(port))
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			// Refused, filtered, or timed out: all count as closed
			continue
		}
		_ = conn.Close()
		openPorts = append(openPorts, port)
	}

	return openPorts
}
