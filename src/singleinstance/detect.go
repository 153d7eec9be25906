package singleinstance

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"time"
)

const detectTimeout = 300 * time.Millisecond

// DetectResidentPort reports the port of a running resident, if any.
func DetectResidentPort(ctx context.Context, ports PortRange) (int, bool) {
	return findResident(ctx, ports.normalize(), timeoutFrom(ctx, detectTimeout))
}

// findResident returns the first port in r that answers PING with PONG.
func findResident(ctx context.Context, r PortRange, timeout time.Duration) (int, bool) {
	for port := r.Start; port <= r.End; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		if ping(residentAddr(port), timeout) {
			return port, true
		}
	}
	return 0, false
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// timeoutFrom uses the remaining context deadline when there is one.
func timeoutFrom(ctx context.Context, fallback time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return fallback
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, pingRequest); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
