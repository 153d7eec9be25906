package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const sendTimeout = 2 * time.Second

type tcpClient struct {
	ports PortRange
}

func newTcpClient(ports PortRange) Client { return &tcpClient{ports: ports} }

func (c *tcpClient) Send(ctx context.Context, req Request) (string, error) {
	timeout := timeoutFrom(ctx, sendTimeout)
	port, ok := findResident(ctx, c.ports, timeout)
	if !ok {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", ErrNoResident
	}
	return exchange(residentAddr(port), req, timeout)
}

// exchange sends one request line and reads the status line and body.
func exchange(addr string, req Request, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("connect to resident at %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := fmt.Fprintf(conn, "%s\n", req); err != nil {
		return "", fmt.Errorf("send %s: %w", req.Command, err)
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read resident response: %w", err)
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successResponse:
		return string(body), nil
	case errorResponse:
		return "", errors.New(strings.TrimSpace(string(body)))
	default:
		return "", fmt.Errorf("unexpected resident response %q", strings.TrimSpace(status))
	}
}
