package singleinstance

// This file defines the API for single-instance ownership and command delegation.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoResident is returned by Client.Send when no resident answers in the port range.
var ErrNoResident = errors.New("no resident laser-pointer instance found")

// Delegated command words. A request line is the word optionally followed by
// one argument, terminated by a newline.
const (
	CmdToggle = "TOGGLE"
	CmdSelect = "SELECT"
	CmdCancel = "CANCEL"
	CmdTarget = "TARGET"
	CmdScale  = "SCALE"
	CmdStatus = "STATUS"
)

// Server owns the TCP endpoint and answers delegated commands.
type Server interface {
	// Start begins listening on the first port of the range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success followed by optional text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request is a single delegated command.
type Request struct {
	Command string
	Arg     string
}

func (r Request) String() string {
	if r.Arg == "" {
		return r.Command
	}
	return r.Command + " " + r.Arg
}

// ParseRequest validates one request line.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, errors.New("empty request")
	}
	req := Request{Command: strings.ToUpper(fields[0])}
	switch req.Command {
	case CmdToggle, CmdSelect, CmdCancel, CmdStatus:
		if len(fields) != 1 {
			return Request{}, fmt.Errorf("%s takes no argument", req.Command)
		}
	case CmdTarget:
		if len(fields) != 2 {
			return Request{}, fmt.Errorf("%s needs a display id", req.Command)
		}
		req.Arg = fields[1]
	case CmdScale:
		if len(fields) != 2 {
			return Request{}, fmt.Errorf("%s needs a value", req.Command)
		}
		if _, err := strconv.ParseFloat(fields[1], 64); err != nil {
			return Request{}, fmt.Errorf("%s value %q is not a number", req.Command, fields[1])
		}
		req.Arg = fields[1]
	default:
		return Request{}, fmt.Errorf("unknown command %q", fields[0])
	}
	return req, nil
}

// Client delegates commands to a resident server.
type Client interface {
	// Send scans the port range, performs the PING handshake and sends req to the resident.
	// It returns ErrNoResident when nothing answers.
	Send(ctx context.Context, req Request) (string, error)
}

// NewServer returns TCP implementation bound to ports.Start.
func NewServer(ports PortRange) Server { return newTcpServer(ports.normalize()) }

// NewClient returns TCP implementation scanning ports.
func NewClient(ports PortRange) Client { return newTcpClient(ports.normalize()) }
