package singleinstance

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

// freePorts finds a loopback port that is currently unused.
func freePorts(t *testing.T) PortRange {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback unavailable in this environment: %v", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	_ = lis.Close()
	return PortRange{Start: port, End: port}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		line    string
		want    Request
		wantErr bool
	}{
		{line: "TOGGLE\n", want: Request{Command: CmdToggle}},
		{line: "select\n", want: Request{Command: CmdSelect}},
		{line: "CANCEL", want: Request{Command: CmdCancel}},
		{line: "STATUS\n", want: Request{Command: CmdStatus}},
		{line: "TARGET display-2\n", want: Request{Command: CmdTarget, Arg: "display-2"}},
		{line: "SCALE 2.5\n", want: Request{Command: CmdScale, Arg: "2.5"}},
		{line: "SCALE big\n", wantErr: true},
		{line: "TARGET\n", wantErr: true},
		{line: "TOGGLE now\n", wantErr: true},
		{line: "STDOUT\n", wantErr: true},
		{line: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.line), func(t *testing.T) {
			got, err := ParseRequest(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRequest(%q) = %+v, expected error", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest(%q) error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseRequest(%q) = %+v, expected %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestPortRangeNormalize(t *testing.T) {
	tests := []struct {
		in, want PortRange
	}{
		{PortRange{}, DefaultPorts},
		{PortRange{Start: 50000}, PortRange{Start: 50000, End: 50000}},
		{PortRange{Start: 80, End: 2000}, PortRange{Start: 1024, End: 2000}},
		{PortRange{Start: 60000, End: 70000}, PortRange{Start: 60000, End: 65535}},
		{PortRange{Start: 50010, End: 50000}, PortRange{Start: 50000, End: 50010}},
	}
	for _, tt := range tests {
		if got := tt.in.normalize(); got != tt.want {
			t.Errorf("%+v.normalize() = %+v, expected %+v", tt.in, got, tt.want)
		}
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ports := freePorts(t)
	srv := NewServer(ports)
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback unavailable in this environment: %v", err)
	}
	defer srv.Close()

	if port, ok := DetectResidentPort(ctx, ports); !ok || port != ports.Start {
		t.Fatalf("DetectResidentPort = %d, %v; expected %d, true", port, ok, ports.Start)
	}

	client := NewClient(ports)
	type reply struct {
		text string
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		text, err := client.Send(ctx, Request{Command: CmdTarget, Arg: "display-2"})
		replies <- reply{text, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := conn.Request(); got != (Request{Command: CmdTarget, Arg: "display-2"}) {
		t.Errorf("unexpected request %+v", got)
	}
	if err := conn.RespondSuccess("target=display-2"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	_ = conn.Close()

	r := <-replies
	if r.err != nil || r.text != "target=display-2" {
		t.Fatalf("Send = %q, %v", r.text, r.err)
	}

	go func() {
		text, err := client.Send(ctx, Request{Command: CmdScale, Arg: "9"})
		replies <- reply{text, err}
	}()
	conn, err = srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = conn.RespondError("scale 9 out of range")
	_ = conn.Close()

	r = <-replies
	if r.err == nil || r.err.Error() != "scale 9 out of range" {
		t.Fatalf("expected resident error, got %q, %v", r.text, r.err)
	}
}

func TestSecondServerCannotBind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ports := freePorts(t)
	first := NewServer(ports)
	if err := first.Start(ctx); err != nil {
		t.Skipf("loopback unavailable in this environment: %v", err)
	}
	defer first.Close()

	second := NewServer(ports)
	if err := second.Start(ctx); err == nil {
		second.Close()
		t.Fatal("expected second resident to fail to bind")
	}
}

func TestSendWithoutResident(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ports := freePorts(t)

	_, err := NewClient(ports).Send(ctx, Request{Command: CmdStatus})
	if !errors.Is(err, ErrNoResident) {
		t.Fatalf("expected ErrNoResident, got %v", err)
	}
}
