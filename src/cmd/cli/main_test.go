package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"laser-pointer/src/calibration"
	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
	"laser-pointer/src/singleinstance"
)

type fakeClient struct {
	reply string
	err   error
	got   []singleinstance.Request
}

func (f *fakeClient) Send(ctx context.Context, req singleinstance.Request) (string, error) {
	f.got = append(f.got, req)
	return f.reply, f.err
}

type cliHarness struct {
	settings string
	client   *fakeClient
	out      bytes.Buffer
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("SETTINGS_PATH", "")
	t.Setenv("LASER_POINTER_ENV", "")
	return &cliHarness{
		settings: filepath.Join(t.TempDir(), "laser_settings.txt"),
		client:   &fakeClient{err: singleinstance.ErrNoResident},
	}
}

func (h *cliHarness) run(args ...string) error {
	h.out.Reset()
	a := &app{
		opts: &cliOptions{},
		out:  &h.out,
		enumerate: func() *display.Registry {
			return display.New(
				display.Surface{ID: "display-1", Bounds: geometry.NewRect(0, 0, 1920, 1080)},
				display.Surface{ID: "display-2", Bounds: geometry.NewRect(1920, 0, 3200, 720)},
			)
		},
		newClient: func(singleinstance.PortRange) singleinstance.Client { return h.client },
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--settings", h.settings}, args...))
	return cmd.Execute()
}

func (h *cliHarness) stored(t *testing.T) calibration.Config {
	t.Helper()
	data, err := os.ReadFile(h.settings)
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	cfg, err := calibration.Decode(string(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return cfg
}

func TestDisplaysMarksTarget(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("displays"); err != nil {
		t.Fatalf("displays: %v", err)
	}
	want := "  display-1  1920x1080 at 0,0\n* display-2  1280x720 at 1920,0\n"
	if got := h.out.String(); got != want {
		t.Errorf("displays output:\n%q\nwant\n%q", got, want)
	}
}

func TestDisplaysJSON(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("--json", "displays"); err != nil {
		t.Fatalf("displays: %v", err)
	}
	var rows []displayJSON
	if err := json.Unmarshal(h.out.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON %q: %v", h.out.String(), err)
	}
	if len(rows) != 2 || rows[1].ID != "display-2" || !rows[1].Target || rows[0].Target {
		t.Errorf("rows = %+v", rows)
	}
}

func TestConfigPathAndShow(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("config", "path"); err != nil {
		t.Fatalf("config path: %v", err)
	}
	if got := strings.TrimSpace(h.out.String()); got != h.settings {
		t.Errorf("path = %q, want %q", got, h.settings)
	}

	if err := h.run("config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"target_monitor: display-2", "preview_left: 60", "dot_scale: 1.7"} {
		if !strings.Contains(h.out.String(), want) {
			t.Errorf("config show missing %q:\n%s", want, h.out.String())
		}
	}
}

func TestSetScaleWritesFileWithoutResident(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("config", "set-scale", "2.5"); err != nil {
		t.Fatalf("set-scale: %v", err)
	}
	if len(h.client.got) != 1 || h.client.got[0].Command != singleinstance.CmdScale {
		t.Errorf("expected one delegated SCALE attempt, got %v", h.client.got)
	}
	cfg := h.stored(t)
	if cfg.IndicatorScale != 2.5 {
		t.Errorf("stored scale = %v, want 2.5", cfg.IndicatorScale)
	}
	if cfg.Source != calibration.DefaultSource {
		t.Errorf("stored source = %v, want defaults", cfg.Source)
	}
}

func TestSetScaleDelegatesToResident(t *testing.T) {
	h := newCLIHarness(t)
	h.client.err = nil
	h.client.reply = "state=Idle target=display-2 source={60,149,1258,823} scale=2.0"

	if err := h.run("config", "set-scale", "2.0"); err != nil {
		t.Fatalf("set-scale: %v", err)
	}
	if _, err := os.Stat(h.settings); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file must be left to the resident, stat err = %v", err)
	}
	if !strings.Contains(h.out.String(), "scale=2.0") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestSetScaleRejectsOutOfRange(t *testing.T) {
	h := newCLIHarness(t)
	for _, arg := range []string{"0.1", "9", "big"} {
		err := h.run("config", "set-scale", arg)
		if !errors.Is(err, calibration.ErrInvalidScale) {
			t.Errorf("set-scale %s: err = %v, want ErrInvalidScale", arg, err)
		}
	}
	if len(h.client.got) != 0 {
		t.Errorf("invalid scales must not reach the resident: %v", h.client.got)
	}
}

func TestSetTarget(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("config", "set-target", "display-1"); err != nil {
		t.Fatalf("set-target: %v", err)
	}
	if got := h.stored(t).TargetDisplayID; got != "display-1" {
		t.Errorf("stored target = %q", got)
	}

	err := h.run("config", "set-target", "display-7")
	if !errors.Is(err, display.ErrUnknownDisplay) {
		t.Errorf("unknown display: err = %v", err)
	}
}

func TestResetOverwritesCalibration(t *testing.T) {
	h := newCLIHarness(t)
	if err := os.WriteFile(h.settings, []byte(calibration.Encode(calibration.Config{
		Source:          geometry.NewRect(1, 2, 3, 4),
		TargetDisplayID: "display-1",
		IndicatorScale:  4,
	})), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.run("config", "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	cfg := h.stored(t)
	if cfg.Source != calibration.DefaultSource || cfg.TargetDisplayID != "display-2" || cfg.IndicatorScale != calibration.DefaultScale {
		t.Errorf("reset left %+v", cfg)
	}
}

func TestMapCenterOfPreview(t *testing.T) {
	h := newCLIHarness(t)
	// centre of the default preview lands in the centre of display-2,
	// offset by half the 78px indicator
	if err := h.run("map", "659", "486"); err != nil {
		t.Fatalf("map: %v", err)
	}
	if got, want := strings.TrimSpace(h.out.String()), "659,486 -> 2521,321 on display-2"; got != want {
		t.Errorf("map = %q, want %q", got, want)
	}

	if err := h.run("--json", "map", "--", "-5000", "-5000"); err != nil {
		t.Fatalf("map: %v", err)
	}
	var res mapJSON
	if err := json.Unmarshal(h.out.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if res.Indicator != (geometry.Point{X: 1920, Y: 0}) {
		t.Errorf("far-off cursor should clamp to the display corner, got %v", res.Indicator)
	}
}

func TestMapRejectsBadCoordinates(t *testing.T) {
	h := newCLIHarness(t)
	if err := h.run("map", "x", "1"); err == nil {
		t.Error("expected error for non-numeric x")
	}
	if err := h.run("map", "1"); err == nil {
		t.Error("expected error for a missing y")
	}
}

func TestDelegatedCommands(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"toggle"}, singleinstance.CmdToggle},
		{[]string{"select"}, singleinstance.CmdSelect},
		{[]string{"cancel"}, singleinstance.CmdCancel},
		{[]string{"status"}, singleinstance.CmdStatus},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			h := newCLIHarness(t)
			h.client.err = nil
			h.client.reply = "state=Tracking target=display-2 source={60,149,1258,823} scale=1.7"
			if err := h.run(tt.args...); err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			if len(h.client.got) != 1 || h.client.got[0].Command != tt.command {
				t.Errorf("sent %v, want %s", h.client.got, tt.command)
			}
			if !strings.HasPrefix(h.out.String(), "state=Tracking") {
				t.Errorf("output = %q", h.out.String())
			}
		})
	}
}

func TestStatusJSON(t *testing.T) {
	h := newCLIHarness(t)
	h.client.err = nil
	h.client.reply = "state=Idle target=display-2 source={60,149,1258,823} scale=1.7"
	if err := h.run("--json", "status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(h.out.Bytes(), &fields); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if fields["state"] != "Idle" || fields["scale"] != "1.7" || fields["target"] != "display-2" {
		t.Errorf("fields = %v", fields)
	}
}

func TestStatusWithoutResident(t *testing.T) {
	h := newCLIHarness(t)
	err := h.run("status")
	if !errors.Is(err, singleinstance.ErrNoResident) {
		t.Errorf("err = %v, want ErrNoResident", err)
	}
}
