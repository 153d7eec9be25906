package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"laser-pointer/src/calibration"
	"laser-pointer/src/config"
	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
	"laser-pointer/src/runtimeinit"
	"laser-pointer/src/singleinstance"
)

const delegateTimeout = 3 * time.Second

type cliOptions struct {
	settingsPath string
	envPath      string
	jsonOutput   bool
	verbose      bool
}

// app holds what the commands need; tests replace the constructors.
type app struct {
	opts      *cliOptions
	out       io.Writer
	enumerate func() *display.Registry
	newClient func(singleinstance.PortRange) singleinstance.Client
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args, os.Stdout)
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"laserctl"}
	}

	a := &app{
		opts:      &cliOptions{},
		out:       out,
		enumerate: display.Enumerate,
		newClient: singleinstance.NewClient,
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "laserctl",
		Short:         "Inspect and control the laser pointer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if a.opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.SetOut(a.out)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.opts.settingsPath, "settings", "", "Path to the calibration file (overrides SETTINGS_PATH)")
	pf.StringVar(&a.opts.envPath, "env", "", "Path to a .env file with process settings")
	pf.BoolVar(&a.opts.jsonOutput, "json", false, "Output results as JSON")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	cmd.AddCommand(
		a.displaysCmd(),
		a.configCmd(),
		a.mapCmd(),
		a.delegateCmd("toggle", "Toggle the laser in the running instance", singleinstance.CmdToggle),
		a.delegateCmd("select", "Start a region selection in the running instance", singleinstance.CmdSelect),
		a.delegateCmd("cancel", "Cancel a region selection in the running instance", singleinstance.CmdCancel),
		a.delegateCmd("status", "Show the state of the running instance", singleinstance.CmdStatus),
	)
	return cmd
}

func (a *app) bootstrap() (*runtimeinit.Runtime, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvPathOverride:      a.opts.envPath,
			SettingsPathOverride: a.opts.settingsPath,
		},
		Enumerate: a.enumerate,
	})
}

func (a *app) client(rt *runtimeinit.Runtime) singleinstance.Client {
	return a.newClient(singleinstance.PortRange{Start: rt.Config.PortStart, End: rt.Config.PortEnd})
}

func (a *app) delegate(rt *runtimeinit.Runtime, req singleinstance.Request) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), delegateTimeout)
	defer cancel()
	return a.client(rt).Send(ctx, req)
}

type displayJSON struct {
	ID     string `json:"id"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Target bool   `json:"target"`
}

func (a *app) displaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "displays",
		Short: "List connected displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			var rows []displayJSON
			for _, s := range rt.Registry.List() {
				rows = append(rows, displayJSON{
					ID:     s.ID,
					Left:   s.Bounds.Left,
					Top:    s.Bounds.Top,
					Width:  s.Bounds.Width(),
					Height: s.Bounds.Height(),
					Target: s.ID == rt.Calibration.TargetDisplayID,
				})
			}
			if a.opts.jsonOutput {
				return a.writeJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "no displays found")
				return nil
			}
			for _, r := range rows {
				mark := " "
				if r.Target {
					mark = "*"
				}
				fmt.Fprintf(a.out, "%s %s  %dx%d at %d,%d\n", mark, r.ID, r.Width, r.Height, r.Left, r.Top)
			}
			return nil
		},
	}
}

type calibrationJSON struct {
	Path            string        `json:"path"`
	Source          geometry.Rect `json:"source"`
	TargetDisplayID string        `json:"target_monitor"`
	IndicatorScale  float64       `json:"dot_scale"`
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored calibration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored calibration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return a.writeJSON(calibrationJSON{
					Path:            rt.Store.Path(),
					Source:          rt.Calibration.Source,
					TargetDisplayID: rt.Calibration.TargetDisplayID,
					IndicatorScale:  rt.Calibration.IndicatorScale,
				})
			}
			fmt.Fprintln(a.out, calibration.Encode(rt.Calibration))
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the calibration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, rt.Store.Path())
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the calibration with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			cfg := calibration.Defaults(rt.Registry)
			if err := rt.Store.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "calibration reset in %s (restart a running instance to pick it up)\n", rt.Store.Path())
			return nil
		},
	}

	setTarget := &cobra.Command{
		Use:   "set-target <display-id>",
		Short: "Choose the display the laser is drawn on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			id := args[0]
			if _, err := rt.Registry.Lookup(id); err != nil {
				return err
			}
			return a.updateCalibration(rt, singleinstance.Request{Command: singleinstance.CmdTarget, Arg: id}, func(cfg *calibration.Config) {
				cfg.TargetDisplayID = id
			})
		},
	}

	setScale := &cobra.Command{
		Use:   "set-scale <scale>",
		Short: fmt.Sprintf("Set the laser size (%v to %v)", calibration.MinScale, calibration.MaxScale),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", calibration.ErrInvalidScale, args[0])
			}
			if err := calibration.ValidateScale(scale); err != nil {
				return err
			}
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			return a.updateCalibration(rt, singleinstance.Request{Command: singleinstance.CmdScale, Arg: args[0]}, func(cfg *calibration.Config) {
				cfg.IndicatorScale = scale
			})
		},
	}

	cmd.AddCommand(show, path, reset, setTarget, setScale)
	return cmd
}

// updateCalibration hands the change to a running instance, which owns the
// file while it runs, and edits the file directly otherwise.
func (a *app) updateCalibration(rt *runtimeinit.Runtime, req singleinstance.Request, apply func(*calibration.Config)) error {
	reply, err := a.delegate(rt, req)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, strings.TrimSpace(reply))
		return nil
	case !errors.Is(err, singleinstance.ErrNoResident):
		return fmt.Errorf("resident rejected %s: %w", req, err)
	}

	cfg := rt.Calibration
	apply(&cfg)
	if err := rt.Store.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved to %s\n", rt.Store.Path())
	return nil
}

type mapJSON struct {
	Cursor    geometry.Point `json:"cursor"`
	Target    string         `json:"target_monitor"`
	Indicator geometry.Point `json:"indicator"`
}

func (a *app) mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <x> <y>",
		Short: "Show where the laser would be drawn for a cursor position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid x %q", args[0])
			}
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid y %q", args[1])
			}
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			target, ok := rt.Registry.Geometry(rt.Calibration.TargetDisplayID)
			if !ok {
				return fmt.Errorf("%w: %q", display.ErrUnknownDisplay, rt.Calibration.TargetDisplayID)
			}

			cur := geometry.Point{X: x, Y: y}
			pos := geometry.Map(cur, rt.Calibration.Source, target, overlay.IndicatorSize(rt.Calibration.IndicatorScale))
			if a.opts.jsonOutput {
				return a.writeJSON(mapJSON{Cursor: cur, Target: rt.Calibration.TargetDisplayID, Indicator: pos})
			}
			fmt.Fprintf(a.out, "%d,%d -> %d,%d on %s\n", x, y, pos.X, pos.Y, rt.Calibration.TargetDisplayID)
			return nil
		},
	}
}

func (a *app) delegateCmd(use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.bootstrap()
			if err != nil {
				return err
			}
			reply, err := a.delegate(rt, singleinstance.Request{Command: command})
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return a.writeJSON(parseStatus(reply))
			}
			fmt.Fprintln(a.out, strings.TrimSpace(reply))
			return nil
		},
	}
}

// parseStatus splits a "key=value key=value" reply into a map.
func parseStatus(reply string) map[string]string {
	fields := map[string]string{}
	for _, f := range strings.Fields(reply) {
		if k, v, ok := strings.Cut(f, "="); ok {
			fields[k] = v
		}
	}
	return fields
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
