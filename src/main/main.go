package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"laser-pointer/src/clipboard"
	"laser-pointer/src/config"
	"laser-pointer/src/cursor"
	"laser-pointer/src/eventloop"
	"laser-pointer/src/gui"
	"laser-pointer/src/hotkey"
	"laser-pointer/src/logutil"
	"laser-pointer/src/messages"
	"laser-pointer/src/notification"
	"laser-pointer/src/overlay"
	"laser-pointer/src/runtimeinit"
	"laser-pointer/src/singleinstance"
	"laser-pointer/src/tracking"
	"laser-pointer/src/tray"
)

type mainOptions struct {
	settingsPath string
	envPath      string
	fileLogging  bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// systray runs its message loop on the main thread
	runtime.LockOSThread()

	if err := runWithArgs(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"laser-pointer"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "laser-pointer",
		Short:         "Project a laser pointer from a preview region onto a presentation display",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(loadOptions(cmd, opts))
		},
	}

	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "Path to the calibration file (overrides SETTINGS_PATH)")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env file with process settings")
	cmd.Flags().BoolVar(&opts.fileLogging, "log", false, "Write a debug log next to the working directory (overrides ENABLE_FILE_LOGGING)")

	return cmd
}

// loadOptions turns flags into config overrides. Flags left unset keep the env/.env values.
func loadOptions(cmd *cobra.Command, opts *mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		EnvPathOverride:      opts.envPath,
		SettingsPathOverride: opts.settingsPath,
	}
	if cmd.Flags().Changed("log") {
		enabled := opts.fileLogging
		lo.EnableFileLoggingOverride = &enabled
	}
	return lo
}

func runResident(lo config.LoadOptions) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  lo,
		SetupLogging: logutil.Setup,
		Warn:         notification.Show,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------- SINGLE INSTANCE ----------
	ports := singleinstance.PortRange{Start: cfg.PortStart, End: cfg.PortEnd}
	if port, ok := singleinstance.DetectResidentPort(ctx, ports); ok {
		log.Printf("Pre-flight: resident already answering on port %d", port)
		return fmt.Errorf("laser-pointer is already running on port %d", port)
	}
	srv := singleinstance.NewServer(ports)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("cannot claim port %d (another instance running?): %w", cfg.PortStart, err)
	}
	defer srv.Close()
	// -------------------------------------

	keys, err := hotkey.NewKeys(cfg.ToggleHotkey, cfg.SelectHotkey, cfg.CancelHotkey)
	if err != nil {
		return fmt.Errorf("invalid hotkey configuration: %w", err)
	}

	host, err := gui.Start()
	if err != nil {
		return fmt.Errorf("failed to start overlay thread: %w", err)
	}
	defer host.Close()

	indicator, err := host.Indicator(rt.Calibration.IndicatorScale)
	if err != nil {
		return err
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("WARNING: clipboard unavailable: %v", err)
	}

	var loop *eventloop.Loop
	selection := host.Selection(func(ev overlay.PointerEvent) { loop.PointerSink()(ev) })
	tracker := tracking.New(rt.Registry, cursor.System{}, indicator, cfg.MoveInterval)
	trayIcon := tray.New(func(c messages.Command) bool { return loop.Post(c) }, rt.Registry.List(), cancel)

	loop = eventloop.New(eventloop.Options{
		Registry:     rt.Registry,
		Store:        rt.Store,
		Config:       rt.Calibration,
		Keys:         keys,
		Indicator:    indicator,
		Selection:    selection,
		Cursor:       cursor.System{},
		Tracker:      tracker,
		Server:       srv,
		PollInterval: cfg.PollInterval,
		Notify:       notification.Show,
		Confirm:      notification.Beep,
		CopyText:     clipboard.Write,
		OnChange:     trayIcon.Update,
	})

	stopHook := hotkey.Listen(keys)

	go func() {
		if err := tracker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("movement loop stopped: %v", err)
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("event loop stopped: %v", err)
		}
		cancel()
		trayIcon.Quit()
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Printf("signal received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("Laser pointer running: %s toggles, %s selects, %s cancels",
		cfg.ToggleHotkey, cfg.SelectHotkey, cfg.CancelHotkey)
	trayIcon.Run()

	cancel()
	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		log.Printf("event loop did not stop in time")
	}
	stopHook()
	log.Printf("Laser pointer stopped")
	return nil
}
