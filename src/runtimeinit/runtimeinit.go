package runtimeinit

import (
	"errors"
	"fmt"
	"log"

	"laser-pointer/src/calibration"
	"laser-pointer/src/config"
	"laser-pointer/src/display"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// Enumerate lists the displays; display.Enumerate when nil.
	Enumerate func() *display.Registry
	// Warn reports recoverable startup problems to the user. Optional.
	Warn func(title, message string)
}

// Runtime is everything the resident and the CLI need before they start.
type Runtime struct {
	Config      *config.Config
	Registry    *display.Registry
	Store       *calibration.Store
	Calibration calibration.Config
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	enumerate := opts.Enumerate
	if enumerate == nil {
		enumerate = display.Enumerate
	}
	reg := enumerate()
	if reg.Len() == 0 {
		log.Printf("WARNING: no displays enumerated, the laser cannot be placed until one is available")
	}

	store := calibration.NewStore(cfg.SettingsPath)
	cal, err := store.Load(reg)
	if err != nil {
		// Load still returned usable defaults
		log.Printf("WARNING: %v", err)
		if opts.Warn != nil && errors.Is(err, calibration.ErrMalformed) {
			opts.Warn("Calibration reset", fmt.Sprintf("%s could not be read and defaults are in use.", store.Path()))
		}
	}
	if cal.TargetDisplayID != "" {
		if _, ok := reg.Geometry(cal.TargetDisplayID); !ok {
			log.Printf("WARNING: stored target display %q is not connected", cal.TargetDisplayID)
		}
	}

	log.Printf("Laser pointer initialized: %d display(s), settings %s", reg.Len(), store.Path())
	log.Printf("Calibration: source=%v target=%s scale=%v", cal.Source, cal.TargetDisplayID, cal.IndicatorScale)
	log.Printf("Hotkeys: toggle=%s select=%s cancel=%s", cfg.ToggleHotkey, cfg.SelectHotkey, cfg.CancelHotkey)

	return &Runtime{
		Config:      cfg,
		Registry:    reg,
		Store:       store,
		Calibration: cal,
	}, nil
}
