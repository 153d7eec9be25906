package calibration

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
)

const (
	keyTarget = "target_monitor"
	keyLeft   = "preview_left"
	keyRight  = "preview_right"
	keyTop    = "preview_top"
	keyBottom = "preview_bottom"
	keyScale  = "dot_scale"

	settingsDirName  = "laser-pointer"
	settingsFileName = "settings.ini"
)

// Store reads and writes the settings file.
type Store struct {
	path string
}

// NewStore returns a store backed by path. An empty path selects DefaultPath.
func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// DefaultPath returns ~/.config/laser-pointer/settings.ini, or a file in the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return settingsFileName
	}
	return filepath.Join(home, ".config", settingsDirName, settingsFileName)
}

func (s *Store) Path() string { return s.path }

// Load reads the settings file. A missing file yields Defaults and no error.
// A malformed file yields Defaults together with an error wrapping
// ErrMalformed; the returned Config is always usable.
func (s *Store) Load(reg *display.Registry) (Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("calibration: %s not found, using defaults", s.path)
		return Defaults(reg), nil
	}
	if err != nil {
		return Defaults(reg), fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}

	cfg, err := Decode(string(data))
	if err != nil {
		return Defaults(reg), fmt.Errorf("%s: %w", s.path, err)
	}
	return cfg, nil
}

// Save writes cfg synchronously, creating the directory when needed.
func (s *Store) Save(cfg Config) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(Encode(cfg)), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	log.Printf("calibration: saved %s (target=%s source=%v scale=%v)", s.path, cfg.TargetDisplayID, cfg.Source, cfg.IndicatorScale)
	return nil
}

// Encode renders cfg in the line-oriented `key: value` format.
func Encode(cfg Config) string {
	lines := []string{
		keyTarget + ": " + cfg.TargetDisplayID,
		keyLeft + ": " + strconv.Itoa(cfg.Source.Left),
		keyRight + ": " + strconv.Itoa(cfg.Source.Right),
		keyTop + ": " + strconv.Itoa(cfg.Source.Top),
		keyBottom + ": " + strconv.Itoa(cfg.Source.Bottom),
		keyScale + ": " + strconv.FormatFloat(cfg.IndicatorScale, 'f', -1, 64),
	}
	return strings.Join(lines, "\n")
}

// Decode parses the `key: value` format. Every geometry key and the target
// key are required; dot_scale falls back to DefaultScale when absent.
func Decode(text string) (Config, error) {
	values, err := godotenv.Unmarshal(text)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	target, ok := values[keyTarget]
	if !ok {
		return Config{}, fmt.Errorf("%w: missing %s", ErrMalformed, keyTarget)
	}

	var coords [4]int
	for i, key := range []string{keyLeft, keyTop, keyRight, keyBottom} {
		raw, ok := values[key]
		if !ok {
			return Config{}, fmt.Errorf("%w: missing %s", ErrMalformed, key)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformed, key, raw)
		}
		coords[i] = n
	}

	scale := DefaultScale
	if raw, ok := values[keyScale]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not a number", ErrMalformed, keyScale, raw)
		}
		if err := ValidateScale(f); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		scale = f
	}

	return Config{
		Source:          geometry.NewRect(coords[0], coords[1], coords[2], coords[3]),
		TargetDisplayID: strings.TrimSpace(target),
		IndicatorScale:  scale,
	}, nil
}
