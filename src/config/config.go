package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar      = "LASER_POINTER_ENV"
	SettingsPathEnvVar = "SETTINGS_PATH"

	DefaultToggleHotkey = "RAlt"
	DefaultSelectHotkey = "F9"
	DefaultCancelHotkey = "Esc"

	DefaultMoveInterval = 30 * time.Millisecond
	DefaultPollInterval = 30 * time.Millisecond

	DefaultPortStart = 54321
	DefaultPortEnd   = 54329
)

type LoadOptions struct {
	EnvPathOverride           string
	SettingsPathOverride      string
	EnableFileLoggingOverride *bool
}

type Config struct {
	ToggleHotkey      string
	SelectHotkey      string
	CancelHotkey      string
	EnableFileLogging bool
	SettingsPath      string
	MoveInterval      time.Duration
	PollInterval      time.Duration
	PortStart         int
	PortEnd           int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) explicit override
	// 2) .env in the application (executable) directory
	// 3) file named by LASER_POINTER_ENV
	envPath := resolveEnvPath(opts)
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	portStart := getEnvInt("SINGLEINSTANCE_PORT_START", DefaultPortStart)
	portEnd := getEnvInt("SINGLEINSTANCE_PORT_END", DefaultPortEnd)
	if portEnd < portStart {
		portEnd = portStart
	}

	cfg := &Config{
		ToggleHotkey:      getEnvWithDefault("HOTKEY_TOGGLE", DefaultToggleHotkey),
		SelectHotkey:      getEnvWithDefault("HOTKEY_SELECT", DefaultSelectHotkey),
		CancelHotkey:      getEnvWithDefault("HOTKEY_CANCEL", DefaultCancelHotkey),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		SettingsPath:      resolveSettingsPath(opts, dotenvValues),
		MoveInterval:      getEnvMillis("MOVE_INTERVAL_MS", DefaultMoveInterval),
		PollInterval:      getEnvMillis("POLL_INTERVAL_MS", DefaultPollInterval),
		PortStart:         portStart,
		PortEnd:           portEnd,
	}
	if opts.EnableFileLoggingOverride != nil {
		cfg.EnableFileLogging = *opts.EnableFileLoggingOverride
	}

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.EnvPathOverride); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

// resolveSettingsPath returns the calibration file path. An empty result
// means the calibration store picks its default location.
func resolveSettingsPath(opts LoadOptions, dotenvValues map[string]string) string {
	path := strings.TrimSpace(os.Getenv(SettingsPathEnvVar))

	if dotenvPath := strings.TrimSpace(dotenvValues[SettingsPathEnvVar]); dotenvPath != "" {
		path = dotenvPath
	}

	if override := strings.TrimSpace(opts.SettingsPathOverride); override != "" {
		path = override
	}

	return path
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return defaultValue
}
