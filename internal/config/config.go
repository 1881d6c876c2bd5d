// Package config loads kcal settings. Values are resolved from, highest
// priority first:
//  1. Command-line flags
//  2. Environment variables (KCAL_*), optionally read from a .env file
//  3. Preferences stored in the database (app_config)
//  4. The YAML config file
//  5. Defaults
//
// This package covers the file, environment and defaults. Stored preferences
// and flags are layered on by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hovosukiasyan/calorie-tracker/internal/analytics"
	"github.com/hovosukiasyan/calorie-tracker/internal/app"
)

var ErrNoConfig = errors.New("config file not found")

const (
	WindowRange    = "range"
	WindowTrailing = "trailing"
)

// Preference keys, shared by the YAML file, app_config rows and KCAL_* env.
const (
	KeyToleranceMode  = "tolerance_mode"
	KeyToleranceValue = "tolerance_value"
	KeyRollingWindow  = "rolling_window"
	KeyWindowMode     = "window_mode"
	KeyTrailingDays   = "trailing_days"
	KeyClampToFirst   = "clamp_to_first_entry"
)

var PreferenceKeys = []string{
	KeyToleranceMode,
	KeyToleranceValue,
	KeyRollingWindow,
	KeyWindowMode,
	KeyTrailingDays,
	KeyClampToFirst,
}

type Config struct {
	DBPath    string    `yaml:"db_path" json:"db_path"`
	Server    Server    `yaml:"server" json:"server"`
	Analytics Analytics `yaml:"analytics" json:"analytics"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Analytics holds the adherence and window policy used for reports.
type Analytics struct {
	RollingWindow     int     `yaml:"rolling_window" json:"rolling_window"`
	ToleranceMode     string  `yaml:"tolerance_mode" json:"tolerance_mode"`
	ToleranceValue    float64 `yaml:"tolerance_value" json:"tolerance_value"`
	WindowMode        string  `yaml:"window_mode" json:"window_mode"`
	TrailingDays      int     `yaml:"trailing_days" json:"trailing_days"`
	ClampToFirstEntry bool    `yaml:"clamp_to_first_entry" json:"clamp_to_first_entry"`
}

func Default() *Config {
	return &Config{
		Server: Server{Addr: "127.0.0.1:8765"},
		Analytics: Analytics{
			RollingWindow:     analytics.DefaultRollingWindow,
			ToleranceMode:     string(analytics.DefaultTolerance.Mode),
			ToleranceValue:    analytics.DefaultTolerance.Value,
			WindowMode:        WindowRange,
			TrailingDays:      30,
			ClampToFirstEntry: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path means the
// default location; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, fmt.Errorf("%s: %w", path, ErrNoConfig)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	// A mode without a value takes that mode's default, as Set does.
	var given struct {
		Analytics struct {
			ToleranceValue *float64 `yaml:"tolerance_value"`
		} `yaml:"analytics"`
	}
	if err := yaml.Unmarshal(data, &given); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if given.Analytics.ToleranceValue == nil {
		cfg.Analytics.ToleranceValue = defaultToleranceValue(analytics.ToleranceMode(cfg.Analytics.ToleranceMode))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads KCAL_* variables from a .env file without overriding
// variables already set in the environment.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays KCAL_* variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("KCAL_DB")); v != "" {
		c.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("KCAL_ADDR")); v != "" {
		c.Server.Addr = v
	}
	env := map[string]string{
		KeyToleranceMode:  "KCAL_TOLERANCE_MODE",
		KeyToleranceValue: "KCAL_TOLERANCE",
		KeyRollingWindow:  "KCAL_ROLLING_WINDOW",
		KeyWindowMode:     "KCAL_WINDOW_MODE",
		KeyTrailingDays:   "KCAL_TRAILING_DAYS",
		KeyClampToFirst:   "KCAL_CLAMP_TO_FIRST_ENTRY",
	}
	for _, key := range PreferenceKeys {
		v := strings.TrimSpace(os.Getenv(env[key]))
		if v == "" {
			continue
		}
		if err := c.Analytics.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", env[key], err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	return c.Analytics.Validate()
}

func (a Analytics) Validate() error {
	if a.RollingWindow < 1 {
		return fmt.Errorf("rolling_window must be >= 1")
	}
	if err := a.Tolerance().Validate(); err != nil {
		return err
	}
	switch a.WindowMode {
	case WindowRange, WindowTrailing:
	default:
		return fmt.Errorf("window_mode must be %q or %q", WindowRange, WindowTrailing)
	}
	if a.TrailingDays < 1 {
		return fmt.Errorf("trailing_days must be >= 1")
	}
	return nil
}

func (a Analytics) Tolerance() analytics.Tolerance {
	return analytics.Tolerance{Mode: analytics.ToleranceMode(a.ToleranceMode), Value: a.ToleranceValue}
}

// Set assigns one preference from its string form. Switching the tolerance
// mode resets the value to that mode's default.
func (a *Analytics) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(strings.ToLower(key)) {
	case KeyToleranceMode:
		mode, err := analytics.ParseToleranceMode(value)
		if err != nil {
			return err
		}
		if string(mode) != a.ToleranceMode {
			a.ToleranceValue = defaultToleranceValue(mode)
		}
		a.ToleranceMode = string(mode)
	case KeyToleranceValue:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		a.ToleranceValue = v
	case KeyRollingWindow:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		a.RollingWindow = v
	case KeyWindowMode:
		a.WindowMode = strings.ToLower(value)
	case KeyTrailingDays:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		a.TrailingDays = v
	case KeyClampToFirst:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		a.ClampToFirstEntry = v
	default:
		return fmt.Errorf("unknown preference %q (known: %s)", key, strings.Join(PreferenceKeys, ", "))
	}
	return nil
}

func defaultToleranceValue(mode analytics.ToleranceMode) float64 {
	if mode == analytics.ToleranceRelative {
		return analytics.DefaultRelativeTolerance
	}
	return analytics.DefaultTolerance.Value
}
