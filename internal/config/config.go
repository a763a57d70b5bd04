// Package config loads and saves duskctl preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/darkawower/duskctl/internal/redshift"
)

// Mode is one of the two presets.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeNight Mode = "night"
)

// ParseMode parses a mode name. "sun"/"moon" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "sun":
		return ModeDay, nil
	case "night", "moon":
		return ModeNight, nil
	}
	return "", fmt.Errorf("invalid mode: %q (must be day or night)", s)
}

// DayRedshift is what happens to redshift when switching to day.
type DayRedshift string

const (
	// DayRedshiftOff stops redshift.
	DayRedshiftOff DayRedshift = "off"
	// DayRedshiftNeutral keeps redshift running at a neutral temperature.
	DayRedshiftNeutral DayRedshift = "neutral"
)

// Default theme names for a MATE desktop.
const (
	DefaultDayTheme   = "Ambiant-MATE"
	DefaultNightTheme = "Ambiant-MATE-Dark"
)

// MinAutoInterval is the shortest polling interval for the auto loop.
const MinAutoInterval = time.Minute

// Duration is a time.Duration stored as a string such as "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ThemesConfig holds the theme selected for each mode.
type ThemesConfig struct {
	Day   string   `toml:"day"`
	Night string   `toml:"night"`
	Dirs  []string `toml:"dirs"`
}

// RedshiftConfig holds redshift-related preferences.
type RedshiftConfig struct {
	ConfigPath       string      `toml:"config-path"`
	Temperature      int         `toml:"temperature"`
	Brightness       float64     `toml:"brightness"`
	DayMode          DayRedshift `toml:"day-mode"`
	AdjustmentMethod string      `toml:"adjustment-method"`
}

// DesktopConfig names the gsettings keys holding the theme names.
type DesktopConfig struct {
	GTKSchema string `toml:"gtk-schema"`
	GTKKey    string `toml:"gtk-key"`
	WMSchema  string `toml:"wm-schema"`
	WMKey     string `toml:"wm-key"`
}

// LocationConfig is used for solar switching and written to redshift.conf.
type LocationConfig struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// AutoConfig configures the auto loop.
type AutoConfig struct {
	Interval       Duration `toml:"interval"`
	ElevationDay   float64  `toml:"elevation-day"`
	ElevationNight float64  `toml:"elevation-night"`
}

// NotifyConfig configures desktop notifications.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// StateConfig holds state file settings.
type StateConfig struct {
	Path string `toml:"path"`
}

// Config is the application preferences file.
type Config struct {
	Themes   ThemesConfig   `toml:"themes"`
	Redshift RedshiftConfig `toml:"redshift"`
	Desktop  DesktopConfig  `toml:"desktop"`
	Location LocationConfig `toml:"location"`
	Auto     AutoConfig     `toml:"auto"`
	Notify   NotifyConfig   `toml:"notify"`
	State    StateConfig    `toml:"state"`

	configPath string
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "duskctl")
}

// DefaultConfigPath returns the default preferences file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	configDir := DefaultConfigDir()
	home, _ := os.UserHomeDir()

	return &Config{
		Themes: ThemesConfig{
			Day:   DefaultDayTheme,
			Night: DefaultNightTheme,
			Dirs: []string{
				"/usr/share/themes",
				filepath.Join(home, ".themes"),
			},
		},
		Redshift: RedshiftConfig{
			ConfigPath:       filepath.Join(home, ".config", "redshift.conf"),
			Temperature:      redshift.DefaultTemperature,
			Brightness:       redshift.DefaultBrightness,
			DayMode:          DayRedshiftOff,
			AdjustmentMethod: redshift.DefaultAdjustmentMethod,
		},
		Desktop: DesktopConfig{
			GTKSchema: "org.mate.interface",
			GTKKey:    "gtk-theme",
			WMSchema:  "org.mate.Marco.general",
			WMKey:     "theme",
		},
		Auto: AutoConfig{
			Interval:       Duration{5 * time.Minute},
			ElevationDay:   3.0,
			ElevationNight: -6.0,
		},
		State: StateConfig{
			Path: filepath.Join(configDir, "state.json"),
		},
	}
}

// Load loads configuration from the specified path. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = expandPath(path)

	cfg := DefaultConfig()
	cfg.configPath = path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.postProcess()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// postProcess expands paths after decoding.
func (c *Config) postProcess() {
	c.State.Path = expandPath(c.State.Path)
	c.Redshift.ConfigPath = expandPath(c.Redshift.ConfigPath)
	for i, dir := range c.Themes.Dirs {
		c.Themes.Dirs[i] = expandPath(dir)
	}
	if c.Redshift.AdjustmentMethod == "" {
		c.Redshift.AdjustmentMethod = redshift.DefaultAdjustmentMethod
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Themes.Day) == "" {
		return fmt.Errorf("themes: day theme must not be empty")
	}
	if strings.TrimSpace(c.Themes.Night) == "" {
		return fmt.Errorf("themes: night theme must not be empty")
	}

	if c.Redshift.ConfigPath == "" {
		return fmt.Errorf("redshift: config-path is required")
	}
	if err := redshift.ValidateTemperature(c.Redshift.Temperature); err != nil {
		return fmt.Errorf("redshift: %w", err)
	}
	if err := redshift.ValidateBrightness(c.Redshift.Brightness); err != nil {
		return fmt.Errorf("redshift: %w", err)
	}
	switch c.Redshift.DayMode {
	case DayRedshiftOff, DayRedshiftNeutral:
	default:
		return fmt.Errorf("redshift: invalid day-mode: %s (must be off or neutral)", c.Redshift.DayMode)
	}

	for name, v := range map[string]string{
		"gtk-schema": c.Desktop.GTKSchema,
		"gtk-key":    c.Desktop.GTKKey,
		"wm-schema":  c.Desktop.WMSchema,
		"wm-key":     c.Desktop.WMKey,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("desktop: %s must not be empty", name)
		}
	}

	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location: latitude %.4f out of range [-90, 90]", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location: longitude %.4f out of range [-180, 180]", c.Location.Longitude)
	}

	if c.Auto.Interval.Duration < MinAutoInterval {
		return fmt.Errorf("auto: interval %s is below the minimum of %s", c.Auto.Interval, MinAutoInterval)
	}
	if c.Auto.ElevationNight >= c.Auto.ElevationDay {
		return fmt.Errorf("auto: elevation-night must be smaller than elevation-day")
	}

	return nil
}

// ThemeFor returns the theme selected for a mode.
func (c *Config) ThemeFor(mode Mode) string {
	if mode == ModeNight {
		return c.Themes.Night
	}
	return c.Themes.Day
}

// SetTheme records the theme selected for a mode.
func (c *Config) SetTheme(mode Mode, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("theme name must not be empty")
	}
	switch mode {
	case ModeDay:
		c.Themes.Day = name
	case ModeNight:
		c.Themes.Night = name
	default:
		return fmt.Errorf("invalid mode: %s", mode)
	}
	return nil
}

// RedshiftSettings builds the redshift.conf content for the configured
// night temperature and brightness.
func (c *Config) RedshiftSettings() redshift.Settings {
	s := redshift.Uniform(c.Redshift.Temperature, c.Redshift.Brightness)
	s.AdjustmentMethod = c.Redshift.AdjustmentMethod
	s.Latitude = c.Location.Latitude
	s.Longitude = c.Location.Longitude
	return s
}

// ConfigPath returns the path the config was loaded from.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// Save saves the configuration to the specified path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.configPath
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	c.configPath = path
	return nil
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.State.Path),
		filepath.Dir(c.Redshift.ConfigPath),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
