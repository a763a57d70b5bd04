// Package redshift reads and writes the configuration file consumed by the
// redshift color-temperature daemon.
package redshift

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"
)

// Defaults used when the file is missing or a key cannot be read.
const (
	DefaultTemperature      = 4500
	DefaultBrightness       = 0.8
	DefaultAdjustmentMethod = "randr"

	// NeutralTemperature and NeutralBrightness leave the screen untouched.
	NeutralTemperature = 6500
	NeutralBrightness  = 1.0
)

// Accepted ranges. Temperatures follow what redshift itself accepts.
const (
	MinTemperature = 1000
	MaxTemperature = 25000
	MinBrightness  = 0.1
	MaxBrightness  = 1.0
)

const (
	sectionRedshift = "redshift"
	sectionManual   = "manual"
)

// Settings is the content of redshift.conf.
type Settings struct {
	TempDay          int     `json:"temp_day" yaml:"temp_day"`
	TempNight        int     `json:"temp_night" yaml:"temp_night"`
	BrightnessDay    float64 `json:"brightness_day" yaml:"brightness_day"`
	BrightnessNight  float64 `json:"brightness_night" yaml:"brightness_night"`
	Transition       bool    `json:"transition" yaml:"transition"`
	AdjustmentMethod string  `json:"adjustment_method" yaml:"adjustment_method"`
	Latitude         float64 `json:"latitude" yaml:"latitude"`
	Longitude        float64 `json:"longitude" yaml:"longitude"`
}

// Default returns the settings written when no file exists yet.
func Default() Settings {
	return Uniform(DefaultTemperature, DefaultBrightness)
}

// Uniform returns settings that use the same temperature and brightness for
// day and night, so the daemon applies a constant shift.
func Uniform(temp int, brightness float64) Settings {
	return Settings{
		TempDay:          temp,
		TempNight:        temp,
		BrightnessDay:    brightness,
		BrightnessNight:  brightness,
		AdjustmentMethod: DefaultAdjustmentMethod,
	}
}

// Neutral returns settings that apply no color shift at all.
func Neutral() Settings {
	return Uniform(NeutralTemperature, NeutralBrightness)
}

// Validate checks that all values are within what the daemon accepts.
func (s Settings) Validate() error {
	if err := ValidateTemperature(s.TempDay); err != nil {
		return fmt.Errorf("temp-day: %w", err)
	}
	if err := ValidateTemperature(s.TempNight); err != nil {
		return fmt.Errorf("temp-night: %w", err)
	}
	if err := ValidateBrightness(s.BrightnessDay); err != nil {
		return fmt.Errorf("brightness-day: %w", err)
	}
	if err := ValidateBrightness(s.BrightnessNight); err != nil {
		return fmt.Errorf("brightness-night: %w", err)
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", s.Longitude)
	}
	return nil
}

// ValidateTemperature checks a color temperature in Kelvin.
func ValidateTemperature(temp int) error {
	if temp < MinTemperature || temp > MaxTemperature {
		return fmt.Errorf("temperature %dK out of range [%d, %d]", temp, MinTemperature, MaxTemperature)
	}
	return nil
}

// ValidateBrightness checks a brightness factor.
func ValidateBrightness(b float64) error {
	if math.IsNaN(b) || b < MinBrightness || b > MaxBrightness {
		return fmt.Errorf("brightness %.2f out of range [%.1f, %.1f]", b, MinBrightness, MaxBrightness)
	}
	return nil
}

// Render returns the file content. The layout is fixed; only values change.
func (s Settings) Render() string {
	method := s.AdjustmentMethod
	if method == "" {
		method = DefaultAdjustmentMethod
	}
	transition := 0
	if s.Transition {
		transition = 1
	}

	var b strings.Builder
	b.WriteString("[redshift]\n")
	fmt.Fprintf(&b, "temp-day=%d\n", s.TempDay)
	fmt.Fprintf(&b, "temp-night=%d\n", s.TempNight)
	fmt.Fprintf(&b, "brightness-day=%s\n", FormatBrightness(s.BrightnessDay))
	fmt.Fprintf(&b, "brightness-night=%s\n", FormatBrightness(s.BrightnessNight))
	fmt.Fprintf(&b, "transition=%d\n", transition)
	b.WriteString("location-provider=manual\n")
	fmt.Fprintf(&b, "adjustment-method=%s\n", method)
	b.WriteString("[manual]\n")
	fmt.Fprintf(&b, "lat=%s\n", strconv.FormatFloat(s.Latitude, 'f', -1, 64))
	fmt.Fprintf(&b, "lon=%s\n", strconv.FormatFloat(s.Longitude, 'f', -1, 64))
	return b.String()
}

// FormatBrightness formats a brightness factor the way it is stored.
func FormatBrightness(b float64) string {
	return strconv.FormatFloat(b, 'f', 2, 64)
}

// Write overwrites path with the rendered settings.
func (s Settings) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(s.Render()), 0644); err != nil {
		return fmt.Errorf("failed to write redshift config: %w", err)
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads settings from path. A missing file yields defaults and
// found=false. A file that cannot be parsed yields defaults and an error;
// individual keys that cannot be read fall back silently to their default.
//
// Night values are preferred over day values because the night preset is
// the one users tune.
func Load(path string, logger *log.Logger) (Settings, bool, error) {
	s := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return s, false, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return s, true, fmt.Errorf("failed to parse redshift config: %w", err)
	}

	sec, err := f.GetSection(sectionRedshift)
	if err != nil {
		if logger != nil {
			logger.Warn("section not found, using defaults", "section", sectionRedshift, "path", path)
		}
		return s, true, nil
	}

	temp := readInt(sec, logger, DefaultTemperature, "temp-night", "temp-day")
	brightness := readFloat(sec, logger, DefaultBrightness, "brightness-night", "brightness-day")
	s.TempNight = temp
	s.BrightnessNight = brightness
	s.TempDay = readInt(sec, logger, temp, "temp-day")
	s.BrightnessDay = readFloat(sec, logger, brightness, "brightness-day")

	if sec.HasKey("transition") {
		if v, err := sec.Key("transition").Int(); err == nil {
			s.Transition = v != 0
		} else if v, err := sec.Key("transition").Bool(); err == nil {
			s.Transition = v
		}
	}
	if sec.HasKey("adjustment-method") {
		if v := strings.TrimSpace(sec.Key("adjustment-method").String()); v != "" {
			s.AdjustmentMethod = v
		}
	}

	if manual, err := f.GetSection(sectionManual); err == nil {
		s.Latitude = readFloat(manual, logger, 0, "lat")
		s.Longitude = readFloat(manual, logger, 0, "lon")
	}

	return s, true, nil
}

// readInt returns the first key that parses as an int, or def.
func readInt(sec *ini.Section, logger *log.Logger, def int, keys ...string) int {
	for _, k := range keys {
		if !sec.HasKey(k) {
			continue
		}
		v, err := sec.Key(k).Int()
		if err == nil {
			return v
		}
		if logger != nil {
			logger.Warn("ignoring malformed value", "key", k, "value", sec.Key(k).String())
		}
	}
	return def
}

// readFloat returns the first key that parses as a float, or def.
func readFloat(sec *ini.Section, logger *log.Logger, def float64, keys ...string) float64 {
	for _, k := range keys {
		if !sec.HasKey(k) {
			continue
		}
		v, err := sec.Key(k).Float64()
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
		if logger != nil {
			logger.Warn("ignoring malformed value", "key", k, "value", sec.Key(k).String())
		}
	}
	return def
}
