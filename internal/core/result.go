// Package core provides the main business logic for duskctl.
package core

import (
	"time"

	"github.com/darkawower/duskctl/internal/config"
	"github.com/darkawower/duskctl/internal/platform"
	"github.com/darkawower/duskctl/internal/redshift"
	"github.com/darkawower/duskctl/internal/state"
)

// RedshiftAction is what a switch did to the redshift daemon.
type RedshiftAction string

const (
	RedshiftStopped        RedshiftAction = "stopped"
	RedshiftStarted        RedshiftAction = "started"
	RedshiftAlreadyRunning RedshiftAction = "already-running"
	RedshiftRestarted      RedshiftAction = "restarted"
	RedshiftNeutral        RedshiftAction = "neutral"
)

// ModeResult represents the result of a day or night switch.
type ModeResult struct {
	// Mode is the preset that was applied.
	Mode config.Mode

	// Theme is the theme name written for GTK and the window manager.
	Theme string

	// Redshift is what happened to the daemon.
	Redshift RedshiftAction

	// CreatedConfig is set when redshift.conf had to be written first.
	CreatedConfig bool

	// Warnings are non-fatal problems, such as a window manager theme
	// that could not be set.
	Warnings []string

	// DryRun indicates that nothing was changed.
	DryRun bool

	// At is when the switch happened.
	At time.Time
}

// ApplyResult represents the result of writing manual redshift values.
type ApplyResult struct {
	Temperature int
	Brightness  float64
	ConfigPath  string
	Warnings    []string
	DryRun      bool
}

// StartupResult represents what Startup did.
type StartupResult struct {
	CreatedConfig bool
	Redshift      RedshiftAction
	Warnings      []string
	DryRun        bool
}

// ThemesResult lists installed themes and the selection per mode.
type ThemesResult struct {
	Installed []string `json:"installed" yaml:"installed"`
	Day       string   `json:"day" yaml:"day"`
	Night     string   `json:"night" yaml:"night"`
}

// SolarInfo describes the sun position used by the auto loop.
type SolarInfo struct {
	Elevation float64     `json:"elevation" yaml:"elevation"`
	Mode      config.Mode `json:"mode" yaml:"mode"`
	Sunrise   time.Time   `json:"sunrise" yaml:"sunrise"`
	Sunset    time.Time   `json:"sunset" yaml:"sunset"`

	// InTransition is set while the sun is between the two thresholds.
	InTransition bool `json:"in_transition" yaml:"in_transition"`

	// Progress runs from 0 at night to 1 at day.
	Progress float64 `json:"progress" yaml:"progress"`

	// Temperature is the preferred night temperature blended towards
	// neutral by Progress.
	Temperature int `json:"temperature" yaml:"temperature"`
}

// RedshiftInfo describes the daemon and its configuration file.
type RedshiftInfo struct {
	DaemonRunning bool              `json:"daemon_running" yaml:"daemon_running"`
	CoreRunning   bool              `json:"core_running" yaml:"core_running"`
	ConfigPath    string            `json:"config_path" yaml:"config_path"`
	ConfigFound   bool              `json:"config_found" yaml:"config_found"`
	Settings      redshift.Settings `json:"settings" yaml:"settings"`
}

// StatusInfo is a snapshot of everything duskctl controls.
type StatusInfo struct {
	Platform string                `json:"platform" yaml:"platform"`
	Mode     config.Mode           `json:"mode" yaml:"mode"`
	Desktop  platform.DesktopTheme `json:"desktop" yaml:"desktop"`
	Redshift RedshiftInfo          `json:"redshift" yaml:"redshift"`
	Themes   ThemesConfigView      `json:"themes" yaml:"themes"`
	Last     *state.Switch         `json:"last,omitempty" yaml:"last,omitempty"`
	Solar    *SolarInfo            `json:"solar,omitempty" yaml:"solar,omitempty"`
	Warnings []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ThemesConfigView is the preferred theme per mode.
type ThemesConfigView struct {
	Day   string `json:"day" yaml:"day"`
	Night string `json:"night" yaml:"night"`
}

// AutostartStatus represents the status of the login autostart entry.
type AutostartStatus struct {
	// Supported indicates if autostart is supported on this platform.
	Supported bool

	// Installed indicates if the entry exists.
	Installed bool

	// Enabled indicates if the session manager will run it.
	Enabled bool

	// Command is the configured command line.
	Command string

	// Path is the entry file location.
	Path string
}
