// Package platform provides OS-agnostic abstractions for desktop operations.
package platform

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/exec"
)

// ErrPartialTheme is returned when the GTK theme was applied but the window
// manager theme was not.
var ErrPartialTheme = errors.New("window manager theme not applied")

// Platform provides access to OS-specific services.
type Platform interface {
	// Name returns the platform identifier (e.g., "linux").
	Name() string

	// IsSupported returns true if this platform is fully supported.
	IsSupported() bool

	// Desktop returns the desktop theme service.
	Desktop() DesktopService

	// Autostart returns the login autostart service.
	Autostart() AutostartService

	// Notifier returns the desktop notification service.
	Notifier() NotifierService
}

// DesktopTheme is the pair of theme names a desktop applies.
type DesktopTheme struct {
	GTK           string `json:"gtk" yaml:"gtk"`
	WindowManager string `json:"window_manager" yaml:"window_manager"`
}

// Same returns a DesktopTheme using name for both parts.
func Same(name string) DesktopTheme {
	return DesktopTheme{GTK: name, WindowManager: name}
}

// DesktopService reads and writes the desktop theme.
type DesktopService interface {
	// SetTheme applies the GTK and window manager themes. A failure on the
	// window manager part alone is reported as ErrPartialTheme.
	SetTheme(ctx context.Context, theme DesktopTheme) error

	// CurrentTheme returns the active theme names.
	CurrentTheme(ctx context.Context) (DesktopTheme, error)
}

// AutostartService manages starting a command at login.
type AutostartService interface {
	// Install installs an autostart entry with the given configuration.
	Install(config AutostartConfig) error

	// Uninstall removes the autostart entry by label.
	Uninstall(label string) error

	// Status returns the current status of the autostart entry by label.
	Status(label string) (AutostartStatus, error)

	// IsSupported returns true if autostart is supported on this platform.
	IsSupported() bool
}

// AutostartConfig holds configuration for an autostart entry.
type AutostartConfig struct {
	// Label is the unique identifier for the entry.
	Label string

	// Name is the human readable name shown by session managers.
	Name string

	// Command is the executable path.
	Command string

	// Args are the command arguments.
	Args []string
}

// AutostartStatus represents the state of an autostart entry.
type AutostartStatus struct {
	// Installed indicates whether the entry exists.
	Installed bool

	// Enabled indicates whether the session manager will run it.
	Enabled bool

	// Command is the configured command line.
	Command string

	// Path is the entry file location.
	Path string
}

// NotifierService shows desktop notifications.
type NotifierService interface {
	// Notify shows a notification with a summary and body.
	Notify(ctx context.Context, summary, body string) error
}

// Options configures platform construction.
type Options struct {
	// GTKSchema and GTKKey locate the GTK theme setting.
	GTKSchema string
	GTKKey    string

	// WMSchema and WMKey locate the window manager theme setting.
	WMSchema string
	WMKey    string

	// Runner executes external commands.
	Runner exec.Runner

	// Logger receives debug output.
	Logger *log.Logger
}
