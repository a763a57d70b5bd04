// Package linux provides Linux desktop platform implementations.
package linux

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/platform"
)

func init() {
	platform.Register("linux", func(opts platform.Options) platform.Platform {
		return New(opts)
	})
}

// Platform implements platform.Platform for Linux desktops.
type Platform struct {
	desktop   *DesktopService
	autostart *AutostartService
	notifier  *NotifierService
}

// New creates a new Linux platform instance.
func New(opts platform.Options) *Platform {
	if opts.Runner == nil {
		opts.Runner = exec.NewSystemRunner(exec.Options{Logger: opts.Logger})
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Platform{
		desktop:   NewDesktopService(opts),
		autostart: NewAutostartService(""),
		notifier:  NewNotifierService(opts.Logger),
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return "linux"
}

// IsSupported returns true as Linux desktops are fully supported.
func (p *Platform) IsSupported() bool {
	return true
}

// Desktop returns the desktop theme service.
func (p *Platform) Desktop() platform.DesktopService {
	return p.desktop
}

// Autostart returns the login autostart service.
func (p *Platform) Autostart() platform.AutostartService {
	return p.autostart
}

// Notifier returns the notification service.
func (p *Platform) Notifier() platform.NotifierService {
	return p.notifier
}

// Compile-time check that Platform implements platform.Platform.
var _ platform.Platform = (*Platform)(nil)
