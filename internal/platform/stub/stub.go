// Package stub provides a fallback platform implementation for unsupported systems.
package stub

import (
	"context"
	"fmt"
	"runtime"

	"github.com/darkawower/duskctl/internal/platform"
)

func init() {
	// Register stub as fallback for unsupported platforms
	// This will be overridden if a specific platform registers itself
	for _, os := range []string{"freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "aix"} {
		platform.Register(os, func(opts platform.Options) platform.Platform {
			return New()
		})
	}
}

// Platform implements platform.Platform as a fallback for unsupported systems.
type Platform struct {
	name string
}

// New creates a new stub platform instance.
func New() *Platform {
	return &Platform{
		name: runtime.GOOS,
	}
}

// Name returns the platform identifier.
func (p *Platform) Name() string {
	return p.name
}

// IsSupported returns false as this is a fallback implementation.
func (p *Platform) IsSupported() bool {
	return false
}

// Desktop returns the desktop service (stub).
func (p *Platform) Desktop() platform.DesktopService {
	return &stubDesktopService{}
}

// Autostart returns the autostart service (stub).
func (p *Platform) Autostart() platform.AutostartService {
	return &stubAutostartService{}
}

// Notifier returns the notification service (stub).
func (p *Platform) Notifier() platform.NotifierService {
	return &stubNotifierService{}
}

// Compile-time check that Platform implements platform.Platform.
var _ platform.Platform = (*Platform)(nil)

// stubDesktopService cannot change themes.
type stubDesktopService struct{}

func (s *stubDesktopService) SetTheme(ctx context.Context, theme platform.DesktopTheme) error {
	return fmt.Errorf("theme switching not supported on %s", runtime.GOOS)
}

func (s *stubDesktopService) CurrentTheme(ctx context.Context) (platform.DesktopTheme, error) {
	return platform.DesktopTheme{}, fmt.Errorf("theme detection not supported on %s", runtime.GOOS)
}

// stubAutostartService is a no-op autostart service.
type stubAutostartService struct{}

func (s *stubAutostartService) Install(config platform.AutostartConfig) error {
	return fmt.Errorf("autostart not supported on %s", runtime.GOOS)
}

func (s *stubAutostartService) Uninstall(label string) error {
	return fmt.Errorf("autostart not supported on %s", runtime.GOOS)
}

func (s *stubAutostartService) Status(label string) (platform.AutostartStatus, error) {
	return platform.AutostartStatus{}, fmt.Errorf("autostart not supported on %s", runtime.GOOS)
}

func (s *stubAutostartService) IsSupported() bool {
	return false
}

// stubNotifierService drops notifications.
type stubNotifierService struct{}

func (s *stubNotifierService) Notify(ctx context.Context, summary, body string) error {
	return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
}
