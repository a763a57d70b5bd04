package platform

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrUnsupported is returned when an operation is not supported on the current platform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// Builder creates a Platform.
type Builder func(opts Options) Platform

var (
	registry     = make(map[string]Builder)
	registryLock sync.RWMutex
)

// Register registers a platform builder for the given OS.
// Should be called from init() in platform-specific packages.
func Register(osName string, builder Builder) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[osName] = builder
}

// New creates the platform registered for the running OS.
func New(opts Options) Platform {
	return NewFor(runtime.GOOS, opts)
}

// NewFor creates the platform registered for osName.
func NewFor(osName string, opts Options) Platform {
	registryLock.RLock()
	builder, ok := registry[osName]
	registryLock.RUnlock()

	if ok {
		return builder(opts)
	}
	return &unsupportedPlatform{name: osName}
}

// unsupportedPlatform is returned when no platform implementation is registered.
type unsupportedPlatform struct {
	name string
}

func (p *unsupportedPlatform) Name() string                { return p.name }
func (p *unsupportedPlatform) IsSupported() bool           { return false }
func (p *unsupportedPlatform) Desktop() DesktopService     { return &unsupportedDesktop{} }
func (p *unsupportedPlatform) Autostart() AutostartService { return &unsupportedAutostart{} }
func (p *unsupportedPlatform) Notifier() NotifierService   { return &unsupportedNotifier{} }

type unsupportedDesktop struct{}

func (s *unsupportedDesktop) SetTheme(ctx context.Context, theme DesktopTheme) error {
	return ErrUnsupported
}
func (s *unsupportedDesktop) CurrentTheme(ctx context.Context) (DesktopTheme, error) {
	return DesktopTheme{}, ErrUnsupported
}

type unsupportedAutostart struct{}

func (s *unsupportedAutostart) Install(config AutostartConfig) error { return ErrUnsupported }
func (s *unsupportedAutostart) Uninstall(label string) error         { return ErrUnsupported }
func (s *unsupportedAutostart) Status(label string) (AutostartStatus, error) {
	return AutostartStatus{}, ErrUnsupported
}
func (s *unsupportedAutostart) IsSupported() bool { return false }

type unsupportedNotifier struct{}

func (s *unsupportedNotifier) Notify(ctx context.Context, summary, body string) error {
	return ErrUnsupported
}
