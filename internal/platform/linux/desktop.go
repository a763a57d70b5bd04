package linux

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/platform"
)

// DesktopService implements platform.DesktopService with gsettings.
type DesktopService struct {
	runner    exec.Runner
	logger    *log.Logger
	gtkSchema string
	gtkKey    string
	wmSchema  string
	wmKey     string
}

// NewDesktopService creates a gsettings-backed desktop service.
func NewDesktopService(opts platform.Options) *DesktopService {
	return &DesktopService{
		runner:    opts.Runner,
		logger:    opts.Logger,
		gtkSchema: opts.GTKSchema,
		gtkKey:    opts.GTKKey,
		wmSchema:  opts.WMSchema,
		wmKey:     opts.WMKey,
	}
}

// SetTheme writes the GTK theme, then the window manager theme.
func (s *DesktopService) SetTheme(ctx context.Context, theme platform.DesktopTheme) error {
	if err := s.set(ctx, s.gtkSchema, s.gtkKey, theme.GTK); err != nil {
		return fmt.Errorf("failed to apply GTK theme %s: %w", theme.GTK, err)
	}

	if err := s.set(ctx, s.wmSchema, s.wmKey, theme.WindowManager); err != nil {
		s.logger.Warn("window manager theme not applied", "theme", theme.WindowManager, "err", err)
		return fmt.Errorf("%w: %s: %v", platform.ErrPartialTheme, theme.WindowManager, err)
	}

	return nil
}

// CurrentTheme reads both theme keys.
func (s *DesktopService) CurrentTheme(ctx context.Context) (platform.DesktopTheme, error) {
	gtk, err := s.get(ctx, s.gtkSchema, s.gtkKey)
	if err != nil {
		return platform.DesktopTheme{}, fmt.Errorf("failed to read GTK theme: %w", err)
	}

	wm, err := s.get(ctx, s.wmSchema, s.wmKey)
	if err != nil {
		// Some sessions have no window manager schema installed.
		s.logger.Debug("window manager theme unavailable", "err", err)
	}

	return platform.DesktopTheme{GTK: gtk, WindowManager: wm}, nil
}

func (s *DesktopService) set(ctx context.Context, schema, key, value string) error {
	res := s.runner.Run(ctx, "gsettings", "set", schema, key, value)
	return gsettingsError(res)
}

func (s *DesktopService) get(ctx context.Context, schema, key string) (string, error) {
	res := s.runner.Run(ctx, "gsettings", "get", schema, key)
	if err := gsettingsError(res); err != nil {
		return "", err
	}
	return unquote(res.Stdout), nil
}

func gsettingsError(res *exec.Result) error {
	if res.OK() {
		return nil
	}
	if res.NotFound() {
		return fmt.Errorf("gsettings not found: %w", res.Err)
	}
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return fmt.Errorf("%w (output: %s)", res.Err, msg)
	}
	return res.Err
}

// unquote strips the GVariant string quoting gsettings prints.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"') {
		s = s[1 : len(s)-1]
	}
	return s
}
