// Package theme lists installed desktop themes and detects the active mode.
package theme

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/config"
	"github.com/darkawower/duskctl/internal/platform"
)

// Installed scans dirs for themes usable by GTK. An entry counts when it
// has a gtk-3.0 subdirectory or an index.theme file. The default day and
// night themes are always part of the result, which is sorted and unique.
func Installed(dirs []string, logger *log.Logger) []string {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	seen := map[string]bool{
		config.DefaultDayTheme:   true,
		config.DefaultNightTheme: true,
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("cannot read theme directory", "dir", dir, "err", err)
			}
			continue
		}
		for _, e := range entries {
			if isTheme(filepath.Join(dir, e.Name())) {
				seen[e.Name()] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isTheme(path string) bool {
	// Stat follows symlinked theme directories.
	if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		return false
	}
	if fi, err := os.Stat(filepath.Join(path, "gtk-3.0")); err == nil && fi.IsDir() {
		return true
	}
	if fi, err := os.Stat(filepath.Join(path, "index.theme")); err == nil && !fi.IsDir() {
		return true
	}
	return false
}

// Resolve picks preferred if installed, else fallback if installed, else the
// first installed theme. With no installed themes preferred is returned.
func Resolve(preferred, fallback string, installed []string) string {
	if len(installed) == 0 {
		return preferred
	}
	if contains(installed, preferred) {
		return preferred
	}
	if contains(installed, fallback) {
		return fallback
	}
	return installed[0]
}

func contains(list []string, name string) bool {
	if name == "" {
		return false
	}
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// ModeOf classifies a theme name: names containing "dark" are night themes.
func ModeOf(name string) config.Mode {
	if strings.Contains(strings.ToLower(name), "dark") {
		return config.ModeNight
	}
	return config.ModeDay
}

// Detector detects the current mode from the desktop theme.
type Detector struct {
	svc    platform.DesktopService
	getenv func(string) string
}

// NewDetector creates a new mode detector.
func NewDetector(svc platform.DesktopService) *Detector {
	return &Detector{
		svc:    svc,
		getenv: os.Getenv,
	}
}

// Detect returns the mode implied by the active GTK theme, falling back to
// GTK_THEME and then to day.
func (d *Detector) Detect(ctx context.Context) config.Mode {
	if d.svc != nil {
		if current, err := d.svc.CurrentTheme(ctx); err == nil && current.GTK != "" {
			return ModeOf(current.GTK)
		}
	}

	if env := d.getenv("GTK_THEME"); env != "" {
		// GTK_THEME may carry a variant suffix, as in "Adwaita:dark".
		return ModeOf(env)
	}

	return config.ModeDay
}
