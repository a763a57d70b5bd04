package linux

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/darkawower/duskctl/internal/platform"
	"gopkg.in/ini.v1"
)

const desktopEntryTemplate = `[Desktop Entry]
Type=Application
Name=%s
Comment=Switch between day and night presets
Exec=%s
Terminal=false
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
X-MATE-Autostart-enabled=true
`

const desktopEntrySection = "Desktop Entry"

// AutostartService implements platform.AutostartService with XDG autostart
// entries.
type AutostartService struct {
	dir string
}

// NewAutostartService creates an autostart service writing into dir. An
// empty dir selects $XDG_CONFIG_HOME/autostart.
func NewAutostartService(dir string) *AutostartService {
	return &AutostartService{dir: dir}
}

// IsSupported returns true.
func (s *AutostartService) IsSupported() bool {
	return true
}

// Install writes the autostart entry, replacing an existing one.
func (s *AutostartService) Install(config platform.AutostartConfig) error {
	path, err := s.entryPath(config.Label)
	if err != nil {
		return fmt.Errorf("failed to get autostart path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}

	name := config.Name
	if name == "" {
		name = config.Label
	}

	content := fmt.Sprintf(desktopEntryTemplate, name, execLine(config.Command, config.Args))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}

	return nil
}

// Uninstall removes the autostart entry.
func (s *AutostartService) Uninstall(label string) error {
	path, err := s.entryPath(label)
	if err != nil {
		return fmt.Errorf("failed to get autostart path: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}

	return nil
}

// Status returns the current status of the autostart entry.
func (s *AutostartService) Status(label string) (platform.AutostartStatus, error) {
	path, err := s.entryPath(label)
	if err != nil {
		return platform.AutostartStatus{}, fmt.Errorf("failed to get autostart path: %w", err)
	}

	status := platform.AutostartStatus{Path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	status.Installed = true

	command, enabled, err := s.parseEntry(path)
	if err != nil {
		return status, err
	}
	status.Command = command
	status.Enabled = enabled

	return status, nil
}

// entryPath returns the .desktop path for a label.
func (s *AutostartService) entryPath(label string) (string, error) {
	if label == "" {
		return "", fmt.Errorf("label is required")
	}
	dir := s.dir
	if dir == "" {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
		dir = filepath.Join(base, "autostart")
	}
	return filepath.Join(dir, label+".desktop"), nil
}

// parseEntry extracts the Exec line and whether the entry is active.
func (s *AutostartService) parseEntry(path string) (string, bool, error) {
	f, err := ini.Load(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse autostart entry: %w", err)
	}

	sec, err := f.GetSection(desktopEntrySection)
	if err != nil {
		return "", false, fmt.Errorf("autostart entry has no [%s] section", desktopEntrySection)
	}

	enabled := true
	if sec.Key("Hidden").MustBool(false) {
		enabled = false
	}
	for _, key := range []string{"X-GNOME-Autostart-enabled", "X-MATE-Autostart-enabled"} {
		if sec.HasKey(key) && !sec.Key(key).MustBool(true) {
			enabled = false
		}
	}

	return sec.Key("Exec").String(), enabled, nil
}

// execLine builds an Exec value, quoting arguments that need it.
func execLine(command string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{command}, args...) {
		if strings.ContainsAny(p, " \t\"'\\$`") {
			r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
			p = `"` + r.Replace(p) + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
