package linux

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	dexec "github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/exec/exectest"
	"github.com/darkawower/duskctl/internal/platform"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(runner *exectest.Runner) platform.Options {
	return platform.Options{
		GTKSchema: "org.mate.interface",
		GTKKey:    "gtk-theme",
		WMSchema:  "org.mate.Marco.general",
		WMKey:     "theme",
		Runner:    runner,
	}
}

func TestPlatform(t *testing.T) {
	p := New(testOptions(exectest.New()))

	assert.Equal(t, "linux", p.Name())
	assert.True(t, p.IsSupported())
	assert.NotNil(t, p.Desktop())
	assert.NotNil(t, p.Autostart())
	assert.NotNil(t, p.Notifier())
}

func TestRegistered(t *testing.T) {
	p := platform.NewFor("linux", testOptions(exectest.New()))
	assert.Equal(t, "linux", p.Name())
	assert.True(t, p.IsSupported())
}

func TestDesktop_SetTheme(t *testing.T) {
	runner := exectest.New()
	p := New(testOptions(runner))

	err := p.Desktop().SetTheme(context.Background(), platform.Same("Ambiant-MATE-Dark"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"gsettings set org.mate.interface gtk-theme Ambiant-MATE-Dark",
		"gsettings set org.mate.Marco.general theme Ambiant-MATE-Dark",
	}, runner.CommandLines())
}

func TestDesktop_SetTheme_GTKFailure(t *testing.T) {
	runner := exectest.New().
		On("gsettings set org.mate.interface gtk-theme Nope", exectest.Exit(1, "No such schema"))
	p := New(testOptions(runner))

	err := p.Desktop().SetTheme(context.Background(), platform.Same("Nope"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, platform.ErrPartialTheme))
	assert.Contains(t, err.Error(), "No such schema")
	assert.Len(t, runner.Calls(), 1, "window manager theme must not be attempted")
}

func TestDesktop_SetTheme_WMFailure(t *testing.T) {
	runner := exectest.New().
		On("gsettings set org.mate.Marco.general theme Adwaita", exectest.Exit(1, "No such schema"))
	p := New(testOptions(runner))

	err := p.Desktop().SetTheme(context.Background(), platform.Same("Adwaita"))
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrPartialTheme)
	assert.Len(t, runner.Calls(), 2)
}

func TestDesktop_SetTheme_NoGsettings(t *testing.T) {
	runner := exectest.New()
	runner.Handler = func(name string, args []string) *dexec.Result {
		return exectest.NotFound(name)
	}
	p := New(testOptions(runner))

	err := p.Desktop().SetTheme(context.Background(), platform.Same("Adwaita"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gsettings not found")
}

func TestDesktop_CurrentTheme(t *testing.T) {
	runner := exectest.New().
		On("gsettings get org.mate.interface gtk-theme", exectest.OK("'Ambiant-MATE-Dark'\n")).
		On("gsettings get org.mate.Marco.general theme", exectest.OK("'Ambiant-MATE'\n"))
	p := New(testOptions(runner))

	theme, err := p.Desktop().CurrentTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, platform.DesktopTheme{GTK: "Ambiant-MATE-Dark", WindowManager: "Ambiant-MATE"}, theme)
}

func TestDesktop_CurrentTheme_NoWMSchema(t *testing.T) {
	runner := exectest.New().
		On("gsettings get org.mate.interface gtk-theme", exectest.OK("'Adwaita'\n")).
		On("gsettings get org.mate.Marco.general theme", exectest.Exit(1, "No such schema"))
	p := New(testOptions(runner))

	theme, err := p.Desktop().CurrentTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Adwaita", theme.GTK)
	assert.Empty(t, theme.WindowManager)
}

func TestDesktop_CurrentTheme_GTKFailure(t *testing.T) {
	runner := exectest.New().
		On("gsettings get org.mate.interface gtk-theme", exectest.Exit(1, "No such schema"))
	p := New(testOptions(runner))

	_, err := p.Desktop().CurrentTheme(context.Background())
	require.Error(t, err)
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"'Adwaita'\n", "Adwaita"},
		{`"Adwaita"`, "Adwaita"},
		{"Adwaita", "Adwaita"},
		{"''", ""},
		{"'", "'"},
		{"  'Ambiant-MATE'  ", "Ambiant-MATE"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, unquote(tt.in))
		})
	}
}

func TestAutostart_InstallStatusUninstall(t *testing.T) {
	dir := t.TempDir()
	svc := NewAutostartService(dir)
	assert.True(t, svc.IsSupported())

	status, err := svc.Status("duskctl")
	require.NoError(t, err)
	assert.False(t, status.Installed)
	assert.Equal(t, filepath.Join(dir, "duskctl.desktop"), status.Path)

	err = svc.Install(platform.AutostartConfig{
		Label:   "duskctl",
		Name:    "Dusk",
		Command: "/usr/local/bin/duskctl",
		Args:    []string{"auto", "--config", "/home/me/my prefs.toml"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "duskctl.desktop"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "[Desktop Entry]\n"))
	assert.Contains(t, content, "Name=Dusk\n")
	assert.Contains(t, content, "X-MATE-Autostart-enabled=true\n")

	status, err = svc.Status("duskctl")
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.True(t, status.Enabled)
	assert.Contains(t, status.Command, "/usr/local/bin/duskctl auto --config")
	assert.Contains(t, status.Command, "my prefs.toml")

	require.NoError(t, svc.Uninstall("duskctl"))
	status, err = svc.Status("duskctl")
	require.NoError(t, err)
	assert.False(t, status.Installed)

	// Removing twice is not an error.
	require.NoError(t, svc.Uninstall("duskctl"))
}

func TestAutostart_DisabledEntry(t *testing.T) {
	dir := t.TempDir()
	content := "[Desktop Entry]\nType=Application\nExec=duskctl auto\nX-GNOME-Autostart-enabled=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duskctl.desktop"), []byte(content), 0644))

	status, err := NewAutostartService(dir).Status("duskctl")
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.False(t, status.Enabled)
	assert.Equal(t, "duskctl auto", status.Command)
}

func TestAutostart_XDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	svc := NewAutostartService("")
	require.NoError(t, svc.Install(platform.AutostartConfig{Label: "duskctl", Command: "duskctl", Args: []string{"auto"}}))

	_, err := os.Stat(filepath.Join(base, "autostart", "duskctl.desktop"))
	assert.NoError(t, err)
}

func TestAutostart_EmptyLabel(t *testing.T) {
	svc := NewAutostartService(t.TempDir())

	assert.Error(t, svc.Install(platform.AutostartConfig{Command: "duskctl"}))
	assert.Error(t, svc.Uninstall(""))
	_, err := svc.Status("")
	assert.Error(t, err)
}

func TestExecLine(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    string
	}{
		{"plain", "duskctl", []string{"auto"}, "duskctl auto"},
		{"space", "duskctl", []string{"--config", "/a b/c.toml"}, `duskctl --config "/a b/c.toml"`},
		{"dollar", "/opt/$x/duskctl", nil, `"/opt/\$x/duskctl"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, execLine(tt.command, tt.args))
		})
	}
}

func TestNotifier_NoSessionBus(t *testing.T) {
	svc := NewNotifierService(log.New(io.Discard))
	svc.bus = func() (*dbus.Conn, error) {
		return nil, errors.New("no bus")
	}

	err := svc.Notify(context.Background(), "Night", "Ambiant-MATE-Dark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session bus")
}
