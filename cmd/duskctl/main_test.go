package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/darkawower/duskctl/internal/config"
	"github.com/darkawower/duskctl/internal/core"
	"github.com/darkawower/duskctl/internal/platform"
	"github.com/darkawower/duskctl/internal/redshift"
	"github.com/darkawower/duskctl/internal/state"
	"github.com/darkawower/duskctl/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out = ui.NewOutput(&buf)
	out.SetNoColor(true)
	t.Cleanup(func() { out = nil })
	return &buf
}

func TestShortenPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "~/.config/redshift.conf", shortenPath(filepath.Join(home, ".config", "redshift.conf")))
	assert.Equal(t, "/var/log/test.log", shortenPath("/var/log/test.log"))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"init", "day", "night", "apply", "quit", "restart", "start",
		"status", "themes", "auto", "autostart", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"config", "dry-run", "verbose", "quiet", "no-color", "notify"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestDayAliases(t *testing.T) {
	root := newRootCmd()

	cmd, _, err := root.Find([]string{"sun"})
	require.NoError(t, err)
	assert.Equal(t, "day", cmd.Name())

	cmd, _, err = root.Find([]string{"moon"})
	require.NoError(t, err)
	assert.Equal(t, "night", cmd.Name())
}

func TestDescribeAction(t *testing.T) {
	tests := []struct {
		action   core.RedshiftAction
		expected string
	}{
		{core.RedshiftStopped, "stopped"},
		{core.RedshiftStarted, "started"},
		{core.RedshiftAlreadyRunning, "already running"},
		{core.RedshiftRestarted, "restarted"},
		{core.RedshiftNeutral, "neutral (6500K)"},
		{core.RedshiftAction("other"), "other"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.expected, describeAction(tt.action))
		})
	}
}

func TestPrintModeResult(t *testing.T) {
	buf := captureOutput(t)

	printModeResult(&core.ModeResult{
		Mode:     config.ModeNight,
		Theme:    "Ambiant-MATE-Dark",
		Redshift: core.RedshiftStarted,
		Warnings: []string{"window manager theme not applied"},
	})

	text := buf.String()
	assert.Contains(t, text, "Night → Ambiant-MATE-Dark")
	assert.Contains(t, text, "Redshift: started")
	assert.Contains(t, text, "⚠ window manager theme not applied")
}

func TestPrintModeResult_DryRun(t *testing.T) {
	buf := captureOutput(t)

	printModeResult(&core.ModeResult{
		Mode:          config.ModeDay,
		Theme:         "Ambiant-MATE",
		Redshift:      core.RedshiftStopped,
		CreatedConfig: true,
		DryRun:        true,
	})

	text := buf.String()
	assert.Contains(t, text, "Would switch to day")
	assert.Contains(t, text, "Create: redshift.conf")
}

func TestThemeRows(t *testing.T) {
	rows := themeRows(core.ThemesResult{
		Installed: []string{"Adwaita", "Ambiant-MATE", "Ambiant-MATE-Dark"},
		Day:       "Ambiant-MATE",
		Night:     "Ambiant-MATE-Dark",
	})

	assert.Equal(t, [][]string{
		{"Adwaita", "", "day"},
		{"Ambiant-MATE", "day", "day"},
		{"Ambiant-MATE-Dark", "night", "night"},
	}, rows)
}

func sampleStatus() *core.StatusInfo {
	return &core.StatusInfo{
		Platform: "linux",
		Mode:     config.ModeNight,
		Desktop:  platform.Same("Ambiant-MATE-Dark"),
		Redshift: core.RedshiftInfo{
			DaemonRunning: true,
			CoreRunning:   true,
			ConfigPath:    "/tmp/redshift.conf",
			ConfigFound:   true,
			Settings:      redshift.Uniform(4500, 0.8),
		},
		Themes: core.ThemesConfigView{Day: "Ambiant-MATE", Night: "Ambiant-MATE-Dark"},
		Last: &state.Switch{
			Mode:     "night",
			Theme:    "Ambiant-MATE-Dark",
			Redshift: "started",
			Trigger:  state.TriggerManual,
			At:       time.Date(2024, 3, 20, 21, 0, 0, 0, time.UTC),
		},
	}
}

func TestPrintStatus(t *testing.T) {
	buf := captureOutput(t)
	info := sampleStatus()

	printStatus(info, info.Last.At.Add(3*time.Hour))

	text := buf.String()
	assert.Contains(t, text, "Night → Ambiant-MATE-Dark")
	assert.Contains(t, text, "redshift-gtk: running")
	assert.Contains(t, text, "Night: 4500K at 0.80")
	assert.NotContains(t, text, "  Day: ")
	assert.Contains(t, text, "3 hours ago")
	assert.Contains(t, text, "Trigger: manual")
}

func TestPrintStatus_NoConfig(t *testing.T) {
	buf := captureOutput(t)
	info := sampleStatus()
	info.Redshift.ConfigFound = false
	info.Last = nil
	info.Warnings = []string{"pgrep not found, daemon status unknown"}

	printStatus(info, time.Now())

	text := buf.String()
	assert.Contains(t, text, "Config: not created yet")
	assert.NotContains(t, text, "Last switch")
	assert.Contains(t, text, "pgrep not found")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleStatus()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "night", decoded["mode"])

	rs := decoded["redshift"].(map[string]interface{})
	assert.Equal(t, true, rs["daemon_running"])
	settings := rs["settings"].(map[string]interface{})
	assert.Equal(t, 4500.0, settings["temp_night"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, sampleStatus()))

	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "platform: linux\n"))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "night", decoded["mode"])
	desktop := decoded["desktop"].(map[string]interface{})
	assert.Equal(t, "Ambiant-MATE-Dark", desktop["window_manager"])
}

func TestStatusCmd_InvalidFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"status", "--output", "xml", "--no-color"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestThemesSetCmd_InvalidMode(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"themes", "set", "dusk", "Adwaita"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestSetupLogger(t *testing.T) {
	defer func() { verbose, quiet = false, false }()

	verbose = true
	setupLogger()
	assert.Equal(t, "debug", logger.GetLevel().String())

	verbose, quiet = false, true
	setupLogger()
	assert.Equal(t, "warn", logger.GetLevel().String())
}

func TestPrintStartupResult(t *testing.T) {
	tests := []struct {
		name     string
		result   core.StartupResult
		contains []string
		absent   []string
	}{
		{
			name:     "started",
			result:   core.StartupResult{Redshift: core.RedshiftStarted},
			contains: []string{"✔ Redshift started"},
		},
		{
			name: "did not start",
			result: core.StartupResult{
				Redshift: core.RedshiftStarted,
				Warnings: []string{"redshift-gtk did not start"},
			},
			contains: []string{"⚠ redshift-gtk did not start"},
			absent:   []string{"✔"},
		},
		{
			name:     "dry run",
			result:   core.StartupResult{DryRun: true, Redshift: core.RedshiftStarted},
			contains: []string{"Would make sure redshift-gtk is running"},
			absent:   []string{"✔"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureOutput(t)
			printStartupResult(&tt.result, "/tmp/redshift.conf")
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintApplyResult_NotStarted(t *testing.T) {
	buf := captureOutput(t)

	printApplyResult(&core.ApplyResult{
		Temperature: 3400,
		Brightness:  0.65,
		Warnings:    []string{"redshift-gtk did not start"},
	})

	text := buf.String()
	assert.Contains(t, text, "⚠ redshift-gtk did not start")
	assert.NotContains(t, text, "✔")
	assert.Contains(t, text, "Temperature: 3400K")
	assert.Contains(t, text, "Brightness: 0.65")
}

func TestPrintPicked(t *testing.T) {
	defer func() { dryRun = false }()

	buf := captureOutput(t)
	dryRun = true
	printPicked("Ambiant-MATE", "Ambiant-MATE-Dark", "/tmp/config.toml")
	assert.Contains(t, buf.String(), "Would save themes to /tmp/config.toml")
	assert.NotContains(t, buf.String(), "Themes saved")

	buf.Reset()
	dryRun = false
	printPicked("Ambiant-MATE", "Ambiant-MATE-Dark", "/tmp/config.toml")
	assert.Contains(t, buf.String(), "✔ Themes saved")
	assert.Contains(t, buf.String(), "Night: Ambiant-MATE-Dark")
}

func TestPrintAutoError(t *testing.T) {
	buf := captureOutput(t)
	printAutoError(fmt.Errorf("%w: set [location]", core.ErrNoLocation))
	assert.Contains(t, buf.String(), "Hint:")

	buf.Reset()
	printAutoError(errors.New("failed to create config watcher: too many open files"))
	assert.Contains(t, buf.String(), "too many open files")
	assert.NotContains(t, buf.String(), "Hint:")
}

func TestPrintStatus_Twilight(t *testing.T) {
	buf := captureOutput(t)
	info := sampleStatus()
	info.Solar = &core.SolarInfo{
		Elevation:    -2,
		Mode:         config.ModeNight,
		InTransition: true,
		Progress:     0.5,
		Temperature:  5500,
	}

	printStatus(info, info.Last.At)

	text := buf.String()
	assert.Contains(t, text, "Twilight: 50% towards day")
	assert.Contains(t, text, "Blend: 5500K")
}
