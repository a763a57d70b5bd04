package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/darkawower/duskctl/internal/core"
	"github.com/darkawower/duskctl/internal/redshift"
	"github.com/darkawower/duskctl/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats for status.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show redshift, theme and last switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			switch format {
			case formatText, formatJSON, formatYAML:
			default:
				err := fmt.Errorf("invalid output format: %s (must be text, json or yaml)", format)
				out.Error("%v", err)
				return err
			}

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			info, err := engine.Status(cmd.Context())
			if err != nil {
				out.Error("Failed to get status: %v", err)
				return err
			}

			switch format {
			case formatJSON:
				return writeJSON(out.Writer(), info)
			case formatYAML:
				return writeYAML(out.Writer(), info)
			}

			printStatus(info, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format (text|json|yaml)")

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printStatus(info *core.StatusInfo, now time.Time) {
	out.Section("Mode")
	out.Mode(string(info.Mode), info.Desktop.GTK)
	if info.Desktop.WindowManager != "" && info.Desktop.WindowManager != info.Desktop.GTK {
		out.Field("Window theme", info.Desktop.WindowManager)
	}
	out.Field("Day theme", info.Themes.Day)
	out.Field("Night theme", info.Themes.Night)

	out.Print("")
	out.Section("Redshift")
	out.Field("redshift-gtk", out.OnOff(info.Redshift.DaemonRunning))
	out.Field("redshift", out.OnOff(info.Redshift.CoreRunning))
	if info.Redshift.ConfigFound {
		s := info.Redshift.Settings
		out.Field("Config", shortenPath(info.Redshift.ConfigPath))
		out.Field("Night", fmt.Sprintf("%dK at %s", s.TempNight, redshift.FormatBrightness(s.BrightnessNight)))
		if s.TempDay != s.TempNight || s.BrightnessDay != s.BrightnessNight {
			out.Field("Day", fmt.Sprintf("%dK at %s", s.TempDay, redshift.FormatBrightness(s.BrightnessDay)))
		}
	} else {
		out.Field("Config", "not created yet")
	}

	if info.Last != nil {
		out.Print("")
		out.Section("Last switch")
		out.Field("Mode", info.Last.Mode)
		out.Field("Theme", info.Last.Theme)
		out.Field("When", fmt.Sprintf("%s (%s)", info.Last.At.Format("2006-01-02 15:04"), ui.Ago(info.Last.At, now)))
		if info.Last.Trigger != "" {
			out.Field("Trigger", string(info.Last.Trigger))
		}
	}

	if info.Solar != nil {
		out.Print("")
		out.Section("Sun")
		out.Field("Elevation", fmt.Sprintf("%.1f°", info.Solar.Elevation))
		out.Field("Auto mode", string(info.Solar.Mode))
		if info.Solar.InTransition {
			out.Field("Twilight", fmt.Sprintf("%.0f%% towards day", info.Solar.Progress*100))
		}
		out.Field("Blend", fmt.Sprintf("%dK", info.Solar.Temperature))
		if !info.Solar.Sunrise.IsZero() {
			out.Field("Sunrise", info.Solar.Sunrise.Local().Format("15:04"))
			out.Field("Sunset", info.Solar.Sunset.Local().Format("15:04"))
		}
	}

	for _, w := range info.Warnings {
		out.Warning("%s", w)
	}
}
