package main

import (
	"errors"
	"fmt"

	"github.com/darkawower/duskctl/internal/core"
	dexec "github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/process"
	"github.com/darkawower/duskctl/internal/redshift"
	"github.com/darkawower/duskctl/internal/ui"
	"github.com/spf13/cobra"
)

// requiredTools are the host commands duskctl drives.
var requiredTools = []string{"redshift-gtk", "pgrep", "killall", "gsettings"}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize duskctl configuration",
		Long:  "Creates the preferences file and a default redshift.conf.",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			written, err := engine.Init(force)
			if err != nil {
				out.Error("Failed to initialize: %v", err)
				return err
			}

			cfg := engine.Config()
			if len(written) == 0 {
				out.Warning("Configuration already exists")
				out.Field("Config", shortenPath(cfg.ConfigPath()))
				out.Field("Redshift", shortenPath(cfg.Redshift.ConfigPath))
				out.Info("Use --force to overwrite")
				return nil
			}

			if dryRun {
				for _, path := range written {
					out.Info("Would write %s", shortenPath(path))
				}
				return nil
			}

			out.Success("duskctl initialized")
			for _, path := range written {
				out.Field("Wrote", shortenPath(path))
			}
			out.Field("State", shortenPath(cfg.State.Path))

			if err := dexec.RequireCommands(requiredTools...); err != nil {
				out.Warning("%v", err)
				out.Info("Install redshift-gtk, procps, psmisc and the gsettings tool")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration")

	return cmd
}

// newDayCmd creates the day command.
func newDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "day",
		Aliases: []string{"sun"},
		Short:   "Switch to the day preset",
		Long: `Stops redshift (or sets it to a neutral temperature when day-mode is
"neutral") and applies the day theme.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			result, err := engine.Day(cmd.Context())
			if err != nil {
				out.Error("Failed to switch to day: %v", err)
				return err
			}

			printModeResult(result)
			return nil
		},
	}
}

// newNightCmd creates the night command.
func newNightCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "night",
		Aliases: []string{"moon"},
		Short:   "Switch to the night preset",
		Long: `Starts redshift-gtk, creating redshift.conf if missing, and applies the
night theme.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			spinner := ui.NewSpinner(out, "Starting redshift")
			spinner.Start()
			result, err := engine.Night(cmd.Context())
			spinner.Stop()
			if err != nil {
				out.Error("Failed to switch to night: %v", err)
				return err
			}

			printModeResult(result)
			return nil
		},
	}
}

func printModeResult(result *core.ModeResult) {
	if result.DryRun {
		out.Info("Would switch to %s", result.Mode)
		out.Field("Theme", result.Theme)
		out.Field("Redshift", string(result.Redshift))
		if result.CreatedConfig {
			out.Field("Create", "redshift.conf")
		}
		return
	}

	out.Mode(string(result.Mode), result.Theme)
	out.Field("Redshift", describeAction(result.Redshift))
	if result.CreatedConfig {
		out.Field("Config", "created with defaults")
	}
	for _, w := range result.Warnings {
		out.Warning("%s", w)
	}
}

func describeAction(a core.RedshiftAction) string {
	switch a {
	case core.RedshiftStopped:
		return "stopped"
	case core.RedshiftStarted:
		return "started"
	case core.RedshiftAlreadyRunning:
		return "already running"
	case core.RedshiftRestarted:
		return "restarted"
	case core.RedshiftNeutral:
		return fmt.Sprintf("neutral (%dK)", redshift.NeutralTemperature)
	default:
		return string(a)
	}
}

// newApplyCmd creates the apply command.
func newApplyCmd() *cobra.Command {
	var (
		temperature int
		brightness  float64
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write a temperature and brightness and restart redshift",
		Long: `Writes the same temperature and brightness for day and night into
redshift.conf, restarts redshift-gtk and keeps the values as new defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("temp") {
				temperature = engine.Config().Redshift.Temperature
			}
			if !cmd.Flags().Changed("brightness") {
				brightness = engine.Config().Redshift.Brightness
			}

			spinner := ui.NewSpinner(out, "Restarting redshift")
			spinner.Start()
			result, err := engine.Apply(cmd.Context(), temperature, brightness)
			spinner.Stop()
			if err != nil {
				out.Error("Failed to apply: %v", err)
				return err
			}

			printApplyResult(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&temperature, "temp", "t", redshift.DefaultTemperature,
		fmt.Sprintf("color temperature in kelvin (%d-%d)", redshift.MinTemperature, redshift.MaxTemperature))
	cmd.Flags().Float64VarP(&brightness, "brightness", "b", redshift.DefaultBrightness,
		fmt.Sprintf("brightness factor (%.1f-%.1f)", redshift.MinBrightness, redshift.MaxBrightness))

	return cmd
}

func printApplyResult(result *core.ApplyResult) {
	switch {
	case result.DryRun:
		out.Info("Would write %s", shortenPath(result.ConfigPath))
	case len(result.Warnings) > 0:
		for _, w := range result.Warnings {
			out.Warning("%s", w)
		}
		out.Info("Settings saved; run 'duskctl restart' once redshift-gtk can start")
	default:
		out.Success("Redshift settings applied")
	}
	out.Field("Temperature", fmt.Sprintf("%dK", result.Temperature))
	out.Field("Brightness", redshift.FormatBrightness(result.Brightness))
}

// newQuitCmd creates the quit command.
func newQuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Stop all redshift processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			if err := engine.Quit(cmd.Context()); err != nil {
				if errors.Is(err, process.ErrStillRunning) {
					out.ErrorWithHint(err.Error(), "Try 'killall -9 redshift redshift-gtk'")
				} else {
					out.Error("%v", err)
				}
				return err
			}

			if dryRun {
				out.Info("Would stop redshift")
				return nil
			}
			out.Success("Redshift stopped")
			return nil
		},
	}
}

// newRestartCmd creates the restart command.
func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart redshift-gtk so it rereads redshift.conf",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			spinner := ui.NewSpinner(out, "Restarting redshift")
			spinner.Start()
			err = engine.Restart(cmd.Context())
			spinner.Stop()
			if err != nil {
				out.Error("%v", err)
				return err
			}

			if dryRun {
				out.Info("Would restart redshift-gtk")
				return nil
			}
			out.Success("Redshift restarted")
			return nil
		},
	}
}

// newStartCmd creates the start command.
func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Create redshift.conf if missing and make sure redshift-gtk runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			result, err := engine.Startup(cmd.Context())
			if err != nil {
				out.Error("%v", err)
				return err
			}

			printStartupResult(result, engine.Config().Redshift.ConfigPath)
			return nil
		},
	}
}

// printStartupResult reports success only when redshift-gtk is known to run.
func printStartupResult(result *core.StartupResult, configPath string) {
	if result.DryRun {
		out.Info("Would make sure redshift-gtk is running")
		return
	}
	if result.CreatedConfig {
		out.Info("Created %s", shortenPath(configPath))
	}
	if len(result.Warnings) > 0 {
		for _, w := range result.Warnings {
			out.Warning("%s", w)
		}
		return
	}
	out.Success("Redshift %s", describeAction(result.Redshift))
}
