package main

import (
	"errors"
	"fmt"

	"github.com/darkawower/duskctl/internal/core"
	"github.com/spf13/cobra"
)

// newAutoCmd creates the auto command.
func newAutoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Follow the sun, switching presets at dusk and dawn",
		Long: `Runs until interrupted. Every interval the sun elevation at the configured
location decides the mode; duskctl switches when it changes. The preferences
file is reloaded when edited.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			if err := engine.Auto(cmd.Context()); err != nil {
				printAutoError(err)
				return err
			}
			return nil
		},
	}
}

// printAutoError adds the location hint only when the location is missing.
func printAutoError(err error) {
	if errors.Is(err, core.ErrNoLocation) {
		out.ErrorWithHint(err.Error(), "Set [location] latitude and longitude in the config file")
		return
	}
	out.Error("%v", err)
}

// newAutostartCmd creates the autostart command group.
func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage running 'duskctl auto' at login",
	}

	cmd.AddCommand(
		newAutostartInstallCmd(),
		newAutostartUninstallCmd(),
		newAutostartStatusCmd(),
	)

	return cmd
}

// newAutostartInstallCmd creates the autostart install command.
func newAutostartInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the login autostart entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			status, err := engine.InstallAutostart()
			if err != nil {
				out.Error("Failed to install autostart entry: %v", err)
				return err
			}

			if dryRun {
				out.Info("Would install the autostart entry for 'duskctl auto'")
				return nil
			}
			out.Success("Autostart installed")
			out.Field("Entry", shortenPath(status.Path))
			out.Field("Command", status.Command)
			return nil
		},
	}
}

// newAutostartUninstallCmd creates the autostart uninstall command.
func newAutostartUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the login autostart entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			status, err := engine.AutostartStatus()
			if err != nil {
				out.Error("Failed to get autostart status: %v", err)
				return err
			}

			if status.Supported && !status.Installed {
				out.Info("Autostart is not installed")
				return nil
			}

			if err := engine.UninstallAutostart(); err != nil {
				out.Error("Failed to uninstall autostart entry: %v", err)
				return err
			}

			if dryRun {
				out.Info("Would remove %s", shortenPath(status.Path))
				return nil
			}
			out.Success("Autostart uninstalled")
			return nil
		},
	}
}

// newAutostartStatusCmd creates the autostart status command.
func newAutostartStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the login autostart entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			status, err := engine.AutostartStatus()
			if err != nil {
				out.Error("Failed to get autostart status: %v", err)
				return err
			}

			if !status.Supported {
				name := engine.Platform().Name()
				out.Error("Autostart is not supported on %s", name)
				return fmt.Errorf("autostart not supported on %s", name)
			}

			if !status.Installed {
				out.Info("Autostart is not installed")
				return nil
			}

			if status.Enabled {
				out.Success("Autostart is enabled")
			} else {
				out.Warning("Autostart entry exists but is disabled")
			}
			out.Field("Entry", shortenPath(status.Path))
			out.Field("Command", status.Command)
			return nil
		},
	}
}
