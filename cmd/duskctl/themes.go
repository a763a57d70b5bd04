package main

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/darkawower/duskctl/internal/config"
	"github.com/darkawower/duskctl/internal/core"
	"github.com/darkawower/duskctl/internal/theme"
	"github.com/spf13/cobra"
)

// newThemesCmd creates the themes command group.
func newThemesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List and select the day and night themes",
	}

	cmd.AddCommand(
		newThemesListCmd(),
		newThemesSetCmd(),
		newThemesPickCmd(),
	)

	return cmd
}

// newThemesListCmd creates the themes list command.
func newThemesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			themes := engine.Themes(cmd.Context())
			out.Table([]string{"THEME", "SELECTED", "KIND"}, themeRows(themes))
			return nil
		},
	}
}

func themeRows(themes core.ThemesResult) [][]string {
	rows := make([][]string, 0, len(themes.Installed))
	for _, name := range themes.Installed {
		selected := ""
		switch name {
		case themes.Day:
			selected = "day"
		case themes.Night:
			selected = "night"
		}
		rows = append(rows, []string{name, selected, string(theme.ModeOf(name))})
	}
	return rows
}

// newThemesSetCmd creates the themes set command.
func newThemesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <day|night> <theme>",
		Short: "Set the theme used for a mode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			mode, err := config.ParseMode(args[0])
			if err != nil {
				out.Error("%v", err)
				return err
			}

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			installed := engine.Themes(cmd.Context()).Installed
			if theme.Resolve(args[1], "", installed) != args[1] {
				out.Warning("Theme %s is not installed", args[1])
			}

			if err := engine.SetTheme(mode, args[1]); err != nil {
				out.Error("Failed to set theme: %v", err)
				return err
			}

			if dryRun {
				out.Info("Would set %s theme to %s", mode, args[1])
				return nil
			}
			out.Success("%s theme set to %s", mode, args[1])
			return nil
		},
	}
}

// newThemesPickCmd creates the interactive themes pick command.
func newThemesPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose the day and night themes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			engine, err := mustEngine()
			if err != nil {
				return err
			}

			themes := engine.Themes(cmd.Context())
			day, night := themes.Day, themes.Night

			options := huh.NewOptions(themes.Installed...)
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Day theme").
						Description("Applied by 'duskctl day'").
						Options(options...).
						Value(&day),

					huh.NewSelect[string]().
						Title("Night theme").
						Description("Applied by 'duskctl night'").
						Options(options...).
						Value(&night),
				),
			)

			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					out.Info("Nothing changed")
					return nil
				}
				out.Error("%v", err)
				return err
			}

			for _, sel := range []struct {
				mode config.Mode
				name string
			}{
				{config.ModeDay, day},
				{config.ModeNight, night},
			} {
				if err := engine.SetTheme(sel.mode, sel.name); err != nil {
					out.Error("Failed to set %s theme: %v", sel.mode, err)
					return err
				}
			}

			printPicked(day, night, engine.Config().ConfigPath())
			return nil
		},
	}
}

func printPicked(day, night, configPath string) {
	if dryRun {
		out.Info("Would save themes to %s", shortenPath(configPath))
	} else {
		out.Success("Themes saved")
	}
	out.Field("Day", day)
	out.Field("Night", night)
}
