// Package main is the entry point for the duskctl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/core"
	"github.com/darkawower/duskctl/internal/ui"
	"github.com/spf13/cobra"

	_ "github.com/darkawower/duskctl/internal/platform/linux"
	_ "github.com/darkawower/duskctl/internal/platform/stub"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const initHint = "Run 'duskctl init' to create a default configuration"

var (
	// Global flags
	cfgFile    string
	dryRun     bool
	verbose    bool
	quiet      bool
	noColor    bool
	notifyFlag bool

	// Global output
	out    *ui.Output
	logger *log.Logger
)

func main() {
	rootCmd := newRootCmd()

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "duskctl",
		Short: "Day and night presets for redshift and the desktop theme",
		Long: `duskctl switches a Linux desktop between a day and a night preset.

Night starts redshift-gtk and applies the night GTK and window manager theme.
Day stops redshift and applies the day theme. 'duskctl auto' follows the sun.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/duskctl/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show what would be done without doing it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifyFlag, "notify", false, "show a desktop notification after switching")

	// Add commands
	rootCmd.AddCommand(
		newInitCmd(),
		newDayCmd(),
		newNightCmd(),
		newApplyCmd(),
		newQuitCmd(),
		newRestartCmd(),
		newStartCmd(),
		newStatusCmd(),
		newThemesCmd(),
		newAutoCmd(),
		newAutostartCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// initOutput initializes the output and the logger.
func initOutput() {
	out = ui.DefaultOutput()
	out.SetVerbose(verbose)
	out.SetQuiet(quiet)
	if noColor {
		out.SetNoColor(true)
	}
	setupLogger()
}

func setupLogger() {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.WarnLevel
	}

	styles := log.DefaultStyles()
	if !noColor && os.Getenv("NO_COLOR") == "" {
		styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
			SetString("DEBUG").
			Foreground(ui.Muted).
			Bold(true)
		styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
			SetString("INFO").
			Foreground(ui.Primary).
			Bold(true)
		styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
			SetString("WARN").
			Foreground(ui.Warning).
			Bold(true)
		styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
			SetString("ERROR").
			Foreground(ui.Error).
			Bold(true)
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: verbose,
		TimeFormat:      time.Kitchen,
		Level:           level,
	})
	logger.SetStyles(styles)
}

// newEngine creates a new engine with current flags.
func newEngine() (*core.Engine, error) {
	opts := []core.Option{
		core.WithLogger(logger),
	}
	if dryRun {
		opts = append(opts, core.WithDryRun(true))
	}
	if notifyFlag {
		opts = append(opts, core.WithNotify(true))
	}

	return core.New(cfgFile, opts...)
}

// mustEngine creates the engine and reports failures the same way for
// every command.
func mustEngine() (*core.Engine, error) {
	engine, err := newEngine()
	if err != nil {
		out.ErrorWithHint(err.Error(), initHint)
		return nil, err
	}
	return engine, nil
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			initOutput()
			out.Print("duskctl version %s", version)
		},
	}
}

// shortenPath shortens a path for display.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if len(path) > len(home) && path[:len(home)] == home {
		return "~" + path[len(home):]
	}
	return path
}
