package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/config"
	"github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/platform"
	"github.com/darkawower/duskctl/internal/process"
	"github.com/darkawower/duskctl/internal/redshift"
	"github.com/darkawower/duskctl/internal/solar"
	"github.com/darkawower/duskctl/internal/state"
	"github.com/darkawower/duskctl/internal/theme"
	"github.com/fsnotify/fsnotify"
)

// AutostartLabel names the login autostart entry.
const AutostartLabel = "duskctl"

// ErrNoLocation is returned by Auto when no location is configured.
var ErrNoLocation = errors.New("no location configured")

// Engine switches the desktop between the day and night presets.
type Engine struct {
	config     *config.Config
	state      *state.State
	platform   platform.Platform
	supervisor *process.Supervisor
	runner     exec.Runner
	logger     *log.Logger

	// newPlatform rebuilds the platform after a preferences reload. It is
	// nil when the platform was injected.
	newPlatform func(platform.Options) platform.Platform

	// Options
	dryRun      bool
	forceNotify bool
	notify      bool

	now        func() time.Time
	executable func() (string, error)
}

// Option is a function that configures the Engine.
type Option func(*Engine)

// WithDryRun enables dry-run mode.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithNotify forces desktop notifications on, regardless of preferences.
func WithNotify(notify bool) Option {
	return func(e *Engine) {
		e.forceNotify = notify
	}
}

// WithPlatform sets the desktop platform.
func WithPlatform(p platform.Platform) Option {
	return func(e *Engine) {
		e.platform = p
	}
}

// WithSupervisor sets the redshift supervisor.
func WithSupervisor(s *process.Supervisor) Option {
	return func(e *Engine) {
		e.supervisor = s
	}
}

// WithRunner sets the command runner used by the default platform and
// supervisor.
func WithRunner(r exec.Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates a new Engine instance.
func New(configPath string, opts ...Option) (*Engine, error) {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(cfg, opts...)
}

// NewWithConfig creates an Engine from already loaded preferences.
func NewWithConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		config:     cfg,
		now:        time.Now,
		executable: os.Executable,
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.runner == nil {
		e.runner = exec.NewSystemRunner(exec.Options{Logger: e.logger})
	}
	if e.platform == nil {
		e.newPlatform = platform.New
		e.platform = e.newPlatform(e.platformOptions())
	}
	e.notify = e.forceNotify || cfg.Notify.Enabled
	if e.supervisor == nil {
		e.supervisor = process.New(e.runner, process.WithLogger(e.logger))
	}

	if !e.dryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	st, err := state.Load(cfg.State.Path)
	if err != nil {
		// A corrupt state file must not block switching.
		e.logger.Warn("ignoring unreadable state file", "path", cfg.State.Path, "err", err)
		st = state.New(cfg.State.Path)
	}
	e.state = st

	return e, nil
}

func (e *Engine) platformOptions() platform.Options {
	return platform.Options{
		GTKSchema: e.config.Desktop.GTKSchema,
		GTKKey:    e.config.Desktop.GTKKey,
		WMSchema:  e.config.Desktop.WMSchema,
		WMKey:     e.config.Desktop.WMKey,
		Runner:    e.runner,
		Logger:    e.logger,
	}
}

// Startup creates redshift.conf with defaults when it is missing and makes
// sure redshift-gtk is running.
func (e *Engine) Startup(ctx context.Context) (*StartupResult, error) {
	result := &StartupResult{DryRun: e.dryRun}

	created, err := e.ensureRedshiftConfig()
	if err != nil {
		return nil, err
	}
	result.CreatedConfig = created

	if e.dryRun {
		result.Redshift = RedshiftStarted
		return result, nil
	}

	action, warn, err := e.ensureDaemon(ctx)
	if err != nil {
		return nil, err
	}
	result.Redshift = action
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	return result, nil
}

// Day switches to the day preset.
func (e *Engine) Day(ctx context.Context) (*ModeResult, error) {
	return e.Switch(ctx, config.ModeDay, state.TriggerManual)
}

// Night switches to the night preset.
func (e *Engine) Night(ctx context.Context) (*ModeResult, error) {
	return e.Switch(ctx, config.ModeNight, state.TriggerManual)
}

// Switch applies the preset for mode: redshift first, then the theme.
func (e *Engine) Switch(ctx context.Context, mode config.Mode, trigger state.Trigger) (*ModeResult, error) {
	name := e.resolveTheme(mode)
	result := &ModeResult{
		Mode:   mode,
		Theme:  name,
		DryRun: e.dryRun,
		At:     e.now(),
	}

	e.logger.Debug("switching", "mode", mode, "theme", name, "trigger", trigger)

	var err error
	if mode == config.ModeNight {
		err = e.nightRedshift(ctx, result)
	} else {
		err = e.dayRedshift(ctx, result)
	}
	if err != nil {
		return nil, err
	}

	if !e.dryRun {
		err := e.platform.Desktop().SetTheme(ctx, platform.Same(name))
		switch {
		case errors.Is(err, platform.ErrPartialTheme):
			result.Warnings = append(result.Warnings, err.Error())
		case err != nil:
			return nil, fmt.Errorf("failed to apply theme: %w", err)
		}

		e.state.Record(state.Switch{
			Mode:     string(mode),
			Theme:    name,
			Redshift: string(result.Redshift),
			Trigger:  trigger,
			At:       result.At,
		})
		if err := e.state.Save(); err != nil {
			e.logger.Warn("failed to save state", "err", err)
		}
	}

	for _, w := range result.Warnings {
		e.logger.Warn(w)
	}
	e.sendNotification(ctx, result)

	return result, nil
}

// dayRedshift stops redshift, or sets it to neutral when configured so.
func (e *Engine) dayRedshift(ctx context.Context, result *ModeResult) error {
	if e.config.Redshift.DayMode == config.DayRedshiftNeutral {
		result.Redshift = RedshiftNeutral
		if e.dryRun {
			return nil
		}
		if err := e.writeRedshift(e.neutralSettings()); err != nil {
			return err
		}
		return e.restartForSwitch(ctx, result)
	}

	result.Redshift = RedshiftStopped
	if e.dryRun {
		return nil
	}

	err := e.supervisor.Quit(ctx)
	if errors.Is(err, process.ErrStillRunning) {
		result.Warnings = append(result.Warnings, "redshift is still running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stop redshift: %w", err)
	}
	return nil
}

// nightRedshift makes sure redshift runs with the night settings.
func (e *Engine) nightRedshift(ctx context.Context, result *ModeResult) error {
	if e.config.Redshift.DayMode == config.DayRedshiftNeutral {
		// The file holds neutral values after a day switch.
		result.Redshift = RedshiftRestarted
		if e.dryRun {
			return nil
		}
		if err := e.writeRedshift(e.config.RedshiftSettings()); err != nil {
			return err
		}
		return e.restartForSwitch(ctx, result)
	}

	created, err := e.ensureRedshiftConfig()
	if err != nil {
		return err
	}
	result.CreatedConfig = created

	if e.dryRun {
		result.Redshift = RedshiftStarted
		return nil
	}

	action, warn, err := e.ensureDaemon(ctx)
	if err != nil {
		return err
	}
	result.Redshift = action
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	return nil
}

func (e *Engine) ensureDaemon(ctx context.Context) (RedshiftAction, string, error) {
	outcome, err := e.supervisor.Ensure(ctx)
	if errors.Is(err, process.ErrNotStarted) {
		return RedshiftStarted, "redshift-gtk did not start", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to start redshift: %w", err)
	}
	if outcome == process.AlreadyRunning {
		return RedshiftAlreadyRunning, "", nil
	}
	return RedshiftStarted, "", nil
}

// restartDaemon restarts redshift-gtk. A daemon that does not come back is
// returned as a warning: redshift.conf already holds the new values.
func (e *Engine) restartDaemon(ctx context.Context) (string, error) {
	err := e.supervisor.Restart(ctx)
	if errors.Is(err, process.ErrNotStarted) {
		return "redshift-gtk did not start", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to restart redshift: %w", err)
	}
	return "", nil
}

func (e *Engine) restartForSwitch(ctx context.Context, result *ModeResult) error {
	warn, err := e.restartDaemon(ctx)
	if err != nil {
		return err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	return nil
}

// ensureRedshiftConfig writes the preferred settings when redshift.conf is
// missing. It reports whether the file was created.
func (e *Engine) ensureRedshiftConfig() (bool, error) {
	path := e.config.Redshift.ConfigPath
	if redshift.Exists(path) {
		return false, nil
	}
	if e.dryRun {
		return true, nil
	}
	if err := e.writeRedshift(e.config.RedshiftSettings()); err != nil {
		return false, err
	}
	e.logger.Info("created redshift config", "path", path)
	return true, nil
}

func (e *Engine) writeRedshift(s redshift.Settings) error {
	if err := s.Write(e.config.Redshift.ConfigPath); err != nil {
		return fmt.Errorf("failed to write redshift config: %w", err)
	}
	return nil
}

func (e *Engine) neutralSettings() redshift.Settings {
	s := redshift.Neutral()
	s.AdjustmentMethod = e.config.Redshift.AdjustmentMethod
	s.Latitude = e.config.Location.Latitude
	s.Longitude = e.config.Location.Longitude
	return s
}

// Apply writes the same temperature and brightness for day and night,
// restarts the daemon and keeps the values as new defaults.
func (e *Engine) Apply(ctx context.Context, temperature int, brightness float64) (*ApplyResult, error) {
	if err := redshift.ValidateTemperature(temperature); err != nil {
		return nil, err
	}
	if err := redshift.ValidateBrightness(brightness); err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Temperature: temperature,
		Brightness:  brightness,
		ConfigPath:  e.config.Redshift.ConfigPath,
		DryRun:      e.dryRun,
	}
	if e.dryRun {
		return result, nil
	}

	settings := e.config.RedshiftSettings()
	settings.TempDay, settings.TempNight = temperature, temperature
	settings.BrightnessDay, settings.BrightnessNight = brightness, brightness

	if err := e.writeRedshift(settings); err != nil {
		return nil, err
	}

	// Preferences follow redshift.conf even when the restart fails.
	e.config.Redshift.Temperature = temperature
	e.config.Redshift.Brightness = brightness

	if err := e.config.Save(""); err != nil {
		e.logger.Warn("failed to save preferences", "err", err)
	}
	e.state.RecordApplied(temperature, brightness)
	if err := e.state.Save(); err != nil {
		e.logger.Warn("failed to save state", "err", err)
	}

	warn, err := e.restartDaemon(ctx)
	if err != nil {
		return nil, err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
		e.logger.Warn(warn)
	}

	return result, nil
}

// Quit stops every redshift process.
func (e *Engine) Quit(ctx context.Context) error {
	if e.dryRun {
		return nil
	}
	if err := e.supervisor.Quit(ctx); err != nil {
		return fmt.Errorf("failed to stop redshift: %w", err)
	}
	return nil
}

// Restart restarts redshift-gtk so it rereads redshift.conf.
func (e *Engine) Restart(ctx context.Context) error {
	if _, err := e.ensureRedshiftConfig(); err != nil {
		return err
	}
	if e.dryRun {
		return nil
	}
	if err := e.supervisor.Restart(ctx); err != nil {
		return fmt.Errorf("failed to restart redshift: %w", err)
	}
	return nil
}

// SetTheme stores the preferred theme for mode.
func (e *Engine) SetTheme(mode config.Mode, name string) error {
	if err := e.config.SetTheme(mode, name); err != nil {
		return err
	}
	if e.dryRun {
		return nil
	}
	if err := e.config.Save(""); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Themes lists installed themes with the selection for each mode resolved
// against them.
func (e *Engine) Themes(ctx context.Context) ThemesResult {
	installed := theme.Installed(e.config.Themes.Dirs, e.logger)
	return ThemesResult{
		Installed: installed,
		Day:       theme.Resolve(e.config.Themes.Day, config.DefaultDayTheme, installed),
		Night:     theme.Resolve(e.config.Themes.Night, config.DefaultNightTheme, installed),
	}
}

func (e *Engine) resolveTheme(mode config.Mode) string {
	installed := theme.Installed(e.config.Themes.Dirs, e.logger)
	fallback := config.DefaultDayTheme
	if mode == config.ModeNight {
		fallback = config.DefaultNightTheme
	}
	return theme.Resolve(e.config.ThemeFor(mode), fallback, installed)
}

// Status collects daemon liveness, redshift settings, the desktop theme and
// the last recorded switch.
func (e *Engine) Status(ctx context.Context) (*StatusInfo, error) {
	info := &StatusInfo{
		Platform: e.platform.Name(),
		Themes: ThemesConfigView{
			Day:   e.config.Themes.Day,
			Night: e.config.Themes.Night,
		},
	}

	st, err := e.supervisor.Status(ctx)
	if errors.Is(err, process.ErrToolMissing) {
		info.Warnings = append(info.Warnings, "pgrep not found, daemon status unknown")
	} else if err != nil {
		return nil, fmt.Errorf("failed to check redshift: %w", err)
	}
	info.Redshift.DaemonRunning = st.Daemon
	info.Redshift.CoreRunning = st.Core

	path := e.config.Redshift.ConfigPath
	settings, found, err := redshift.Load(path, e.logger)
	if err != nil {
		info.Warnings = append(info.Warnings, err.Error())
	}
	info.Redshift.ConfigPath = path
	info.Redshift.ConfigFound = found
	info.Redshift.Settings = settings

	current, err := e.platform.Desktop().CurrentTheme(ctx)
	if err != nil {
		e.logger.Debug("cannot read desktop theme", "err", err)
	}
	info.Desktop = current
	info.Mode = theme.NewDetector(e.platform.Desktop()).Detect(ctx)

	if last, ok := e.state.Last(); ok {
		info.Last = &last
	}

	if e.hasLocation() {
		info.Solar = e.solarInfo()
	}

	return info, nil
}

func (e *Engine) hasLocation() bool {
	return e.config.Location.Latitude != 0 || e.config.Location.Longitude != 0
}

func (e *Engine) thresholds() solar.Thresholds {
	return solar.Thresholds{
		Day:   e.config.Auto.ElevationDay,
		Night: e.config.Auto.ElevationNight,
	}
}

func (e *Engine) solarInfo() *SolarInfo {
	now := e.now()
	lat, lon := e.config.Location.Latitude, e.config.Location.Longitude
	rise, set := solar.SunTimes(now, lat, lon)
	last, _ := e.state.Last()
	th := e.thresholds()
	progress := solar.Progress(now, lat, lon, th)
	return &SolarInfo{
		Elevation:    solar.Elevation(now, lat, lon),
		Mode:         solar.ModeAt(now, lat, lon, th, config.Mode(last.Mode)),
		Sunrise:      rise,
		Sunset:       set,
		InTransition: solar.InTransition(now, lat, lon, th),
		Progress:     progress,
		Temperature:  solar.Temperature(progress, e.config.Redshift.Temperature, redshift.NeutralTemperature),
	}
}

// Auto switches presets following the sun until ctx is cancelled. The
// preferences file is reloaded whenever it changes.
func (e *Engine) Auto(ctx context.Context) error {
	if !e.hasLocation() {
		return fmt.Errorf("%w: set [location] latitude and longitude in %s", ErrNoLocation, e.config.ConfigPath())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	cfgPath := e.config.ConfigPath()
	if cfgPath != "" {
		// Watch the directory: editors replace the file instead of writing it.
		if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
			e.logger.Warn("config changes will not be picked up", "err", err)
		}
	}

	last, _ := e.state.Last()
	current := config.Mode(last.Mode)
	current = e.autoStep(ctx, current)

	ticker := time.NewTicker(e.config.Auto.Interval.Duration)
	defer ticker.Stop()

	e.logger.Info("auto mode running", "interval", e.config.Auto.Interval, "mode", current)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("auto mode stopped")
			return nil
		case <-ticker.C:
			current = e.autoStep(ctx, current)
		case event, ok := <-watcher.Events:
			if !ok {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(cfgPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if e.reloadConfig() {
				ticker.Reset(e.config.Auto.Interval.Duration)
				current = e.autoStep(ctx, current)
			}
		case err, ok := <-watcher.Errors:
			if ok {
				e.logger.Warn("config watcher", "err", err)
			}
		}
	}
}

// autoStep switches when the sun says the mode differs from current and
// returns the mode now in effect.
func (e *Engine) autoStep(ctx context.Context, current config.Mode) config.Mode {
	lat, lon := e.config.Location.Latitude, e.config.Location.Longitude
	want := solar.ModeAt(e.now(), lat, lon, e.thresholds(), current)
	if want == current {
		return current
	}

	if _, err := e.Switch(ctx, want, state.TriggerAuto); err != nil {
		e.logger.Error("auto switch failed", "mode", want, "err", err)
		return current
	}
	e.logger.Info("switched", "mode", want)
	return want
}

// reloadConfig rereads the preferences file, keeping the old values when
// the new file is invalid.
func (e *Engine) reloadConfig() bool {
	cfg, err := config.Load(e.config.ConfigPath())
	if err != nil {
		e.logger.Warn("keeping previous preferences", "err", err)
		return false
	}
	e.config = cfg
	e.notify = e.forceNotify || cfg.Notify.Enabled
	if e.newPlatform != nil {
		e.platform = e.newPlatform(e.platformOptions())
	}
	e.logger.Info("preferences reloaded", "path", cfg.ConfigPath())
	return true
}

func (e *Engine) sendNotification(ctx context.Context, result *ModeResult) {
	if !e.notify || result.DryRun {
		return
	}
	summary := "Day mode"
	if result.Mode == config.ModeNight {
		summary = "Night mode"
	}
	body := fmt.Sprintf("Theme %s, redshift %s", result.Theme, result.Redshift)
	for _, w := range result.Warnings {
		body += "\n" + w
	}
	if err := e.platform.Notifier().Notify(ctx, summary, body); err != nil {
		e.logger.Debug("notification failed", "err", err)
	}
}

// Autostart methods

// InstallAutostart installs a login entry running "duskctl auto".
func (e *Engine) InstallAutostart() (*AutostartStatus, error) {
	svc := e.platform.Autostart()
	if !svc.IsSupported() {
		return nil, fmt.Errorf("autostart not supported on %s", e.platform.Name())
	}

	execPath, err := e.executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	args := []string{"auto"}
	if path := e.config.ConfigPath(); path != "" && path != config.DefaultConfigPath() {
		args = append(args, "--config", path)
	}

	if !e.dryRun {
		err := svc.Install(platform.AutostartConfig{
			Label:   AutostartLabel,
			Name:    "duskctl",
			Command: execPath,
			Args:    args,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to install autostart entry: %w", err)
		}
	}

	return e.AutostartStatus()
}

// UninstallAutostart removes the login entry.
func (e *Engine) UninstallAutostart() error {
	svc := e.platform.Autostart()
	if !svc.IsSupported() {
		return fmt.Errorf("autostart not supported on %s", e.platform.Name())
	}
	if e.dryRun {
		return nil
	}
	return svc.Uninstall(AutostartLabel)
}

// AutostartStatus returns the status of the login entry.
func (e *Engine) AutostartStatus() (*AutostartStatus, error) {
	svc := e.platform.Autostart()

	status := &AutostartStatus{
		Supported: svc.IsSupported(),
	}
	if !svc.IsSupported() {
		return status, nil
	}

	ps, err := svc.Status(AutostartLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to get autostart status: %w", err)
	}

	status.Installed = ps.Installed
	status.Enabled = ps.Enabled
	status.Command = ps.Command
	status.Path = ps.Path

	return status, nil
}

// Init writes the default preferences and redshift.conf. Existing files are
// kept unless force is set.
func (e *Engine) Init(force bool) ([]string, error) {
	var written []string

	cfgPath := e.config.ConfigPath()
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	if force || !fileExists(cfgPath) {
		if !e.dryRun {
			if err := e.config.Save(cfgPath); err != nil {
				return nil, err
			}
		}
		written = append(written, cfgPath)
	}

	rsPath := e.config.Redshift.ConfigPath
	if force || !redshift.Exists(rsPath) {
		if !e.dryRun {
			if err := e.writeRedshift(e.config.RedshiftSettings()); err != nil {
				return nil, err
			}
		}
		written = append(written, rsPath)
	}

	return written, nil
}

// Platform returns the current platform.
func (e *Engine) Platform() platform.Platform {
	return e.platform
}

// Config returns the current config.
func (e *Engine) Config() *config.Config {
	return e.config
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
