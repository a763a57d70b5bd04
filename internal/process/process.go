// Package process supervises the redshift daemon through pgrep, killall and
// a detached launch of redshift-gtk.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/darkawower/duskctl/internal/exec"
)

// Process names. redshift-gtk is the tray wrapper we launch; it spawns
// redshift, which must be stopped as well.
const (
	DaemonName = "redshift-gtk"
	CoreName   = "redshift"
)

var (
	// ErrStillRunning is returned when redshift survives killall.
	ErrStillRunning = errors.New("redshift is still running")
	// ErrNotStarted is returned when redshift-gtk is not running after launch.
	ErrNotStarted = errors.New("redshift-gtk did not start")
	// ErrToolMissing is returned when pgrep cannot be found.
	ErrToolMissing = errors.New("pgrep not found")
)

// Timings are the settle delays between killing, launching and checking.
// The daemon gives no readiness signal, so we wait and look again.
type Timings struct {
	AfterQuit  time.Duration
	AfterKill  time.Duration
	AfterStart time.Duration
}

// DefaultTimings returns the delays used in production.
func DefaultTimings() Timings {
	return Timings{
		AfterQuit:  200 * time.Millisecond,
		AfterKill:  500 * time.Millisecond,
		AfterStart: time.Second,
	}
}

// StartOutcome describes what Ensure did.
type StartOutcome string

const (
	AlreadyRunning StartOutcome = "already-running"
	Started        StartOutcome = "started"
)

// Status is the liveness of both redshift processes.
type Status struct {
	Daemon bool
	Core   bool
}

// Running reports whether any redshift process is alive.
func (s Status) Running() bool {
	return s.Daemon || s.Core
}

// Supervisor starts, stops and checks redshift.
type Supervisor struct {
	runner  exec.Runner
	logger  *log.Logger
	timings Timings
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithTimings overrides the settle delays.
func WithTimings(t Timings) Option {
	return func(s *Supervisor) {
		s.timings = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// New creates a Supervisor using runner for all commands.
func New(runner exec.Runner, opts ...Option) *Supervisor {
	s := &Supervisor{
		runner:  runner,
		logger:  log.New(io.Discard),
		timings: DefaultTimings(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRunning reports whether a process with exactly this name exists.
func (s *Supervisor) IsRunning(ctx context.Context, name string) (bool, error) {
	res := s.runner.Run(ctx, "pgrep", "-x", name)
	switch {
	case res.OK():
		return true, nil
	case res.NotFound():
		return false, ErrToolMissing
	case res.ExitCode == 1:
		return false, nil
	default:
		return false, fmt.Errorf("pgrep %s: %w", name, res.Err)
	}
}

// Status checks both redshift processes.
func (s *Supervisor) Status(ctx context.Context) (Status, error) {
	daemon, err := s.IsRunning(ctx, DaemonName)
	if err != nil {
		return Status{}, err
	}
	core, err := s.IsRunning(ctx, CoreName)
	if err != nil {
		return Status{}, err
	}
	return Status{Daemon: daemon, Core: core}, nil
}

// Quit stops every redshift process and verifies they are gone.
func (s *Supervisor) Quit(ctx context.Context) error {
	s.logger.Debug("stopping redshift processes")
	s.killAll(ctx)

	if err := s.sleep(ctx, s.timings.AfterQuit); err != nil {
		return err
	}

	st, err := s.Status(ctx)
	if errors.Is(err, ErrToolMissing) {
		s.logger.Warn("cannot verify redshift stopped", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	if st.Running() {
		return ErrStillRunning
	}
	s.logger.Debug("redshift stopped")
	return nil
}

// Ensure launches redshift-gtk unless it is already running.
func (s *Supervisor) Ensure(ctx context.Context) (StartOutcome, error) {
	running, err := s.IsRunning(ctx, DaemonName)
	if err != nil && !errors.Is(err, ErrToolMissing) {
		return "", err
	}
	if errors.Is(err, ErrToolMissing) {
		s.logger.Warn("pgrep not found, assuming redshift-gtk is not running")
	}
	if running {
		s.logger.Debug("redshift-gtk already running")
		return AlreadyRunning, nil
	}

	if err := s.launch(ctx); err != nil {
		return "", err
	}
	return Started, nil
}

// Restart kills redshift and launches redshift-gtk again so it rereads its
// configuration file.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.logger.Debug("restarting redshift")
	s.killAll(ctx)

	if err := s.sleep(ctx, s.timings.AfterKill); err != nil {
		return err
	}
	return s.launch(ctx)
}

func (s *Supervisor) killAll(ctx context.Context) {
	for _, name := range []string{CoreName, DaemonName} {
		// killall exits 1 when nothing matched; that is fine.
		res := s.runner.Run(ctx, "killall", "-q", name)
		if res.NotFound() {
			s.logger.Warn("killall not found", "process", name)
		}
	}
}

func (s *Supervisor) launch(ctx context.Context) error {
	if err := s.runner.Start(ctx, DaemonName); err != nil {
		return fmt.Errorf("%w: %v", ErrNotStarted, err)
	}
	if err := s.sleep(ctx, s.timings.AfterStart); err != nil {
		return err
	}

	running, err := s.IsRunning(ctx, DaemonName)
	if errors.Is(err, ErrToolMissing) {
		s.logger.Warn("cannot verify redshift-gtk started", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	if !running {
		return ErrNotStarted
	}
	s.logger.Debug("redshift-gtk started")
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
