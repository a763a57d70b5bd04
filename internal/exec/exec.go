// Package exec provides command execution utilities for duskctl.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds every synchronous command. The tools we call
// (pgrep, killall, gsettings) return almost immediately.
const DefaultTimeout = 10 * time.Second

// Result holds the result of a command execution
type Result struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// OK reports whether the command ran and exited with status 0.
func (r *Result) OK() bool {
	return r.Err == nil
}

// NotFound reports whether the executable could not be located.
func (r *Result) NotFound() bool {
	return r.Err != nil && errors.Is(r.Err, exec.ErrNotFound)
}

// Options configures command execution
type Options struct {
	Timeout time.Duration
	Env     []string
	Logger  *log.Logger
}

// DefaultOptions returns default execution options
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
	}
}

// Runner runs external commands. It exists so components that shell out
// can be exercised in tests without touching the host.
type Runner interface {
	// Run executes a command and waits for it to finish.
	Run(ctx context.Context, name string, args ...string) *Result
	// Start launches a command detached from the caller and returns
	// without waiting for it.
	Start(ctx context.Context, name string, args ...string) error
}

// SystemRunner is the Runner backed by os/exec.
type SystemRunner struct {
	opts Options
}

// NewSystemRunner creates a Runner that executes real commands.
func NewSystemRunner(opts Options) *SystemRunner {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &SystemRunner{opts: opts}
}

// Run implements Runner.
func (r *SystemRunner) Run(ctx context.Context, name string, args ...string) *Result {
	return Run(ctx, name, args, r.opts)
}

// Start implements Runner.
func (r *SystemRunner) Start(ctx context.Context, name string, args ...string) error {
	return Start(name, args, r.opts)
}

// Run executes a command and returns the result
func Run(ctx context.Context, name string, args []string, opts Options) *Result {
	start := time.Now()

	result := &Result{
		Command: name,
		Args:    args,
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if opts.Logger != nil {
		opts.Logger.Debug("executing command", "cmd", name, "args", args)
	}

	err := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Err = err
	}

	if opts.Logger != nil {
		if err != nil {
			opts.Logger.Debug("command failed",
				"cmd", name,
				"exit_code", result.ExitCode,
				"duration", result.Duration,
			)
		} else {
			opts.Logger.Debug("command succeeded",
				"cmd", name,
				"duration", result.Duration,
			)
		}
	}

	return result
}

// Start launches a command in its own session with stdio discarded. The
// child keeps running after duskctl exits.
func Start(name string, args []string, opts Options) error {
	cmd := exec.Command(name, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if opts.Logger != nil {
		opts.Logger.Debug("launching command", "cmd", name, "args", args)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	// Reap the child if it exits while we are still alive.
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// CheckCommand checks if a command is available
func CheckCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// RequireCommands checks if all required commands are available
func RequireCommands(commands ...string) error {
	missing := []string{}
	for _, cmd := range commands {
		if !CheckCommand(cmd) {
			missing = append(missing, cmd)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required commands: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FormatCommand formats a command for display
func FormatCommand(name string, args []string) string {
	parts := append([]string{name}, args...)
	return strings.Join(parts, " ")
}
