// Package exectest provides a scripted exec.Runner for tests.
package exectest

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	dexec "github.com/darkawower/duskctl/internal/exec"
)

// Call records a single invocation.
type Call struct {
	Name     string
	Args     []string
	Detached bool
}

// String returns the command line of the call.
func (c Call) String() string {
	return dexec.FormatCommand(c.Name, c.Args)
}

// Runner is a fake exec.Runner. Responses are looked up by the full command
// line; when several are queued they are consumed in order and the last one
// repeats. Handler, when set, takes precedence over queued responses.
type Runner struct {
	Handler func(name string, args []string) *dexec.Result
	OnStart func(name string, args []string) error

	mu        sync.Mutex
	calls     []Call
	responses map[string][]*dexec.Result
}

// New creates an empty fake runner.
func New() *Runner {
	return &Runner{responses: make(map[string][]*dexec.Result)}
}

// On queues responses for a command line such as "pgrep -x redshift".
func (r *Runner) On(cmdline string, results ...*dexec.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responses == nil {
		r.responses = make(map[string][]*dexec.Result)
	}
	r.responses[cmdline] = append(r.responses[cmdline], results...)
	return r
}

// Run implements exec.Runner.
func (r *Runner) Run(ctx context.Context, name string, args ...string) *dexec.Result {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: args})
	handler := r.Handler
	r.mu.Unlock()

	var res *dexec.Result
	if handler != nil {
		res = handler(name, args)
	}
	if res == nil {
		res = r.next(dexec.FormatCommand(name, args))
	}
	out := *res
	out.Command = name
	out.Args = args
	return &out
}

// Start implements exec.Runner.
func (r *Runner) Start(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: args, Detached: true})
	onStart := r.OnStart
	r.mu.Unlock()

	if onStart != nil {
		return onStart(name, args)
	}
	return nil
}

func (r *Runner) next(cmdline string) *dexec.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.responses[cmdline]
	switch len(queue) {
	case 0:
		return OK("")
	case 1:
		return queue[0]
	default:
		r.responses[cmdline] = queue[1:]
		return queue[0]
	}
}

// Calls returns a copy of the recorded calls.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CommandLines returns the recorded calls as command lines. Detached calls
// are prefixed with "&".
func (r *Runner) CommandLines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		if c.Detached {
			out[i] = "& " + c.String()
		} else {
			out[i] = c.String()
		}
	}
	return out
}

// OK returns a successful result with the given stdout.
func OK(stdout string) *dexec.Result {
	return &dexec.Result{Stdout: stdout}
}

// Exit returns a result that exited with the given non-zero code.
func Exit(code int, stderr string) *dexec.Result {
	return &dexec.Result{
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}

// NotFound returns a result for an executable missing from PATH.
func NotFound(name string) *dexec.Result {
	return &dexec.Result{
		ExitCode: -1,
		Err:      &exec.Error{Name: name, Err: exec.ErrNotFound},
	}
}
