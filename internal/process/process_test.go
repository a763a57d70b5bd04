package process

import (
	"context"
	"errors"
	"sync"
	"testing"

	dexec "github.com/darkawower/duskctl/internal/exec"
	"github.com/darkawower/duskctl/internal/exec/exectest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost tracks which process names are alive and answers pgrep/killall.
type fakeHost struct {
	mu      sync.Mutex
	alive   map[string]bool
	stuck   map[string]bool // survive killall
	noStart bool            // launched process dies immediately
}

func newFakeHost(alive ...string) *fakeHost {
	h := &fakeHost{alive: map[string]bool{}, stuck: map[string]bool{}}
	for _, n := range alive {
		h.alive[n] = true
	}
	return h
}

func (h *fakeHost) runner() *exectest.Runner {
	r := exectest.New()
	r.Handler = func(name string, args []string) *dexec.Result {
		h.mu.Lock()
		defer h.mu.Unlock()
		switch name {
		case "pgrep":
			if h.alive[args[1]] {
				return exectest.OK("1234\n")
			}
			return exectest.Exit(1, "")
		case "killall":
			target := args[1]
			if !h.alive[target] {
				return exectest.Exit(1, "")
			}
			if !h.stuck[target] {
				delete(h.alive, target)
			}
			return exectest.OK("")
		}
		return nil
	}
	r.OnStart = func(name string, args []string) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		if !h.noStart {
			h.alive[name] = true
			if name == DaemonName {
				h.alive[CoreName] = true
			}
		}
		return nil
	}
	return r
}

func newTestSupervisor(r dexec.Runner) *Supervisor {
	return New(r, WithTimings(Timings{}))
}

func TestIsRunning(t *testing.T) {
	tests := []struct {
		name    string
		result  *dexec.Result
		want    bool
		wantErr error
	}{
		{"running", exectest.OK("42\n"), true, nil},
		{"not running", exectest.Exit(1, ""), false, nil},
		{"pgrep missing", exectest.NotFound("pgrep"), false, ErrToolMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := exectest.New().On("pgrep -x redshift-gtk", tt.result)
			s := newTestSupervisor(r)

			got, err := s.IsRunning(context.Background(), DaemonName)

			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsRunning_UnexpectedExit(t *testing.T) {
	r := exectest.New().On("pgrep -x redshift", exectest.Exit(2, "syntax error"))
	s := newTestSupervisor(r)

	_, err := s.IsRunning(context.Background(), CoreName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pgrep redshift")
}

func TestQuit(t *testing.T) {
	h := newFakeHost(DaemonName, CoreName)
	r := h.runner()
	s := newTestSupervisor(r)

	err := s.Quit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"killall -q redshift",
		"killall -q redshift-gtk",
		"pgrep -x redshift-gtk",
		"pgrep -x redshift",
	}, r.CommandLines())
}

func TestQuit_NothingRunning(t *testing.T) {
	h := newFakeHost()
	s := newTestSupervisor(h.runner())

	assert.NoError(t, s.Quit(context.Background()))
}

func TestQuit_StillRunning(t *testing.T) {
	h := newFakeHost(DaemonName, CoreName)
	h.stuck[CoreName] = true
	s := newTestSupervisor(h.runner())

	err := s.Quit(context.Background())
	assert.ErrorIs(t, err, ErrStillRunning)
}

func TestEnsure_AlreadyRunning(t *testing.T) {
	h := newFakeHost(DaemonName)
	r := h.runner()
	s := newTestSupervisor(r)

	outcome, err := s.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AlreadyRunning, outcome)
	assert.Equal(t, []string{"pgrep -x redshift-gtk"}, r.CommandLines())
}

func TestEnsure_Starts(t *testing.T) {
	h := newFakeHost()
	r := h.runner()
	s := newTestSupervisor(r)

	outcome, err := s.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Started, outcome)
	assert.Equal(t, []string{
		"pgrep -x redshift-gtk",
		"& redshift-gtk",
		"pgrep -x redshift-gtk",
	}, r.CommandLines())
}

func TestEnsure_NotStarted(t *testing.T) {
	h := newFakeHost()
	h.noStart = true
	s := newTestSupervisor(h.runner())

	_, err := s.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestEnsure_LaunchError(t *testing.T) {
	r := exectest.New().On("pgrep -x redshift-gtk", exectest.Exit(1, ""))
	r.OnStart = func(name string, args []string) error {
		return errors.New("exec: not found")
	}
	s := newTestSupervisor(r)

	_, err := s.Ensure(context.Background())
	require.ErrorIs(t, err, ErrNotStarted)
	assert.Contains(t, err.Error(), "exec: not found")
}

func TestEnsure_PgrepMissing(t *testing.T) {
	r := exectest.New().On("pgrep -x redshift-gtk", exectest.NotFound("pgrep"))
	s := newTestSupervisor(r)

	outcome, err := s.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Started, outcome)
}

func TestRestart(t *testing.T) {
	h := newFakeHost(DaemonName, CoreName)
	r := h.runner()
	s := newTestSupervisor(r)

	require.NoError(t, s.Restart(context.Background()))
	assert.Equal(t, []string{
		"killall -q redshift",
		"killall -q redshift-gtk",
		"& redshift-gtk",
		"pgrep -x redshift-gtk",
	}, r.CommandLines())
}

func TestRestart_ContextCancelled(t *testing.T) {
	h := newFakeHost(DaemonName)
	r := h.runner()
	s := New(r, WithTimings(DefaultTimings()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Restart(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	for _, c := range r.Calls() {
		assert.False(t, c.Detached, "must not launch after cancellation")
	}
}

func TestStatus(t *testing.T) {
	h := newFakeHost(CoreName)
	s := newTestSupervisor(h.runner())

	st, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Daemon)
	assert.True(t, st.Core)
	assert.True(t, st.Running())
}

func TestDefaultTimings(t *testing.T) {
	tm := DefaultTimings()
	assert.Less(t, tm.AfterQuit, tm.AfterKill)
	assert.Less(t, tm.AfterKill, tm.AfterStart)
}
