package host

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin/api"
)

// ErrUnknownSession is returned when a session id does not exist.
var ErrUnknownSession = errors.New("unknown terminal session")

// Terminal runs shell commands as tracked sessions. Each Run starts the
// command asynchronously under a fresh session id; output accumulates in
// the session and is readable at any time.
type Terminal struct {
	shell string
	dir   string
	log   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	order    []string
}

type session struct {
	id      string
	command string

	outMu sync.Mutex
	out   bytes.Buffer

	mu   sync.Mutex
	done bool
	exit int

	finished chan struct{}
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithShell sets the shell used to run commands. Defaults to /bin/sh.
func WithShell(shell string) TerminalOption {
	return func(t *Terminal) {
		t.shell = shell
	}
}

// WithWorkDir sets the working directory for spawned commands.
func WithWorkDir(dir string) TerminalOption {
	return func(t *Terminal) {
		t.dir = dir
	}
}

// WithTerminalLogger sets the terminal logger.
func WithTerminalLogger(log zerolog.Logger) TerminalOption {
	return func(t *Terminal) {
		t.log = log
	}
}

// NewTerminal creates a session manager.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		shell:    "/bin/sh",
		log:      zerolog.Nop(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run starts command in a new session and returns the session id without
// waiting for completion.
func (t *Terminal) Run(command string) (string, error) {
	s := &session{
		id:       uuid.New().String(),
		command:  command,
		finished: make(chan struct{}),
	}

	cmd := exec.Command(t.shell, "-c", command)
	cmd.Dir = t.dir
	cmd.Stdout = sessionWriter{s}
	cmd.Stderr = sessionWriter{s}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %q: %w", command, err)
	}

	t.mu.Lock()
	t.sessions[s.id] = s
	t.order = append(t.order, s.id)
	t.mu.Unlock()

	t.log.Debug().Str("session", s.id).Str("command", command).Msg("terminal session started")

	go func() {
		err := cmd.Wait()
		exit := 0
		if err != nil {
			exit = 1
			var xerr *exec.ExitError
			if errors.As(err, &xerr) {
				exit = xerr.ExitCode()
			}
		}
		s.mu.Lock()
		s.done = true
		s.exit = exit
		s.mu.Unlock()
		close(s.finished)
		t.log.Debug().Str("session", s.id).Int("exit", exit).Msg("terminal session finished")
	}()

	return s.id, nil
}

// Session returns a snapshot of one session.
func (t *Terminal) Session(id string) (api.TerminalSession, bool) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	t.mu.Unlock()
	if !ok {
		return api.TerminalSession{}, false
	}
	return s.snapshot(), true
}

// Sessions lists session snapshots in creation order.
func (t *Terminal) Sessions() []api.TerminalSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]api.TerminalSession, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.sessions[id].snapshot())
	}
	return out
}

// Wait blocks until the session finishes or the timeout elapses, then
// returns the final snapshot. A timeout of zero waits indefinitely.
func (t *Terminal) Wait(id string, timeout time.Duration) (api.TerminalSession, error) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	t.mu.Unlock()
	if !ok {
		return api.TerminalSession{}, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}

	if timeout <= 0 {
		<-s.finished
		return s.snapshot(), nil
	}
	select {
	case <-s.finished:
		return s.snapshot(), nil
	case <-time.After(timeout):
		return s.snapshot(), fmt.Errorf("session %q still running after %v", id, timeout)
	}
}

func (s *session) snapshot() api.TerminalSession {
	s.outMu.Lock()
	output := s.out.String()
	s.outMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return api.TerminalSession{
		ID:       s.id,
		Command:  s.command,
		Output:   output,
		Done:     s.done,
		ExitCode: s.exit,
	}
}

// sessionWriter funnels command output into the session buffer. Stdout and
// stderr share it, so writes interleave in arrival order.
type sessionWriter struct {
	s *session
}

func (w sessionWriter) Write(p []byte) (int, error) {
	w.s.outMu.Lock()
	defer w.s.outMu.Unlock()
	return w.s.out.Write(p)
}
