package console

import (
	"context"
	"sync"

	"sitemap-console/pkg/control"
)

type command struct {
	prompter control.Prompter
	fn       func(*SiteSettings) error
	done     chan error
}

// Session serializes access to a console. Every command runs on the
// session goroutine with its own prompter, so confirmations and alerts
// reach the caller that caused them.
type Session struct {
	console  *SiteSettings
	commands chan command
	stopped  chan struct{}
	once     sync.Once
}

// NewSession wraps c. Run must be started before Do is called.
func NewSession(c *SiteSettings) *Session {
	return &Session{
		console:  c,
		commands: make(chan command),
		stopped:  make(chan struct{}),
	}
}

// Run executes commands until ctx is done or Close is called.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case cmd := <-s.commands:
			prev := s.console.setPrompter(cmd.prompter)
			err := cmd.fn(s.console)
			s.console.setPrompter(prev)
			cmd.done <- err
		}
	}
}

// Do runs fn on the session goroutine and waits for its result. A nil
// prompter accepts every confirmation.
func (s *Session) Do(ctx context.Context, p control.Prompter, fn func(*SiteSettings) error) error {
	if p == nil {
		p = control.AcceptAll{}
	}
	cmd := command{prompter: p, fn: fn, done: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the session. Pending Do calls return ErrSessionClosed.
func (s *Session) Close() {
	s.once.Do(func() { close(s.stopped) })
}
