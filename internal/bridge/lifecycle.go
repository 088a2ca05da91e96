package bridge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/deck"
	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// DeckClient is the slice of the agent-deck CLI the bridge drives.
// Satisfied by *deck.Client and by fakes in tests.
type DeckClient interface {
	SessionStatus(ctx context.Context, session, profile string) deck.Status
	SessionOutput(ctx context.Context, session, profile string) string
	Send(ctx context.Context, session, message, profile string, wait bool, respTimeout time.Duration) (bool, string)
	StatusSummary(ctx context.Context, profile string) deck.Summary
	ListSessions(ctx context.Context, profile string) []deck.Session
	StartSession(ctx context.Context, session, profile string) deck.Result
	RestartSession(ctx context.Context, session, profile string) deck.Result
	AddSession(ctx context.Context, path, title, profile string) deck.Result
}

// settleDelay is how long a freshly started conductor session gets to
// initialize before its status is re-checked.
const settleDelay = 5 * time.Second

// Lifecycle ensures conductor sessions exist and are running.
type Lifecycle struct {
	deck DeckClient

	// conductorPath resolves the working path for a profile's conductor.
	conductorPath func(profile string) (string, error)

	// settle is the post-start initialization wait (shortened in tests).
	settle time.Duration

	log *slog.Logger
}

// NewLifecycle returns a lifecycle manager backed by the given client.
func NewLifecycle(dc DeckClient, conductorPath func(profile string) (string, error)) *Lifecycle {
	return &Lifecycle{
		deck:          dc,
		conductorPath: conductorPath,
		settle:        settleDelay,
		log:           logging.ForComponent(logging.CompLifecycle),
	}
}

// EnsureRunning makes sure the conductor session for a profile exists and
// is running, creating and starting it on demand. Idempotent: when the
// session already runs this is a single status query with no side effects.
func (l *Lifecycle) EnsureRunning(ctx context.Context, profile string) bool {
	session := ConductorSession(profile)

	if l.deck.SessionStatus(ctx, session, profile) != deck.StatusError {
		return true
	}

	l.log.Info("conductor_start_attempt", slog.String("profile", profile))

	// Try starting first: the session may exist but be stopped.
	if result := l.deck.StartSession(ctx, session, profile); !result.Ok() {
		// Session may not exist yet; create it, then start.
		l.log.Info("conductor_create", slog.String("profile", profile))

		path, err := l.conductorPath(profile)
		if err != nil {
			l.log.Error("conductor_path_failed",
				slog.String("profile", profile),
				slog.String("error", err.Error()))
			return false
		}

		if result := l.deck.AddSession(ctx, path, session, profile); !result.Ok() {
			l.log.Error("conductor_create_failed",
				slog.String("profile", profile),
				slog.String("stderr", strings.TrimSpace(result.Stderr)))
			return false
		}
		l.deck.StartSession(ctx, session, profile)
	}

	// Give the external process a moment to initialize.
	l.sleep(ctx, l.settle)

	return l.deck.SessionStatus(ctx, session, profile) != deck.StatusError
}

// EnsureAllRunning ensures conductors for every profile, continuing past
// individual failures. Returns per-profile success.
func (l *Lifecycle) EnsureAllRunning(ctx context.Context, profiles []string) map[string]bool {
	results := make(map[string]bool, len(profiles))
	for _, profile := range profiles {
		results[profile] = l.EnsureRunning(ctx, profile)
	}
	return results
}

func (l *Lifecycle) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
