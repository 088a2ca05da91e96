package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// Status is a session status as reported by agent-deck.
type Status string

const (
	StatusRunning Status = "running"
	StatusWaiting Status = "waiting"
	StatusIdle    Status = "idle"

	// StatusError covers both a reported error state and any failure to
	// determine the state (non-zero exit, timeout, malformed JSON).
	// Callers treat the two identically.
	StatusError Status = "error"
)

// Summary holds per-profile session counts from `status --json`.
// The zero value is also the uniform fetch-failure result.
type Summary struct {
	Waiting int `json:"waiting"`
	Running int `json:"running"`
	Idle    int `json:"idle"`
	Error   int `json:"error"`
	Total   int `json:"total"`
}

// Session is one entry from `list --json`.
type Session struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Tool   string `json:"tool"`
	Path   string `json:"path"`
}

// Default invocation timeouts. Sends with --wait get the response timeout
// plus a margin instead.
const (
	queryTimeout     = 30 * time.Second
	lifecycleTimeout = 60 * time.Second
	sendMargin       = 30 * time.Second
	minSendTimeout   = 60 * time.Second
)

// Client wraps the agent-deck CLI. All operations degrade to typed zero
// values on failure; none of them return an error.
type Client struct {
	runner Runner
	log    *slog.Logger
}

// NewClient returns a Client using the given runner.
func NewClient(runner Runner) *Client {
	return &Client{
		runner: runner,
		log:    logging.ForComponent(logging.CompDeck),
	}
}

// run prepends the -p <profile> flag when a profile is given.
func (c *Client) run(ctx context.Context, profile string, timeout time.Duration, args ...string) Result {
	if profile != "" {
		args = append([]string{"-p", profile}, args...)
	}
	return c.runner.Run(ctx, timeout, args...)
}

// SessionStatus returns the status of a session, or StatusError when the
// session is unknown, the CLI fails, or the output cannot be parsed.
func (c *Client) SessionStatus(ctx context.Context, session, profile string) Status {
	result := c.run(ctx, profile, queryTimeout, "session", "show", session, "--json")
	if !result.Ok() {
		return StatusError
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &data); err != nil || data.Status == "" {
		return StatusError
	}

	switch Status(data.Status) {
	case StatusRunning, StatusWaiting, StatusIdle, StatusError:
		return Status(data.Status)
	default:
		return StatusError
	}
}

// SessionOutput returns the last response from a session. On failure it
// returns a bracketed diagnostic embedding the CLI stderr; that string is
// shown directly to the chat user.
func (c *Client) SessionOutput(ctx context.Context, session, profile string) string {
	result := c.run(ctx, profile, queryTimeout, "session", "output", session, "-q")
	if !result.Ok() {
		return fmt.Sprintf("[Error getting output: %s]", strings.TrimSpace(result.Stderr))
	}
	return strings.TrimSpace(result.Stdout)
}

// Send delivers a message to a session. When wait is true the call blocks
// until the tool renders a reply or respTimeout elapses, and the reply is
// returned as text. On failure ok is false and text is empty.
func (c *Client) Send(ctx context.Context, session, message, profile string, wait bool, respTimeout time.Duration) (bool, string) {
	var result Result
	if wait {
		total := respTimeout + sendMargin
		if total < minSendTimeout {
			total = minSendTimeout
		}
		result = c.run(ctx, profile, total,
			"session", "send", session, message,
			"--wait", "--timeout", fmt.Sprintf("%ds", int(respTimeout.Seconds())), "-q")
	} else {
		result = c.run(ctx, profile, queryTimeout,
			"session", "send", session, message, "--no-wait")
	}

	if !result.Ok() {
		c.log.Error("send_failed",
			slog.String("session", session),
			slog.String("profile", profile),
			slog.String("stderr", strings.TrimSpace(result.Stderr)))
		return false, ""
	}
	return true, strings.TrimSpace(result.Stdout)
}

// StatusSummary returns the session counts for one profile. Any failure
// yields an all-zero summary so an unreachable profile reports as empty
// instead of erroring the aggregate.
func (c *Client) StatusSummary(ctx context.Context, profile string) Summary {
	result := c.run(ctx, profile, queryTimeout, "status", "--json")
	if !result.Ok() {
		return Summary{}
	}

	var summary Summary
	if err := json.Unmarshal([]byte(result.Stdout), &summary); err != nil {
		return Summary{}
	}
	return summary
}

// ListSessions returns all sessions for a profile, or nil on any failure.
// Tolerates both a bare array and the {"sessions": [...]} wrapper.
func (c *Client) ListSessions(ctx context.Context, profile string) []Session {
	result := c.run(ctx, profile, queryTimeout, "list", "--json")
	if !result.Ok() {
		return nil
	}

	raw := []byte(result.Stdout)

	var wrapped struct {
		Sessions []Session `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Sessions != nil {
		return wrapped.Sessions
	}

	var bare []Session
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return nil
}

// StartSession starts an existing session.
func (c *Client) StartSession(ctx context.Context, session, profile string) Result {
	return c.run(ctx, profile, lifecycleTimeout, "session", "start", session)
}

// RestartSession restarts a session.
func (c *Client) RestartSession(ctx context.Context, session, profile string) Result {
	return c.run(ctx, profile, lifecycleTimeout, "session", "restart", session)
}

// AddSession registers a new claude session at path under the infra group.
func (c *Client) AddSession(ctx context.Context, path, title, profile string) Result {
	return c.run(ctx, profile, lifecycleTimeout,
		"add", path, "-t", title, "-c", "claude", "-g", "infra")
}
