package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/deck"
	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// AlertMarker in a conductor reply escalates it to an out-of-band alert.
const AlertMarker = "NEED:"

// Sender delivers outbound chat messages. Satisfied by *telegram.Client.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TickOutcome classifies what one heartbeat iteration did for a profile.
type TickOutcome int

const (
	// TickQuiet means nothing needed attention; no message was sent.
	TickQuiet TickOutcome = iota
	// TickNudged means the conductor was prompted and replied.
	TickNudged
	// TickAlerted means the reply carried the alert marker and an
	// out-of-band alert was pushed.
	TickAlerted
	// TickFailed means the profile could not be serviced this tick.
	TickFailed
)

// String returns the outcome name for logs.
func (o TickOutcome) String() string {
	switch o {
	case TickQuiet:
		return "quiet"
	case TickNudged:
		return "nudged"
	case TickAlerted:
		return "alerted"
	case TickFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TickResult is the typed outcome of one profile's heartbeat iteration.
// Failures are values, not panics: a failed profile never stops the tick.
type TickResult struct {
	Profile string
	Outcome TickOutcome
	Reason  string
}

// Heartbeat periodically polls per-profile status and nudges conductors
// when sessions are waiting or erroring.
type Heartbeat struct {
	deck      DeckClient
	lifecycle *Lifecycle
	registry  *Registry
	sender    Sender

	// alertID receives out-of-band alerts when a reply carries AlertMarker.
	alertID int64

	// interval between ticks; zero or negative disables the cycle.
	interval time.Duration

	// respTimeout is how long a conductor gets to answer a nudge.
	respTimeout time.Duration

	log *slog.Logger
}

// NewHeartbeat builds the heartbeat cycle. intervalMinutes <= 0 disables it.
func NewHeartbeat(dc DeckClient, lc *Lifecycle, reg *Registry, sender Sender, alertID int64, intervalMinutes int, respTimeout time.Duration) *Heartbeat {
	return &Heartbeat{
		deck:        dc,
		lifecycle:   lc,
		registry:    reg,
		sender:      sender,
		alertID:     alertID,
		interval:    time.Duration(intervalMinutes) * time.Minute,
		respTimeout: respTimeout,
		log:         logging.ForComponent(logging.CompHeartbeat),
	}
}

// Run drives the heartbeat until ctx is cancelled. Returns nil immediately
// when the cycle is disabled.
func (h *Heartbeat) Run(ctx context.Context) error {
	if h.interval <= 0 {
		h.log.Info("heartbeat_disabled")
		return nil
	}

	h.log.Info("heartbeat_started",
		slog.Duration("interval", h.interval),
		slog.Int("profiles", h.registry.Len()))

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("heartbeat_stopped")
			return ctx.Err()
		case <-ticker.C:
			for _, result := range h.Tick(ctx) {
				h.logResult(result)
			}
		}
	}
}

// Tick runs one heartbeat evaluation across all profiles, sequentially.
// Every profile yields a result; one profile's failure never aborts the
// rest.
func (h *Heartbeat) Tick(ctx context.Context) []TickResult {
	profiles := h.registry.Profiles()
	results := make([]TickResult, 0, len(profiles))
	for _, profile := range profiles {
		results = append(results, h.tickProfile(ctx, profile))
	}
	return results
}

func (h *Heartbeat) tickProfile(ctx context.Context, profile string) TickResult {
	summary := h.deck.StatusSummary(ctx, profile)

	h.log.Info("heartbeat_summary",
		slog.String("profile", profile),
		slog.Int("waiting", summary.Waiting),
		slog.Int("running", summary.Running),
		slog.Int("idle", summary.Idle),
		slog.Int("error", summary.Error))

	// Silent when nothing needs attention.
	if summary.Waiting == 0 && summary.Error == 0 {
		return TickResult{Profile: profile, Outcome: TickQuiet}
	}

	message := h.composePrompt(ctx, profile, summary)

	if !h.lifecycle.EnsureRunning(ctx, profile) {
		return TickResult{Profile: profile, Outcome: TickFailed, Reason: "conductor not running"}
	}

	ok, reply := h.deck.Send(ctx, ConductorSession(profile), message, profile, true, h.respTimeout)
	if !ok {
		return TickResult{Profile: profile, Outcome: TickFailed, Reason: "send failed"}
	}

	if !strings.Contains(reply, AlertMarker) {
		return TickResult{Profile: profile, Outcome: TickNudged}
	}

	alert := fmt.Sprintf("%sConductor alert:\n%s", h.profileTag(profile), reply)
	if err := h.sender.SendMessage(ctx, h.alertID, alert); err != nil {
		// The conductor was nudged; only the alert push failed.
		h.log.Error("alert_delivery_failed",
			slog.String("profile", profile),
			slog.String("error", err.Error()))
		return TickResult{Profile: profile, Outcome: TickNudged, Reason: "alert delivery failed"}
	}
	return TickResult{Profile: profile, Outcome: TickAlerted}
}

// composePrompt builds the diagnostic message for a profile, embedding the
// counters and the waiting/error session details.
func (h *Heartbeat) composePrompt(ctx context.Context, profile string, summary deck.Summary) string {
	session := ConductorSession(profile)

	var waitingDetails, errorDetails []string
	for _, s := range h.deck.ListSessions(ctx, profile) {
		// Skip the conductor itself.
		if s.Title == session {
			continue
		}
		detail := fmt.Sprintf("%s (project: %s)", s.Title, s.Path)
		switch s.Status {
		case "waiting":
			waitingDetails = append(waitingDetails, detail)
		case "error":
			errorDetails = append(errorDetails, detail)
		}
	}

	parts := []string{fmt.Sprintf(
		"[HEARTBEAT] [%s] Status: %d waiting, %d running, %d idle, %d error.",
		profile, summary.Waiting, summary.Running, summary.Idle, summary.Error)}
	if len(waitingDetails) > 0 {
		parts = append(parts, fmt.Sprintf("Waiting sessions: %s.", strings.Join(waitingDetails, ", ")))
	}
	if len(errorDetails) > 0 {
		parts = append(parts, fmt.Sprintf("Error sessions: %s.", strings.Join(errorDetails, ", ")))
	}
	parts = append(parts, "Check if any need auto-response or user attention.")

	return strings.Join(parts, " ")
}

func (h *Heartbeat) profileTag(profile string) string {
	if h.registry.Len() > 1 {
		return fmt.Sprintf("[%s] ", profile)
	}
	return ""
}

func (h *Heartbeat) logResult(result TickResult) {
	attrs := []any{
		slog.String("profile", result.Profile),
		slog.String("outcome", result.Outcome.String()),
	}
	if result.Reason != "" {
		attrs = append(attrs, slog.String("reason", result.Reason))
	}
	if result.Outcome == TickFailed {
		h.log.Error("heartbeat_tick", attrs...)
		return
	}
	h.log.Info("heartbeat_tick", attrs...)
}
