package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjoeboo/conductor-bridge/internal/deck"
)

// AggregateStatus holds status summed across all profiles plus each
// profile's own summary.
type AggregateStatus struct {
	Totals     deck.Summary
	PerProfile map[string]deck.Summary
}

// Aggregate fetches the status summary for each profile independently and
// sums the counters. A profile whose fetch fails contributes zeros; it
// never fails the aggregation.
func Aggregate(ctx context.Context, dc DeckClient, profiles []string) AggregateStatus {
	agg := AggregateStatus{
		PerProfile: make(map[string]deck.Summary, len(profiles)),
	}
	for _, profile := range profiles {
		summary := dc.StatusSummary(ctx, profile)
		agg.PerProfile[profile] = summary
		agg.Totals.Waiting += summary.Waiting
		agg.Totals.Running += summary.Running
		agg.Totals.Idle += summary.Idle
		agg.Totals.Error += summary.Error
		agg.Totals.Total += summary.Total
	}
	return agg
}

// FormatStatus renders an aggregate for the chat user. The per-profile
// breakdown only appears when more than one profile is configured.
func FormatStatus(agg AggregateStatus, profiles []string) string {
	t := agg.Totals
	lines := []string{
		fmt.Sprintf("Total: %d sessions", t.Total),
		fmt.Sprintf("  Running: %d", t.Running),
		fmt.Sprintf("  Waiting: %d", t.Waiting),
		fmt.Sprintf("  Idle: %d", t.Idle),
		fmt.Sprintf("  Error: %d", t.Error),
	}

	if len(profiles) > 1 {
		lines = append(lines, "")
		for _, profile := range profiles {
			p := agg.PerProfile[profile]
			lines = append(lines, fmt.Sprintf("[%s] %ds (%dR %dW %dI %dE)",
				profile, p.Total, p.Running, p.Waiting, p.Idle, p.Error))
		}
	}

	return strings.Join(lines, "\n")
}

// statusIcons maps a session status to its list icon.
var statusIcons = map[string]string{
	"running": "\U0001f7e2",
	"waiting": "\U0001f7e1",
	"idle":    "⚪",
	"error":   "\U0001f534",
}

// FormatSessions renders the session list across profiles. Each line is
// tagged with its profile when more than one profile is configured.
func FormatSessions(ctx context.Context, dc DeckClient, profiles []string) string {
	var lines []string
	for _, profile := range profiles {
		for _, s := range dc.ListSessions(ctx, profile) {
			icon, ok := statusIcons[s.Status]
			if !ok {
				icon = "❓"
			}
			title := s.Title
			if title == "" {
				title = "untitled"
			}
			prefix := ""
			if len(profiles) > 1 {
				prefix = fmt.Sprintf("[%s] ", profile)
			}
			lines = append(lines, fmt.Sprintf("%s %s%s (%s)", icon, prefix, title, s.Tool))
		}
	}
	if len(lines) == 0 {
		return "No sessions found."
	}
	return strings.Join(lines, "\n")
}
