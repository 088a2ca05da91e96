package bridge

import (
	"context"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/deck"
)

type sendCall struct {
	Session string
	Message string
	Profile string
	Wait    bool
}

// fakeDeck implements DeckClient with per-operation hooks and call
// recording. Nil hooks fall back to permissive defaults.
type fakeDeck struct {
	statusFn  func(session, profile string) deck.Status
	sendFn    func(session, message, profile string, wait bool) (bool, string)
	summaryFn func(profile string) deck.Summary
	listFn    func(profile string) []deck.Session
	startFn   func(session, profile string) deck.Result
	addFn     func(path, title, profile string) deck.Result
	restartFn func(session, profile string) deck.Result
	outputFn  func(session, profile string) string

	statusCalls []string
	sends       []sendCall
	starts      []string
	adds        []string
	restarts    []string
}

func (f *fakeDeck) SessionStatus(_ context.Context, session, profile string) deck.Status {
	f.statusCalls = append(f.statusCalls, session)
	if f.statusFn != nil {
		return f.statusFn(session, profile)
	}
	return deck.StatusRunning
}

func (f *fakeDeck) SessionOutput(_ context.Context, session, profile string) string {
	if f.outputFn != nil {
		return f.outputFn(session, profile)
	}
	return ""
}

func (f *fakeDeck) Send(_ context.Context, session, message, profile string, wait bool, _ time.Duration) (bool, string) {
	f.sends = append(f.sends, sendCall{Session: session, Message: message, Profile: profile, Wait: wait})
	if f.sendFn != nil {
		return f.sendFn(session, message, profile, wait)
	}
	return true, "ok"
}

func (f *fakeDeck) StatusSummary(_ context.Context, profile string) deck.Summary {
	if f.summaryFn != nil {
		return f.summaryFn(profile)
	}
	return deck.Summary{}
}

func (f *fakeDeck) ListSessions(_ context.Context, profile string) []deck.Session {
	if f.listFn != nil {
		return f.listFn(profile)
	}
	return nil
}

func (f *fakeDeck) StartSession(_ context.Context, session, profile string) deck.Result {
	f.starts = append(f.starts, session)
	if f.startFn != nil {
		return f.startFn(session, profile)
	}
	return deck.Result{}
}

func (f *fakeDeck) RestartSession(_ context.Context, session, profile string) deck.Result {
	f.restarts = append(f.restarts, session)
	if f.restartFn != nil {
		return f.restartFn(session, profile)
	}
	return deck.Result{}
}

func (f *fakeDeck) AddSession(_ context.Context, path, title, profile string) deck.Result {
	f.adds = append(f.adds, title)
	if f.addFn != nil {
		return f.addFn(path, title, profile)
	}
	return deck.Result{}
}

// fakeSender records outbound chat messages.
type fakeSender struct {
	messages []outbound
	err      error
}

type outbound struct {
	ChatID int64
	Text   string
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, outbound{ChatID: chatID, Text: text})
	return nil
}

// newTestLifecycle returns a lifecycle with the settle wait removed.
func newTestLifecycle(dc DeckClient) *Lifecycle {
	lc := NewLifecycle(dc, func(profile string) (string, error) {
		return "/tmp/conductor/" + profile, nil
	})
	lc.settle = 0
	return lc
}
