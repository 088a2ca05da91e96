package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sjoeboo/conductor-bridge/internal/config"
	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// InboundMessage is one text message from the chat transport.
type InboundMessage struct {
	ChatID   int64
	SenderID int64
	Text     string
}

// Bridge routes inbound chat messages to conductor sessions and relays
// their replies.
type Bridge struct {
	deck      DeckClient
	lifecycle *Lifecycle
	registry  *Registry
	sender    Sender

	allowed     []int64
	respTimeout time.Duration
	maxLen      int

	log *slog.Logger
}

// New builds a Bridge.
func New(dc DeckClient, lc *Lifecycle, reg *Registry, sender Sender, allowed []int64, respTimeout time.Duration) *Bridge {
	return &Bridge{
		deck:        dc,
		lifecycle:   lc,
		registry:    reg,
		sender:      sender,
		allowed:     allowed,
		respTimeout: respTimeout,
		maxLen:      config.TelegramMaxLength,
		log:         logging.ForComponent(logging.CompBridge),
	}
}

// HandleMessage processes one inbound message: authorization, command
// dispatch, or forwarding to a conductor. Never returns an error to the
// transport; every failure ends in a log line and, where appropriate, a
// short user-facing reply.
func (b *Bridge) HandleMessage(ctx context.Context, msg InboundMessage) {
	if !Authorized(b.allowed, msg.SenderID) {
		// Dropped silently: the sender must not learn the bridge exists.
		b.log.Warn("unauthorized_message", slog.Int64("sender", msg.SenderID))
		return
	}
	if msg.Text == "" {
		return
	}

	switch command(msg.Text) {
	case "/start":
		b.reply(ctx, msg.ChatID, b.startText())
	case "/help":
		b.reply(ctx, msg.ChatID, b.helpText())
	case "/status":
		agg := Aggregate(ctx, b.deck, b.registry.Profiles())
		b.reply(ctx, msg.ChatID, FormatStatus(agg, b.registry.Profiles()))
	case "/sessions":
		b.reply(ctx, msg.ChatID, FormatSessions(ctx, b.deck, b.registry.Profiles()))
	case "/output":
		b.handleOutput(ctx, msg)
	case "/restart":
		b.handleRestart(ctx, msg)
	default:
		b.forward(ctx, msg)
	}
}

// command returns the leading slash-command of a message, or "".
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	// /p is a routing prefix, not a command; it falls through to forward.
	if cmd == "/p" {
		return ""
	}
	return cmd
}

// handleOutput replies with the conductor's most recent output, defaulting
// to the default profile: /output [profile]
func (b *Bridge) handleOutput(ctx context.Context, msg InboundMessage) {
	target := b.registry.Default()
	parts := strings.Fields(msg.Text)
	if len(parts) > 1 && b.registry.Has(parts[1]) {
		target = parts[1]
	}

	output := b.deck.SessionOutput(ctx, ConductorSession(target), target)
	if output == "" {
		output = fmt.Sprintf("[No output from conductor [%s].]", target)
	}
	for _, chunk := range SplitMessage(output, b.maxLen) {
		b.reply(ctx, msg.ChatID, chunk)
	}
}

// handleRestart restarts a conductor session, defaulting to the default
// profile: /restart [profile]
func (b *Bridge) handleRestart(ctx context.Context, msg InboundMessage) {
	target := b.registry.Default()
	parts := strings.Fields(msg.Text)
	if len(parts) > 1 && b.registry.Has(parts[1]) {
		target = parts[1]
	}

	b.reply(ctx, msg.ChatID, fmt.Sprintf("Restarting conductor for [%s]...", target))

	result := b.deck.RestartSession(ctx, ConductorSession(target), target)
	if result.Ok() {
		b.reply(ctx, msg.ChatID, fmt.Sprintf("Conductor [%s] restarted.", target))
		return
	}
	b.reply(ctx, msg.ChatID, fmt.Sprintf("Restart failed: %s", strings.TrimSpace(result.Stderr)))
}

// forward routes a plain message to its conductor and relays the reply.
func (b *Bridge) forward(ctx context.Context, msg InboundMessage) {
	target := ResolveTarget(msg.Text, b.registry)
	profile := target.Profile
	if !target.Explicit {
		profile = b.registry.Default()
	}
	text := target.Text
	if text == "" {
		text = msg.Text
	}

	if !b.lifecycle.EnsureRunning(ctx, profile) {
		b.reply(ctx, msg.ChatID, fmt.Sprintf("[Could not start conductor for %s. Check agent-deck.]", profile))
		return
	}

	b.log.Info("user_message",
		slog.String("profile", profile),
		slog.Int("length", len(text)))

	ok, response := b.deck.Send(ctx, ConductorSession(profile), text, profile, true, b.respTimeout)
	if !ok {
		b.reply(ctx, msg.ChatID, fmt.Sprintf("[Failed to send message to conductor [%s].]", profile))
		return
	}

	tag := ""
	if b.registry.Len() > 1 {
		tag = fmt.Sprintf("[%s] ", profile)
	}

	// Typing indicator: a short ack before the reply itself lands.
	b.reply(ctx, msg.ChatID, tag+"...")

	b.log.Info("conductor_response",
		slog.String("profile", profile),
		slog.Int("length", len(response)))

	// The tag counts against the transport limit too.
	for _, chunk := range SplitMessage(response, b.maxLen-utf8.RuneCountInString(tag)) {
		b.reply(ctx, msg.ChatID, tag+chunk)
	}
}

// reply sends a message back to the chat, logging delivery failures
// instead of propagating them.
func (b *Bridge) reply(ctx context.Context, chatID int64, text string) {
	if err := b.sender.SendMessage(ctx, chatID, text); err != nil {
		b.log.Error("reply_failed",
			slog.Int64("chat", chatID),
			slog.String("error", err.Error()))
	}
}

func (b *Bridge) startText() string {
	return fmt.Sprintf(
		"Conductor bridge active.\n"+
			"Profiles: %s\n"+
			"Commands: /status /sessions /output /help /restart\n"+
			"Route to profile: /p <profile> <message> or <profile>: <message>\n"+
			"Default profile: %s",
		strings.Join(b.registry.Profiles(), ", "), b.registry.Default())
}

func (b *Bridge) helpText() string {
	return fmt.Sprintf(
		"Conductor Commands:\n"+
			"/status    - Aggregated status across all profiles\n"+
			"/sessions  - List all sessions (all profiles)\n"+
			"/output    - Last conductor output (default or specify profile)\n"+
			"/restart   - Restart a conductor (default or specify profile)\n"+
			"/help      - This message\n\n"+
			"Profiles: %s\n"+
			"Route: /p <profile> <message> or <profile>: <message>\n"+
			"Default: messages go to %s conductor",
		strings.Join(b.registry.Profiles(), ", "), b.registry.Default())
}
