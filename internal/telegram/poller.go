package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// Handler processes one inbound text message.
type Handler func(ctx context.Context, msg Message)

// pollWindow is the server-side long-poll duration per getUpdates call.
const pollWindow = 30 * time.Second

// errorBackoff is the pause after a failed getUpdates call.
const errorBackoff = 5 * time.Second

// Poller drives the getUpdates long-poll loop and hands text messages to a
// handler. Messages are handled sequentially in arrival order.
type Poller struct {
	client  *Client
	handler Handler
	log     *slog.Logger
}

// NewPoller returns a poller delivering messages to handler.
func NewPoller(client *Client, handler Handler) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		log:     logging.ForComponent(logging.CompTelegram),
	}
}

// Run polls until ctx is cancelled. Transport errors back off and retry;
// they never terminate the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("polling_started")

	var offset int64
	for {
		if ctx.Err() != nil {
			p.log.Info("polling_stopped")
			return ctx.Err()
		}

		updates, err := p.client.GetUpdates(ctx, offset, pollWindow)
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("polling_stopped")
				return ctx.Err()
			}
			p.log.Warn("get_updates_failed", slog.String("error", err.Error()))
			p.sleep(ctx, errorBackoff)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			p.handler(ctx, *update.Message)
		}
	}
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
