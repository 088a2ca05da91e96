// Package telegram is a minimal Telegram Bot API client covering the two
// calls the bridge needs: long-polled update fetching and message sending.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// User is a Telegram user.
type User struct {
	ID int64 `json:"id"`
}

// Chat is a Telegram chat.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is an inbound Telegram message. Non-text fields are ignored.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Client talks to the Bot API over HTTP. Sends are rate limited to stay
// under Telegram's global limit.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewClient returns a client for the given bot token. baseURL may be empty
// to use the production endpoint; tests point it at a local server.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpc:   &http.Client{},
		// Telegram allows ~30 messages/second overall; stay under it.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
		log:     logging.ForComponent(logging.CompTelegram),
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// call posts form values to a Bot API method and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		// url.Error embeds the request URL, and the URL embeds the bot
		// token; keep only the underlying cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s rejected: %s", method, api.Description)
	}
	return api.Result, nil
}

// GetUpdates long-polls for updates past offset. The HTTP request blocks
// server-side for up to pollTimeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout time.Duration) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(pollTimeout.Seconds())))
	params.Set("allowed_updates", `["message"]`)

	// Bound the whole request a little past the server-side poll window.
	ctx, cancel := context.WithTimeout(ctx, pollTimeout+10*time.Second)
	defer cancel()

	result, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage delivers text to a chat, waiting on the rate limiter first.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := c.call(ctx, "sendMessage", params); err != nil {
		return err
	}
	return nil
}
