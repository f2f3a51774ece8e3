package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/lumist/relaymorph/internal/retryutil"
)

// Client is a minimal Bot API client over long polling. Outbound calls pass
// through a rate limiter; sends that get throttled are retried once per the
// configured policy, using the API's retry_after delay.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
	retry   retryutil.Policy
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithSendRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithRetryPolicy(p retryutil.Policy) Option {
	return func(c *Client) { c.retry = p }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	c := &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(25), 5),
		retry:   retryutil.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Code: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if !out.OK {
		ae := &APIError{Code: out.ErrorCode, Description: out.Description}
		if ae.Code == 0 {
			ae.Code = resp.StatusCode
		}
		if out.Parameters != nil && out.Parameters.RetryAfter > 0 {
			ae.RetryAfter = time.Duration(out.Parameters.RetryAfter) * time.Second
		}
		return ae
	}
	if result != nil && len(out.Result) > 0 {
		return json.Unmarshal(out.Result, result)
	}
	return nil
}

// send wraps a mutating call with pacing and the single-retry throttle
// policy.
func (c *Client) send(ctx context.Context, method string, payload any, result any) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return c.call(ctx, method, payload, result)
	}, RetryAfter)
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout"`
}

// GetUpdates long-polls for updates and returns them with the next offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	var updates []Update
	if err := c.call(reqCtx, "getUpdates", getUpdatesRequest{Offset: offset, Timeout: secs}, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendOptions tweak a single outbound text message.
type SendOptions struct {
	ReplyTo        int64
	DisablePreview bool
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ReplyToMessageID      int64  `json:"reply_to_message_id,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendMessage sends text and returns the new message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	var msg Message
	err := c.send(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ReplyToMessageID:      opts.ReplyTo,
		DisableWebPagePreview: opts.DisablePreview,
	}, &msg)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

const maxMessageLen = 3500

// SendMessageChunked splits long text across several messages, cutting on
// rune boundaries so multi-byte text is never broken mid-character.
func (c *Client) SendMessageChunked(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		_, err := c.SendMessage(ctx, chatID, "(empty)", SendOptions{DisablePreview: true})
		return err
	}
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessageLen {
			cut := maxMessageLen
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxMessageLen
			}
			chunk = text[:cut]
		}
		if _, err := c.SendMessage(ctx, chatID, chunk, SendOptions{DisablePreview: true}); err != nil {
			return err
		}
		text = strings.TrimSpace(text[len(chunk):])
	}
	return nil
}

type copyMessageRequest struct {
	ChatID     int64 `json:"chat_id"`
	FromChatID int64 `json:"from_chat_id"`
	MessageID  int64 `json:"message_id"`
}

type copyMessageResult struct {
	MessageID int64 `json:"message_id"`
}

// CopyMessage relays arbitrary content by reference and returns the id of
// the copy in the destination chat.
func (c *Client) CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (int64, error) {
	var out copyMessageResult
	err := c.send(ctx, "copyMessage", copyMessageRequest{
		ChatID:     toChatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.MessageID, nil
}
