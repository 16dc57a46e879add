// Package client sends the conversation to a chat-completion endpoint and returns the reply.
// Each call issues exactly one POST; there is no retry and no streaming.
package client

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

	"github.com/tidwall/gjson"
	"golang.org/x/net/http/httpguts"

	"chatgpt/internal/logger"
	"chatgpt/pkg/chattypes"
)

// DefaultTimeout bounds a single request, including reading the response body.
const DefaultTimeout = 120 * time.Second

// maxErrorBody limits how much of an unstructured error body ends up in a message.
const maxErrorBody = 512

// Replier receives the reply content as soon as it arrives.
type Replier interface {
	Reply(content string)
}

// Client performs chat-completion calls.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	out        Replier
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero or negative keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithOutput sets where reply content is echoed.
func WithOutput(out Replier) Option {
	return func(c *Client) {
		c.out = out
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Complete sends messages to cfg.URL and returns the first choice's message.
func (c *Client) Complete(ctx context.Context, cfg chattypes.Config, messages []chattypes.Message) (chattypes.Message, error) {
	httpReq, err := c.newRequest(ctx, cfg, messages)
	if err != nil {
		return chattypes.Message{}, err
	}

	ctx, cancel := context.WithTimeout(httpReq.Context(), c.timeout)
	defer cancel()
	httpReq = httpReq.WithContext(ctx)

	logger.Debug("Sending chat completion",
		"url", cfg.URL,
		"model", cfg.Model,
		"message_count", len(messages),
		"timeout", c.timeout.String())

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return chattypes.Message{}, fmt.Errorf("%w: %v", chattypes.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chattypes.Message{}, fmt.Errorf("%w: read response body: %v", chattypes.ErrNetwork, err)
	}

	logger.Debug("Chat completion received",
		"status_code", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond).String())

	msg, err := parseResponse(resp.StatusCode, body)
	if err != nil {
		return chattypes.Message{}, err
	}

	if c.out != nil {
		c.out.Reply(msg.Content)
	}
	return msg, nil
}

// newRequest builds the POST. Invalid header material is reported instead of panicking.
func (c *Client) newRequest(ctx context.Context, cfg chattypes.Config, messages []chattypes.Message) (*http.Request, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: url is empty", chattypes.ErrInvalidConfig)
	}

	auth := "Bearer " + cfg.Key
	if !httpguts.ValidHeaderFieldValue(auth) {
		return nil, fmt.Errorf("%w: key contains characters not allowed in a header", chattypes.ErrInvalidConfig)
	}

	if messages == nil {
		messages = []chattypes.Message{}
	}
	payload, err := json.Marshal(chattypes.Request{
		Model:    cfg.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", chattypes.ErrInvalidConfig, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chattypes.ErrInvalidConfig, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// parseResponse checks the body for a failure indication before trusting choices[0].
func parseResponse(status int, body []byte) (chattypes.Message, error) {
	if remote := remoteError(status, body); remote != nil {
		logger.Debug("Chat completion rejected", "status_code", status, "type", remote.Type, "code", remote.Code)
		return chattypes.Message{}, remote
	}

	var resp chattypes.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return chattypes.Message{}, fmt.Errorf("%w: response: %v", chattypes.ErrDecode, err)
	}
	if len(resp.Choices) == 0 {
		return chattypes.Message{}, fmt.Errorf("%w: response contains no choices", chattypes.ErrDecode)
	}

	logger.Debug("Chat completion decoded",
		"id", resp.ID,
		"choices", len(resp.Choices),
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message, nil
}

// remoteError returns nil when the response looks successful.
func remoteError(status int, body []byte) *chattypes.RemoteError {
	var errField gjson.Result
	if gjson.ValidBytes(body) {
		errField = gjson.GetBytes(body, "error")
	}

	failed := status < 200 || status > 299
	hasError := errField.IsObject() || (errField.Type == gjson.String && errField.String() != "")
	if !failed && !hasError {
		return nil
	}

	remote := &chattypes.RemoteError{StatusCode: status}
	switch {
	case errField.IsObject():
		remote.Message = errField.Get("message").String()
		remote.Type = errField.Get("type").String()
		remote.Code = errField.Get("code").String()
	case hasError:
		remote.Message = errField.String()
	default:
		remote.Message = summarize(body, status)
	}
	return remote
}

func summarize(body []byte, status int) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
