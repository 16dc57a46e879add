// Package session runs one chat invocation: it initializes storage, then applies the
// planned operations (clean, hint update, chat turn) against the store and the client.
package session

import (
	"context"
	"fmt"

	"chatgpt/internal/logger"
	"chatgpt/internal/storage"
	"chatgpt/pkg/chattypes"
)

// Completer sends a message sequence and returns the reply.
type Completer interface {
	Complete(ctx context.Context, cfg chattypes.Config, messages []chattypes.Message) (chattypes.Message, error)
}

// Controller orchestrates the store and the client for one invocation.
type Controller struct {
	store    *storage.Store
	client   Completer
	overlay  func(chattypes.Config) chattypes.Config
	sendHint bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfigOverlay transforms the stored Config before each chat call.
func WithConfigOverlay(fn func(chattypes.Config) chattypes.Config) Option {
	return func(c *Controller) {
		if fn != nil {
			c.overlay = fn
		}
	}
}

// WithSendHint controls whether a non-empty hint is prepended to the outbound messages.
func WithSendHint(send bool) Option {
	return func(c *Controller) {
		c.sendHint = send
	}
}

// NewController creates a Controller. The hint stays local unless WithSendHint(true) is given.
func NewController(store *storage.Store, client Completer, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		client:   client,
		overlay:  func(cfg chattypes.Config) chattypes.Config { return cfg },
		sendHint: false,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run initializes storage and applies ops in order. It stops at the first error and
// after a Clean.
func (c *Controller) Run(ctx context.Context, ops []Operation) error {
	if err := c.store.EnsureInitialized(); err != nil {
		return err
	}

	for _, op := range ops {
		logger.Debug("Running operation", "op", op.Name())

		switch op := op.(type) {
		case Clean:
			return c.Clean()
		case SetHint:
			if err := c.SetHint(op.Text); err != nil {
				return err
			}
		case Chat:
			if _, err := c.Chat(ctx, op.Prompt); err != nil {
				return err
			}
		case Noop:
		default:
			return fmt.Errorf("unsupported operation %T", op)
		}
	}
	return nil
}

// Clean resets the history document.
func (c *Controller) Clean() error {
	if err := c.store.ResetHistory(); err != nil {
		return err
	}
	logger.Debug("History cleared")
	return nil
}

// SetHint stores text as the system hint, leaving the exchange untouched.
func (c *Controller) SetHint(text string) error {
	history, err := c.store.LoadHistory()
	if err != nil {
		return err
	}

	history.Hint = chattypes.NewMessage(chattypes.RoleSystem, text)
	if err := c.store.SaveHistory(history); err != nil {
		return err
	}

	logger.Debug("Hint updated", "length", len(text))
	return nil
}

// Chat sends prompt with the stored history and persists the user message and reply
// together. Nothing is written if the call fails.
func (c *Controller) Chat(ctx context.Context, prompt string) (chattypes.Message, error) {
	history, err := c.store.LoadHistory()
	if err != nil {
		return chattypes.Message{}, err
	}
	history.History = append(history.History, chattypes.NewMessage(chattypes.RoleUser, prompt))

	cfg, err := c.store.LoadConfig()
	if err != nil {
		return chattypes.Message{}, err
	}
	cfg = c.overlay(cfg)

	reply, err := c.client.Complete(ctx, cfg, c.outbound(history))
	if err != nil {
		return chattypes.Message{}, err
	}

	history.History = append(history.History, reply)
	if err := c.store.SaveHistory(history); err != nil {
		return chattypes.Message{}, err
	}

	logger.Debug("Chat turn stored", "history_length", len(history.History))
	return reply, nil
}

// outbound is the sequence sent to the endpoint: the exchange, led by the hint when
// one is set and sending is enabled. The stored exchange never contains the hint.
func (c *Controller) outbound(history chattypes.History) []chattypes.Message {
	if !c.sendHint || history.Hint.Content == "" {
		return history.History
	}

	hint := history.Hint
	if hint.Role == "" {
		hint.Role = chattypes.RoleSystem
	}

	messages := make([]chattypes.Message, 0, len(history.History)+1)
	messages = append(messages, hint)
	return append(messages, history.History...)
}
