// Package chattypes defines the conversation, configuration and wire types for chat.
// These are the values persisted under the storage directory and exchanged with the
// chat-completion endpoint.
package chattypes

// Role identifies the author of a message.
type Role string

const (
	// RoleSystem is used for the persisted hint.
	RoleSystem Role = "system"
	// RoleUser is used for prompts typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is used for replies returned by the remote model.
	RoleAssistant Role = "assistant"
)

// Default endpoint and model written to config.json on first run.
const (
	DefaultURL   = "https://api.openai.com/v1/chat/completions"
	DefaultModel = "gpt-3.5-turbo"
)

// Message is a single conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsZero reports whether the message carries neither a role nor content.
func (m Message) IsZero() bool {
	return m.Role == "" && m.Content == ""
}

// NewMessage builds a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// History is the persisted conversation: an optional system hint and the ordered exchange.
type History struct {
	Hint    Message   `json:"hint"`
	History []Message `json:"history"`
}

// DefaultHistory returns the empty history written on first run and by clean.
func DefaultHistory() History {
	return History{History: []Message{}}
}

// Config is the persisted endpoint configuration. The program only ever writes its default.
type Config struct {
	URL   string `json:"url"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		URL:   DefaultURL,
		Model: DefaultModel,
		Key:   "",
	}
}

// Request is the outbound chat-completion body.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Choice is one candidate reply in a Response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token accounting for a Response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError is the error object some endpoints return in place of choices.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Response is the inbound chat-completion body. Only Choices[0].Message is consumed.
type Response struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}
