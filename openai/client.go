package openai

import (
	"context"
	"fmt"

	"github.com/fwojciec/memorial"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Interface compliance check.
var _ memorial.Provider = (*Client)(nil)

// Client implements [memorial.Provider] for chat completion endpoints.
type Client struct {
	client  openai.Client
	model   string
	reqOpts []option.RequestOption
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gpt-4o-mini.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the client at any OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
		}
	}
}

// New creates a new [Client]. An invalid key surfaces from the first request.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	c.client = openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, c.reqOpts...)...)
	return c
}

// Stream sends a streaming chat completion request.
func (c *Client) Stream(ctx context.Context, req memorial.Request) (memorial.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: ConvertHistory(req.SystemPrompt, req.History, req.Text),
	}
	return StartStreamFromChunks(c.client.Chat.Completions.NewStreaming(ctx, params))
}

// ConvertHistory builds the chat message list: the system prompt, if any,
// then prior turns and the new user text. Empty turns are dropped.
// Exported for testing.
func ConvertHistory(systemPrompt string, history []memorial.Turn, text string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(systemPrompt))
	}
	for _, t := range history {
		if t.Text == "" {
			continue
		}
		switch t.Role {
		case memorial.RoleUser:
			msgs = append(msgs, openai.UserMessage(t.Text))
		case memorial.RoleModel:
			assistant := openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(t.Text)},
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return append(msgs, openai.UserMessage(text))
}
