package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/memorial"
)

// Interface compliance check.
var _ memorial.Provider = (*Client)(nil)

// Client implements [memorial.Provider] for the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	reqOpts   []option.RequestOption
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is claude-sonnet-4-20250514.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the client at a different API endpoint. An empty url
// keeps the default.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
		}
	}
}

// WithMaxTokens sets the reply token limit. Default is 8192.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// New creates a new Anthropic [Client]. An invalid key surfaces from the
// first request.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	c.client = anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, c.reqOpts...)...)
	return c
}

// Stream sends a streaming request to the Messages API.
func (c *Client) Stream(ctx context.Context, req memorial.Request) (memorial.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return StartStreamFromEvents(c.client.Messages.NewStreaming(ctx, c.params(req)))
}

func (c *Client) params(req memorial.Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  ConvertHistory(req.History, req.Text),
		MaxTokens: c.maxTokens,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	return params
}

// ConvertHistory converts prior turns plus the new user text to Messages API
// params. Empty turns are dropped and consecutive turns of the same role are
// merged into one message, since the API rejects empty text blocks.
// Exported for testing.
func ConvertHistory(history []memorial.Turn, text string) []anthropic.MessageParam {
	var (
		result []anthropic.MessageParam
		role   memorial.Role
		blocks []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(blocks) == 0 {
			return
		}
		switch role {
		case memorial.RoleUser:
			result = append(result, anthropic.NewUserMessage(blocks...))
		case memorial.RoleModel:
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		}
		blocks = nil
	}

	turns := append(history[:len(history):len(history)], memorial.Turn{Role: memorial.RoleUser, Text: text})
	for _, t := range turns {
		if t.Text == "" || !t.Role.Valid() {
			continue
		}
		if t.Role != role {
			flush()
			role = t.Role
		}
		blocks = append(blocks, anthropic.NewTextBlock(t.Text))
	}
	flush()
	return result
}
