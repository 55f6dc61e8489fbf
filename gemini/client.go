package gemini

import (
	"context"
	"fmt"
	"iter"

	"github.com/fwojciec/memorial"
	"google.golang.org/genai"
)

// Interface compliance checks.
var (
	_ memorial.Provider = (*Client)(nil)
	_ memorial.Titler   = (*Client)(nil)
)

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client implements [memorial.Provider] for the Google Gemini API.
type Client struct {
	models generator
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-3-flash-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
// An invalid key is not detected here; it surfaces from the first request.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return newClient(gc.Models, opts...), nil
}

func newClient(models generator, opts ...Option) *Client {
	c := &Client{
		models: models,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request to the Gemini API and returns a
// [memorial.Stream] of reply fragments.
func (c *Client) Stream(ctx context.Context, req memorial.Request) (memorial.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	contents := ConvertHistory(req.History, req.Text)
	seq := c.models.GenerateContentStream(ctx, model, contents, buildConfig(req))
	return startStream(ctx, seq)
}

// Title asks the model for a short archival title for text. Any failure
// yields memorial.DefaultTitle and an empty answer memorial.EmptyTitle.
func (c *Client) Title(ctx context.Context, text string) string {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(memorial.TitlePrompt(text)), nil)
	if err != nil || resp == nil {
		return memorial.DefaultTitle
	}
	if title := memorial.NormalizeTitle(resp.Text()); title != "" {
		return title
	}
	return memorial.EmptyTitle
}

func buildConfig(req memorial.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	return config
}

// ConvertHistory converts prior turns plus the new user text to genai
// Contents. Empty turns are dropped. Exported for testing.
func ConvertHistory(history []memorial.Turn, text string) []*genai.Content {
	result := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		if t.Text == "" {
			continue
		}
		var role string
		switch t.Role {
		case memorial.RoleUser:
			role = "user"
		case memorial.RoleModel:
			role = "model"
		default:
			continue
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	return append(result, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	})
}
