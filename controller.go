package memorial

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Controller turns one submitted edict into a streamed reply. At most one
// send is in flight at a time, process-wide.
type Controller struct {
	store    *Store
	provider Provider
	titler   Titler

	model        string
	systemPrompt string
	now          func() time.Time
	newID        func() string
	logger       *slog.Logger

	inflight atomic.Bool
	titles   sync.WaitGroup
}

// ControllerOption configures a [Controller].
type ControllerOption func(*Controller)

// WithModel sets the model ID for provider requests. Empty string means the
// provider uses its default model.
func WithModel(model string) ControllerOption {
	return func(c *Controller) { c.model = model }
}

// WithSystemPrompt replaces the persona instruction sent with every request.
func WithSystemPrompt(prompt string) ControllerOption {
	return func(c *Controller) { c.systemPrompt = prompt }
}

// WithControllerLogger sets the logger. Default is slog.Default().
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// WithControllerClock sets the time source for message timestamps.
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithControllerIDFunc sets the message id generator.
func WithControllerIDFunc(newID func() string) ControllerOption {
	return func(c *Controller) { c.newID = newID }
}

// NewController creates a Controller. When titler is nil, titles are
// generated by streaming through provider.
func NewController(store *Store, provider Provider, titler Titler, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:        store,
		provider:     provider,
		titler:       titler,
		systemPrompt: SystemPrompt,
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.titler == nil {
		c.titler = &StreamTitler{Provider: provider, Model: c.model}
	}
	return c
}

// Busy reports whether a send is in flight.
func (c *Controller) Busy() bool {
	return c.inflight.Load()
}

// Wait blocks until every background title generation has finished.
func (c *Controller) Wait() {
	c.titles.Wait()
}

// Send appends input as an edict to the current session and streams the
// reply into a new model message, blocking until the reply is final.
//
// Send returns ErrEmptyInput, ErrBusy or ErrNoSession without touching any
// state when its preconditions fail. A failed reply is not an error: it is
// recorded in the session as FallbackReply and logged.
func (c *Controller) Send(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return ErrEmptyInput
	}
	if !c.inflight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.inflight.Store(false)

	session, ok := c.store.Current()
	if !ok {
		return ErrNoSession
	}

	edict := Message{ID: c.newID(), Role: RoleUser, Content: text, Timestamp: c.now()}
	history, ok := c.store.AppendMessage(session.ID, edict)
	if !ok {
		return ErrNoSession
	}
	if len(history) == 0 {
		c.generateTitle(ctx, session.ID, text)
	}

	c.reply(ctx, session.ID, history, text)
	return nil
}

// reply streams the answer to text into sessionID. history excludes text.
func (c *Controller) reply(ctx context.Context, sessionID string, history []Message, text string) {
	req := Request{
		Model:        c.model,
		SystemPrompt: c.systemPrompt,
		History:      Turns(history),
		Text:         text,
	}
	stream, err := c.provider.Stream(ctx, req)
	if err != nil {
		c.fail(sessionID, "", err)
		return
	}
	defer stream.Close()

	placeholder := Message{ID: c.newID(), Role: RoleModel, Timestamp: c.now(), Streaming: true}
	c.store.AppendMessage(sessionID, placeholder)

	// The placeholder is addressed by id alone: the session may have been
	// switched away from or deleted since, and folds into a deleted session
	// are no-ops.
	var content strings.Builder
	fragments := 0
	for {
		f, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.fail(sessionID, placeholder.ID, err)
			return
		}
		if f.Text == "" {
			continue
		}
		fragments++
		content.WriteString(f.Text)
		snapshot := content.String()
		c.store.UpdateStreaming(placeholder.ID, func(m *Message) { m.Content = snapshot })
	}
	c.store.UpdateStreaming(placeholder.ID, func(m *Message) { m.Streaming = false })

	c.logger.Debug("reply complete", "session", sessionID, "fragments", fragments, "bytes", content.Len())
}

// fail records a failed reply. A placeholder that was already appended is
// finalized with whatever it received so far.
func (c *Controller) fail(sessionID, placeholderID string, err error) {
	c.logger.Warn("reply failed", "session", sessionID, "error", err)
	if placeholderID != "" {
		c.store.UpdateStreaming(placeholderID, func(m *Message) { m.Streaming = false })
	}
	c.store.AppendMessage(sessionID, Message{
		ID:        c.newID(),
		Role:      RoleModel,
		Content:   FallbackReply,
		Timestamp: c.now(),
	})
}

// generateTitle names sessionID after its first edict in the background.
// It outlives the send that started it.
func (c *Controller) generateTitle(ctx context.Context, sessionID, text string) {
	ctx = context.WithoutCancel(ctx)
	c.titles.Add(1)
	go func() {
		defer c.titles.Done()
		title := c.titler.Title(ctx, text)
		if title == "" {
			return
		}
		if !c.store.SetTitle(sessionID, title) {
			c.logger.Debug("session gone before title arrived", "session", sessionID)
		}
	}()
}
