package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/memorial"
	"google.golang.org/genai"
)

// stream implements [memorial.Stream] by wrapping the genai SDK's streaming
// iterator.
type stream struct {
	ctx   context.Context
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	state memorial.StreamState
	err   error

	// First pull made by startStream, replayed by the first Next.
	first    *genai.GenerateContentResponse
	firstOK  bool
	hasFirst bool
}

// Interface compliance check.
var _ memorial.Stream = (*stream)(nil)

// NewStreamFromIter creates a [memorial.Stream] from a genai streaming
// iterator. Exported for testing with synthetic chunks.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) memorial.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: memorial.StreamStateNew,
	}
}

// startStream pulls the first response before returning. The SDK sends the
// request lazily, so without this a rejected key or exhausted quota would only
// appear on the first Next.
func startStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) (memorial.Stream, error) {
	s := NewStreamFromIter(ctx, seq).(*stream)
	resp, err, ok := s.pull()
	if err != nil {
		s.stop()
		return nil, fmt.Errorf("gemini: %w", err)
	}
	s.first, s.firstOK, s.hasFirst = resp, ok, true
	return s, nil
}

func (s *stream) advance() (*genai.GenerateContentResponse, error, bool) {
	if s.hasFirst {
		s.hasFirst = false
		return s.first, nil, s.firstOK
	}
	return s.pull()
}

// Next returns the reply text of the next chunk that carries any. Thought
// parts and chunks without text are skipped.
func (s *stream) Next() (memorial.Fragment, error) {
	switch s.state {
	case memorial.StreamStateComplete:
		return memorial.Fragment{}, io.EOF
	case memorial.StreamStateError:
		return memorial.Fragment{}, s.err
	case memorial.StreamStateClosed:
		return memorial.Fragment{}, fmt.Errorf("gemini: %w", memorial.ErrStreamClosed)
	}
	for {
		if err := s.ctx.Err(); err != nil {
			return memorial.Fragment{}, s.fail(err)
		}
		resp, err, ok := s.advance()
		if !ok {
			s.state = memorial.StreamStateComplete
			return memorial.Fragment{}, io.EOF
		}
		if err != nil {
			return memorial.Fragment{}, s.fail(err)
		}
		s.state = memorial.StreamStateStreaming
		if resp == nil {
			continue
		}
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return memorial.Fragment{}, s.fail(fmt.Errorf("prompt blocked: %s", fb.BlockReason))
		}
		if text := chunkText(resp); text != "" {
			return memorial.Fragment{Text: text}, nil
		}
	}
}

func (s *stream) fail(err error) error {
	s.state = memorial.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	return s.err
}

// chunkText concatenates the non-thought text parts of the first candidate.
func chunkText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func (s *stream) State() memorial.StreamState {
	return s.state
}

func (s *stream) Close() error {
	if s.state != memorial.StreamStateComplete && s.state != memorial.StreamStateError {
		s.state = memorial.StreamStateClosed
	}
	s.stop()
	return nil
}
