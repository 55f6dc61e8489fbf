package anthropic

import (
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/memorial"
)

// EventSource is the pull interface of the SDK's event stream, satisfied by
// *ssestream.Stream[anthropic.MessageStreamEventUnion].
type EventSource interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

type stream struct {
	src   EventSource
	state memorial.StreamState
	err   error

	// Result of a Next already called on src, replayed by advance.
	peeked  bool
	hasPeek bool
}

// Interface compliance check.
var _ memorial.Stream = (*stream)(nil)

// NewStreamFromEvents creates a [memorial.Stream] from an SDK event source.
// Exported for testing with synthetic events.
func NewStreamFromEvents(src EventSource) memorial.Stream {
	return &stream{src: src, state: memorial.StreamStateNew}
}

// StartStreamFromEvents reads the first event from src before returning, so a
// request the API rejected fails here instead of on the first Next.
func StartStreamFromEvents(src EventSource) (memorial.Stream, error) {
	s := &stream{src: src, state: memorial.StreamStateNew}
	s.peeked, s.hasPeek = src.Next(), true
	if !s.peeked {
		if err := src.Err(); err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("anthropic: %w", err)
		}
	}
	return s, nil
}

func (s *stream) advance() bool {
	if s.hasPeek {
		s.hasPeek = false
		return s.peeked
	}
	return s.src.Next()
}

func (s *stream) Next() (memorial.Fragment, error) {
	switch s.state {
	case memorial.StreamStateComplete:
		return memorial.Fragment{}, io.EOF
	case memorial.StreamStateError:
		return memorial.Fragment{}, s.err
	case memorial.StreamStateClosed:
		return memorial.Fragment{}, fmt.Errorf("anthropic: %w", memorial.ErrStreamClosed)
	}
	for s.advance() {
		s.state = memorial.StreamStateStreaming
		ev, ok := s.src.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if d, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && d.Text != "" {
			return memorial.Fragment{Text: d.Text}, nil
		}
	}
	if err := s.src.Err(); err != nil {
		s.state = memorial.StreamStateError
		s.err = fmt.Errorf("anthropic: %w", err)
		return memorial.Fragment{}, s.err
	}
	s.state = memorial.StreamStateComplete
	return memorial.Fragment{}, io.EOF
}

func (s *stream) State() memorial.StreamState {
	return s.state
}

func (s *stream) Close() error {
	if s.state != memorial.StreamStateComplete && s.state != memorial.StreamStateError {
		s.state = memorial.StreamStateClosed
	}
	return s.src.Close()
}
