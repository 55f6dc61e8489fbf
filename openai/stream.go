package openai

import (
	"fmt"
	"io"

	"github.com/fwojciec/memorial"
	"github.com/openai/openai-go"
)

// ChunkSource is the pull interface of the SDK's chunk stream, satisfied by
// *ssestream.Stream[openai.ChatCompletionChunk].
type ChunkSource interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

type stream struct {
	src   ChunkSource
	state memorial.StreamState
	err   error

	// Result of a Next already called on src, replayed by advance.
	peeked  bool
	hasPeek bool
}

// Interface compliance check.
var _ memorial.Stream = (*stream)(nil)

// NewStreamFromChunks creates a [memorial.Stream] from an SDK chunk source.
// Exported for testing with synthetic chunks.
func NewStreamFromChunks(src ChunkSource) memorial.Stream {
	return &stream{src: src, state: memorial.StreamStateNew}
}

// StartStreamFromChunks reads the first chunk from src before returning, so a
// request the API rejected fails here instead of on the first Next.
func StartStreamFromChunks(src ChunkSource) (memorial.Stream, error) {
	s := &stream{src: src, state: memorial.StreamStateNew}
	s.peeked, s.hasPeek = src.Next(), true
	if !s.peeked {
		if err := src.Err(); err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("openai: %w", err)
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
		return memorial.Fragment{}, fmt.Errorf("openai: %w", memorial.ErrStreamClosed)
	}
	for s.advance() {
		s.state = memorial.StreamStateStreaming
		// The final chunk may carry only usage.
		chunk := s.src.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			return memorial.Fragment{Text: text}, nil
		}
	}
	if err := s.src.Err(); err != nil {
		s.state = memorial.StreamStateError
		s.err = fmt.Errorf("openai: %w", err)
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
