package mock

import (
	"io"

	"github.com/fwojciec/memorial"
)

// Interface compliance check.
var _ memorial.Stream = (*Stream)(nil)

// Stream is a test double for memorial.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe (no-op and zero value) because the code under test always closes
// its streams.
type Stream struct {
	NextFn  func() (memorial.Fragment, error)
	StateFn func() memorial.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (memorial.Fragment, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() memorial.StreamState {
	if s.StateFn == nil {
		return memorial.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Fragments returns a Stream that yields one fragment per text, then err.
// A nil err ends the stream with io.EOF. Not safe for concurrent use.
func Fragments(err error, texts ...string) *Stream {
	if err == nil {
		err = io.EOF
	}
	i := 0
	return &Stream{
		NextFn: func() (memorial.Fragment, error) {
			if i >= len(texts) {
				return memorial.Fragment{}, err
			}
			i++
			return memorial.Fragment{Text: texts[i-1]}, nil
		},
	}
}
