package memorial

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving fragments.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// String returns a lowercase name for the state, used in logs.
func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Fragment is an incremental piece of reply text. Text may be empty.
type Fragment struct {
	Text string
}

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next returns io.EOF once the reply is exhausted. Any other error is a
// transport failure; after it, Next keeps returning the same error. A stream
// is finite and cannot be restarted. Close releases the underlying
// connection and is safe to call in any state.
type Stream interface {
	Next() (Fragment, error)
	State() StreamState
	Close() error
}
