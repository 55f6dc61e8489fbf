package memorial

import "time"

// Message is a single turn in a session.
//
// Content only changes while Streaming is true, and only on the most recent
// model message of a session. Once Streaming is cleared the message is final.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	Streaming bool
}
