package memorial

import "time"

// Session is one independently addressable conversation.
type Session struct {
	ID           string
	Title        string
	Messages     []Message
	LastModified time.Time
}

// Clone returns a copy of s that does not share its message slice.
func (s Session) Clone() Session {
	if s.Messages != nil {
		msgs := make([]Message, len(s.Messages))
		copy(msgs, s.Messages)
		s.Messages = msgs
	}
	return s
}

// Turns maps the session's messages to prompt history.
func (s Session) Turns() []Turn {
	return Turns(s.Messages)
}

// Collection is an immutable view of every session, newest created first,
// together with the id of the current session.
type Collection struct {
	Sessions  []Session
	CurrentID string
}

// Current returns the current session, if any.
func (c Collection) Current() (Session, bool) {
	return c.Find(c.CurrentID)
}

// Find returns the session with the given id.
func (c Collection) Find(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	for _, s := range c.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}
