package memorial

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persister durably stores the whole session collection under a single key.
type Persister interface {
	// Load returns the stored sessions. ok is false when nothing is stored.
	Load(ctx context.Context) (sessions []Session, ok bool, err error)
	// Save overwrites the stored sessions unconditionally.
	Save(ctx context.Context, sessions []Session) error
}

// Store owns the session collection. It is the only writer to its Persister.
//
// Every mutation installs a new Collection value: slices reachable from a
// delivered or returned Collection are never modified afterwards, so callers
// may keep them, but must not modify them either.
type Store struct {
	persister Persister
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger

	mu      sync.Mutex // guards coll, subs and nextSub
	coll    Collection
	subs    []subscriber
	nextSub int

	// notifyMu is acquired before mu is released on every commit, so
	// subscribers observe collections in mutation order.
	notifyMu  sync.Mutex
	lastSaved []Session
}

type subscriber struct {
	id int
	fn func(Collection)
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithClock sets the time source used for timestamps. Default is time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDFunc sets the session id generator. Default is uuid.NewString.
func WithIDFunc(newID func() string) StoreOption {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty Store. When p is non-nil every change to the
// sessions is written through to it; a nil Persister keeps the store in
// memory only.
func NewStore(p Persister, opts ...StoreOption) *Store {
	s := &Store{
		persister: p,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if p != nil {
		s.Subscribe(s.persist)
	}
	return s
}

// Load adopts the persisted collection and selects its first session. When
// nothing is stored, or the stored collection is empty, a fresh session is
// created instead. A stored value that cannot be decoded is returned as an
// error.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		s.Create()
		return nil
	}
	sessions, ok, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	if !ok || len(sessions) == 0 {
		s.Create()
		return nil
	}

	// No reply can be in flight at startup; a message still marked as
	// streaming was interrupted and is final as it stands.
	for i := range sessions {
		for j := range sessions[i].Messages {
			if sessions[i].Messages[j].Streaming {
				sessions[i] = sessions[i].Clone()
				for k := range sessions[i].Messages {
					sessions[i].Messages[k].Streaming = false
				}
				break
			}
		}
	}

	s.mu.Lock()
	s.commitLocked(Collection{Sessions: sessions, CurrentID: sessions[0].ID}, nil)
	s.logger.Debug("sessions loaded", "count", len(sessions))
	return nil
}

// Snapshot returns the current collection.
func (s *Store) Snapshot() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll
}

// Current returns the current session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.Current()
}

// Subscribe registers fn to receive every new collection, in mutation order.
// fn runs synchronously on the mutating goroutine and must not mutate the
// Store. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Collection)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Create prepends a new empty session and makes it current.
func (s *Store) Create() Session {
	sess := Session{
		ID:           s.newID(),
		Title:        PlaceholderTitle,
		Messages:     []Message{},
		LastModified: s.now(),
	}

	s.mu.Lock()
	sessions := make([]Session, 0, len(s.coll.Sessions)+1)
	sessions = append(sessions, sess)
	sessions = append(sessions, s.coll.Sessions...)
	s.commitLocked(Collection{Sessions: sessions, CurrentID: sess.ID}, nil)

	s.logger.Debug("session created", "session", sess.ID)
	return sess
}

// Delete removes the session with the given id and writes the result to the
// Persister immediately. If the deleted session was current, the newest
// remaining session becomes current; if none remain, a new one is created.
// Unknown ids are ignored. The returned error reports a failed write; the
// session is removed from memory regardless.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := indexOfSession(s.coll.Sessions, id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	sessions := make([]Session, 0, len(s.coll.Sessions)-1)
	sessions = append(sessions, s.coll.Sessions[:i]...)
	sessions = append(sessions, s.coll.Sessions[i+1:]...)
	next := Collection{Sessions: sessions, CurrentID: s.coll.CurrentID}
	if next.CurrentID == id {
		next.CurrentID = ""
		if len(sessions) > 0 {
			next.CurrentID = sessions[0].ID
		}
	}

	var saveErr error
	s.commitLocked(next, func() {
		if s.persister == nil {
			return
		}
		if saveErr = s.persister.Save(ctx, sessions); saveErr == nil {
			s.lastSaved = sessions
		}
	})
	s.logger.Debug("session deleted", "session", id, "remaining", len(sessions))

	if len(sessions) == 0 {
		s.Create()
	}
	if saveErr != nil {
		s.logger.Warn("failed to save sessions after delete", "session", id, "error", saveErr)
		return fmt.Errorf("save sessions: %w", saveErr)
	}
	return nil
}

// Select makes the session with the given id current. It reports false, and
// changes nothing, when no such session exists.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	if indexOfSession(s.coll.Sessions, id) < 0 {
		s.mu.Unlock()
		return false
	}
	if s.coll.CurrentID == id {
		s.mu.Unlock()
		return true
	}
	s.commitLocked(Collection{Sessions: s.coll.Sessions, CurrentID: id}, nil)
	return true
}

// AppendMessage appends m to the session with the given id and bumps its
// LastModified. It returns the session's messages as they were before the
// append. ok is false, and nothing changes, when the session does not exist.
func (s *Store) AppendMessage(sessionID string, m Message) (before []Message, ok bool) {
	s.mu.Lock()
	i := indexOfSession(s.coll.Sessions, sessionID)
	if i < 0 {
		s.mu.Unlock()
		return nil, false
	}
	old := s.coll.Sessions[i]
	msgs := make([]Message, len(old.Messages), len(old.Messages)+1)
	copy(msgs, old.Messages)
	updated := old
	updated.Messages = append(msgs, m)
	updated.LastModified = s.now()
	s.commitLocked(Collection{
		Sessions:  replaceSession(s.coll.Sessions, i, updated),
		CurrentID: s.coll.CurrentID,
	}, nil)
	return old.Messages, true
}

// UpdateStreaming applies fn to the streaming message with the given id, in
// whichever session holds it. Messages that are no longer streaming are
// final and are not touched. It reports whether a message was updated.
func (s *Store) UpdateStreaming(messageID string, fn func(*Message)) bool {
	s.mu.Lock()
	for i, sess := range s.coll.Sessions {
		// The message being streamed is almost always the last one.
		for j := len(sess.Messages) - 1; j >= 0; j-- {
			if sess.Messages[j].ID != messageID {
				continue
			}
			if !sess.Messages[j].Streaming {
				s.mu.Unlock()
				return false
			}
			updated := sess.Clone()
			fn(&updated.Messages[j])
			s.commitLocked(Collection{
				Sessions:  replaceSession(s.coll.Sessions, i, updated),
				CurrentID: s.coll.CurrentID,
			}, nil)
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// SetTitle renames the session with the given id. It reports false when the
// session does not exist.
func (s *Store) SetTitle(sessionID, title string) bool {
	s.mu.Lock()
	i := indexOfSession(s.coll.Sessions, sessionID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	updated := s.coll.Sessions[i]
	updated.Title = title
	s.commitLocked(Collection{
		Sessions:  replaceSession(s.coll.Sessions, i, updated),
		CurrentID: s.coll.CurrentID,
	}, nil)
	return true
}

// commitLocked installs next and delivers it to subscribers. It must be
// called with s.mu held and returns with s.mu released. beforeDeliver, when
// non-nil, runs after the swap but before any subscriber sees next.
func (s *Store) commitLocked(next Collection, beforeDeliver func()) {
	s.coll = next
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if beforeDeliver != nil {
		beforeDeliver()
	}
	for _, sub := range subs {
		sub.fn(next)
	}
}

// persist is the write-through subscriber. It runs under notifyMu.
func (s *Store) persist(c Collection) {
	if len(c.Sessions) == 0 || sameSessions(c.Sessions, s.lastSaved) {
		return
	}
	if err := s.persister.Save(context.Background(), c.Sessions); err != nil {
		s.logger.Warn("failed to save sessions", "count", len(c.Sessions), "error", err)
		return
	}
	s.lastSaved = c.Sessions
}

func indexOfSession(sessions []Session, id string) int {
	if id == "" {
		return -1
	}
	for i, s := range sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func replaceSession(sessions []Session, i int, s Session) []Session {
	next := make([]Session, len(sessions))
	copy(next, sessions)
	next[i] = s
	return next
}

// sameSessions reports whether a and b are the same slice. Sessions are
// copy-on-write, so an unchanged backing array means unchanged sessions.
func sameSessions(a, b []Session) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
