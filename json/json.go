// Package json implements the persisted wire format of the session
// collection and a file-backed memorial.Persister.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/memorial"
)

// sessionDTO is the wire format of one session. The collection is stored as
// a bare array of these, without a version field. Times are Unix epoch
// milliseconds.
type sessionDTO struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Messages     []messageDTO `json:"messages"`
	LastModified int64        `json:"lastModified"`
}

type messageDTO struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
	IsStreaming bool   `json:"isStreaming,omitempty"`
}

// toMillis encodes t, truncated to the millisecond. The zero time is 0.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// MarshalSessions serializes the session collection, newest first as given.
func MarshalSessions(sessions []memorial.Session) ([]byte, error) {
	dtos := make([]sessionDTO, len(sessions))
	for i, s := range sessions {
		msgs := make([]messageDTO, len(s.Messages))
		for j, m := range s.Messages {
			if !m.Role.Valid() {
				return nil, fmt.Errorf("session %d message %d: unknown role %q: %w", i, j, m.Role, memorial.ErrValidation)
			}
			msgs[j] = messageDTO{
				ID:          m.ID,
				Role:        string(m.Role),
				Content:     m.Content,
				Timestamp:   toMillis(m.Timestamp),
				IsStreaming: m.Streaming,
			}
		}
		dtos[i] = sessionDTO{
			ID:           s.ID,
			Title:        s.Title,
			Messages:     msgs,
			LastModified: toMillis(s.LastModified),
		}
	}
	return json.Marshal(dtos)
}

// UnmarshalSessions deserializes a session collection. Unknown roles are
// rejected with memorial.ErrValidation.
func UnmarshalSessions(data []byte) ([]memorial.Session, error) {
	var dtos []sessionDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	sessions := make([]memorial.Session, len(dtos))
	for i, dto := range dtos {
		msgs := make([]memorial.Message, len(dto.Messages))
		for j, m := range dto.Messages {
			role := memorial.Role(m.Role)
			if !role.Valid() {
				return nil, fmt.Errorf("session %d message %d: unknown role %q: %w", i, j, m.Role, memorial.ErrValidation)
			}
			msgs[j] = memorial.Message{
				ID:        m.ID,
				Role:      role,
				Content:   m.Content,
				Timestamp: fromMillis(m.Timestamp),
				Streaming: m.IsStreaming,
			}
		}
		sessions[i] = memorial.Session{
			ID:           dto.ID,
			Title:        dto.Title,
			Messages:     msgs,
			LastModified: fromMillis(dto.LastModified),
		}
	}
	return sessions, nil
}
