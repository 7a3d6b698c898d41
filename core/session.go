package core

import "time"

// SessionRecord represents a durable opaque-token session.
// An account may hold many records at once (one per device).
type SessionRecord struct {
	Token     string    // Opaque high-entropy token, unique
	Email     string    // Owning account identity
	CreatedAt time.Time // When the session was created
	ExpiresAt time.Time // Always CreatedAt + the configured session validity
}

// ExpiredAt reports whether the record is past its validity at the given time.
func (r *SessionRecord) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
