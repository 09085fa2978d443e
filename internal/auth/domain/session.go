package domain

import "time"

// Session is the store-backed state behind one browser session. A request's
// session context is materialized from this record at pipeline entry and
// persisted back at pipeline exit; handlers never touch the store directly.
type Session struct {
	ID        string // ULID; regenerated on a fixed interval and on login
	UserID    *int64
	Data      map[string]string
	CreatedAt time.Time
	RotatedAt time.Time // last id regeneration
	ExpiresAt time.Time
}

// Expired reports whether the session's lifetime has passed at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// NeedsRotation reports whether the session id should be regenerated, which
// bounds the window of a fixation attack.
func (s Session) NeedsRotation(now time.Time, interval time.Duration) bool {
	return now.Sub(s.RotatedAt) > interval
}
