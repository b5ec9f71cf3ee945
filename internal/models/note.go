package models

import (
	"time"
)

// Note visibility levels
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
)

// ValidVisibility reports whether v is one of the three known levels.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityProtected:
		return true
	}
	return false
}

// Note is always stored with its full content; redaction of protected
// and private notes happens at read time, never in storage.
//
// Invariant: PasswordHash != nil ⇔ Visibility == protected.
type Note struct {
	ID           string
	UserID       string
	Title        string
	Content      string
	Visibility   string
	PasswordHash *string
	Version      int64 // optimistic concurrency token
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsProtected reports whether content access requires a note password.
func (n *Note) IsProtected() bool {
	return n.Visibility == VisibilityProtected
}

// IsOwnedBy reports whether userID is the exclusive owner of the note.
func (n *Note) IsOwnedBy(userID string) bool {
	return userID != "" && n.UserID == userID
}
