package models

import (
	"time"
)

// Reset session stages. A session only ever advances forward:
// awaiting_answer → verified → destroyed.
const (
	ResetStageAwaitingAnswer = "awaiting_answer"
	ResetStageVerified       = "verified"
)

// ResetSession tracks one email's progress through the three-step
// recovery protocol. TokenHash is set exactly when the stage reaches
// verified; consuming the token destroys the session.
type ResetSession struct {
	ID        string
	UserID    string
	Email     string
	Stage     string
	TokenHash *string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has passed its bounded lifetime.
func (s *ResetSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAwaitingAnswer checks if the session can accept a security answer.
func (s *ResetSession) IsAwaitingAnswer() bool {
	return s.Stage == ResetStageAwaitingAnswer && !s.IsExpired()
}

// IsVerified checks if the session holds a live, unconsumed reset token.
func (s *ResetSession) IsVerified() bool {
	return s.Stage == ResetStageVerified && s.TokenHash != nil && !s.IsExpired()
}
