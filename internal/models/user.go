package models

import (
	"time"
)

type User struct {
	ID                 string
	Username           string
	Email              string
	PasswordHash       string
	Avatar             *string
	SecurityQuestion   *string // NULL until the user configures recovery
	SecurityAnswerHash *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasSecurityQuestion reports whether the account can go through
// security-question recovery.
func (u *User) HasSecurityQuestion() bool {
	return u.SecurityQuestion != nil && *u.SecurityQuestion != "" &&
		u.SecurityAnswerHash != nil && *u.SecurityAnswerHash != ""
}
