// Package access decides what note content a requester may see and
// whether a requested note mutation is permitted. It is the single
// authority for the visibility state machine: every pairwise transition
// between public, private and protected is allowed, but each direction
// carries its own credential guard.
package access

import (
	"errors"
	"fmt"

	"github.com/catatan-app/catatan/internal/models"
	pkgauth "github.com/catatan-app/catatan/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// ReadResult is the outcome of evaluating a content-read request.
// When Locked is true the caller gets metadata only and should present
// a password challenge; content is withheld, not emptied.
type ReadResult struct {
	Note           *models.Note
	ContentVisible bool
	Locked         bool
}

// Changes describes a proposed note mutation. Nil pointer fields are
// "leave unchanged"; the password fields are plaintext credentials
// submitted alongside the change.
type Changes struct {
	Title           *string
	Content         *string
	Visibility      *string
	Password        string // new note password
	ConfirmPassword string
	OldPassword     string // current note password
	AccountPassword string // owner's account password
}

// Decision is the sanctioned post-state of a note's access-control
// fields after a permitted mutation.
type Decision struct {
	Visibility   string
	PasswordHash *string
}

// ReadNote evaluates whether requesterID (empty for anonymous) may see
// the note's content, optionally presenting a plaintext note password.
//
// Private notes are hidden from non-owners entirely: the caller gets
// ErrNotFound, never a Forbidden that would confirm existence.
func ReadNote(note *models.Note, requesterID, suppliedPassword string) (*ReadResult, error) {
	switch note.Visibility {
	case models.VisibilityPublic:
		return &ReadResult{Note: note, ContentVisible: true}, nil

	case models.VisibilityPrivate:
		if !note.IsOwnedBy(requesterID) {
			return nil, models.ErrNotFound
		}
		return &ReadResult{Note: note, ContentVisible: true}, nil

	case models.VisibilityProtected:
		// Owners bypass their own lock.
		if note.IsOwnedBy(requesterID) {
			return &ReadResult{Note: note, ContentVisible: true}, nil
		}

		if suppliedPassword == "" {
			return &ReadResult{Note: note, Locked: true}, nil
		}

		if err := verifyNotePassword(note, suppliedPassword); err != nil {
			return nil, err
		}
		return &ReadResult{Note: note, ContentVisible: true}, nil

	default:
		return nil, fmt.Errorf("unknown visibility %q: %w", note.Visibility, models.ErrInternalServer)
	}
}

// AuthorizeUpdate checks ownership and the per-transition credential
// guards for a proposed mutation, returning the resulting visibility
// and note-password hash. It never mutates the note itself.
//
// Guards, per direction:
//   - public|private → protected: new password (min length 4) plus
//     matching confirmation.
//   - protected → public|private: current note password must verify;
//     the hash is cleared.
//   - protected → protected with a password change: current note
//     password, the owner's account password, and the new password
//     (plus confirmation) must all independently check out.
//   - everything else: ownership only.
func AuthorizeUpdate(note *models.Note, requester *models.User, changes *Changes) (*Decision, error) {
	if requester == nil || !note.IsOwnedBy(requester.ID) {
		return nil, models.ErrForbidden
	}

	target := note.Visibility
	if changes.Visibility != nil {
		target = *changes.Visibility
	}
	if !models.ValidVisibility(target) {
		return nil, models.NewValidationError("visibility", "must be one of: public, private, protected")
	}

	// Leaving protected removes the lock; that requires proving
	// knowledge of the current note password first.
	if note.IsProtected() && target != models.VisibilityProtected {
		if changes.OldPassword == "" {
			return nil, models.NewValidationError(models.FieldOldPassword, "current note password is required to change visibility")
		}
		if err := verifyNotePasswordField(note, changes.OldPassword, models.FieldOldPassword); err != nil {
			return nil, err
		}
		return &Decision{Visibility: target, PasswordHash: nil}, nil
	}

	if target == models.VisibilityProtected {
		if changes.Password != "" {
			return decideNewNotePassword(note, requester, changes, target)
		}

		// Staying protected without touching the password needs no
		// extra credential; becoming protected does need one.
		if note.IsProtected() {
			return &Decision{Visibility: target, PasswordHash: note.PasswordHash}, nil
		}
		return nil, models.NewValidationError(models.FieldPassword, "a password is required for protected notes")
	}

	return &Decision{Visibility: target, PasswordHash: nil}, nil
}

// decideNewNotePassword guards setting or replacing a note password.
// Replacing a secret in place is held to a stronger bar than removing
// it: the old note password and the account password must both verify.
func decideNewNotePassword(note *models.Note, requester *models.User, changes *Changes, target string) (*Decision, error) {
	if len(changes.Password) < pkgauth.MinNotePasswordLen {
		return nil, models.NewValidationError(models.FieldPassword,
			fmt.Sprintf("note password must be at least %d characters", pkgauth.MinNotePasswordLen))
	}
	if changes.Password != changes.ConfirmPassword {
		return nil, models.NewValidationError(models.FieldConfirmPassword, "password confirmation does not match")
	}

	if note.IsProtected() && note.PasswordHash != nil {
		if changes.OldPassword == "" {
			return nil, models.NewValidationError(models.FieldOldPassword, "current note password is required")
		}
		if err := verifyNotePasswordField(note, changes.OldPassword, models.FieldOldPassword); err != nil {
			return nil, err
		}

		if changes.AccountPassword == "" {
			return nil, models.NewValidationError(models.FieldAccountPassword, "account password is required")
		}
		if err := pkgauth.ComparePassword(requester.PasswordHash, changes.AccountPassword); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return nil, models.NewCredentialError(models.FieldAccountPassword)
			}
			return nil, fmt.Errorf("failed to verify account password: %w", err)
		}
	}

	hash, err := pkgauth.HashPassword(changes.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash note password: %w", err)
	}

	return &Decision{Visibility: target, PasswordHash: &hash}, nil
}

func verifyNotePassword(note *models.Note, password string) error {
	return verifyNotePasswordField(note, password, models.FieldPassword)
}

func verifyNotePasswordField(note *models.Note, password, field string) error {
	if note.PasswordHash == nil {
		// Invariant breach: protected note without a hash.
		return fmt.Errorf("protected note %s has no password hash: %w", note.ID, models.ErrInternalServer)
	}

	if err := pkgauth.ComparePassword(*note.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.NewCredentialError(field)
		}
		return fmt.Errorf("failed to verify note password: %w", err)
	}

	return nil
}
