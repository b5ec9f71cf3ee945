package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12

	MinPasswordLen     = 6   // account passwords
	MinNotePasswordLen = 4   // per-note passwords
	MaxPasswordLen     = 128

	ResetTokenBytes = 32 // 256 bits of entropy
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword verifies a plaintext password against a bcrypt hash.
// bcrypt's comparison is constant-time over the derived hash.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// NormalizeAnswer canonicalizes a security answer so that case and
// surrounding whitespace never matter. Both sides of a comparison must
// go through this before hashing.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// HashSecurityAnswer hashes a normalized security answer with bcrypt.
func HashSecurityAnswer(answer string) (string, error) {
	normalized := NormalizeAnswer(answer)
	if normalized == "" {
		return "", fmt.Errorf("security answer cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(normalized), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash security answer: %w", err)
	}
	return string(hashedBytes), nil
}

// CompareSecurityAnswer verifies a submitted answer against a stored
// answer hash, normalizing the submission first.
func CompareSecurityAnswer(hashedAnswer, answer string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedAnswer), []byte(NormalizeAnswer(answer)))
}

// GenerateResetToken mints an opaque single-use token. The plaintext is
// returned to the caller once; only the SHA-256 hash is stored.
func GenerateResetToken() (plainToken, tokenHash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	plainToken = base64.URLEncoding.EncodeToString(tokenBytes)
	return plainToken, HashResetToken(plainToken), nil
}

// HashResetToken derives the storage form of a reset token.
func HashResetToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}
