package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	assert.Equal(t, "b***@*******.com", SanitizedEmail("budi@example.com"))
	assert.Equal(t, "[invalid-email]", SanitizedEmail("not-an-email"))
}

func TestSensitiveQueryString(t *testing.T) {
	assert.True(t, SensitiveQueryString("password=hunter22"))
	assert.True(t, SensitiveQueryString("reset_token=abc123"))
	assert.True(t, SensitiveQueryString("ANSWER=blue"))
	assert.False(t, SensitiveQueryString("search=recipes&limit=20"))
	assert.False(t, SensitiveQueryString(""))
}
