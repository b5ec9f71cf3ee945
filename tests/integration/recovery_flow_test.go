package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryFlow_EndToEnd(t *testing.T) {
	resetState(t)

	testServer.RegisterAndLogin(t, "wulan", "wulan@example.com", "oldpassword1",
		"What is your favorite color?", "Blue")

	// Step 1: initiate returns the stored question
	resp, body := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "wulan@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "What is your favorite color?", body["security_question"])

	// Step 2: the answer check ignores case and surrounding whitespace
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/recover/verify", "", map[string]string{
		"email":  "wulan@example.com",
		"answer": "  blue ",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["reset_token"].(string)
	require.NotEmpty(t, token)

	// Step 3: reset with the one-time token
	resp, _ = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      token,
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works
	resp, _ = testServer.DoJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "wulan@example.com",
		"password": "oldpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// New password does
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "wulan@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	// The token was consumed, replaying it fails
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      token,
		"password":         "another-pass1",
		"confirm_password": "another-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_or_expired_token", body["error"])

	// Password changed notification went out
	sent := testServer.Email.LastEmail()
	require.NotNil(t, sent)
	assert.Equal(t, "wulan@example.com", sent.To)
}

func TestRecoveryFlow_UnknownEmail(t *testing.T) {
	resetState(t)

	resp, _ := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoveryFlow_NoSecurityQuestion(t *testing.T) {
	resetState(t)

	testServer.RegisterAndLogin(t, "plainuser", "plain@example.com", "password1", "", "")

	resp, _ := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "plain@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoveryFlow_WrongAnswer(t *testing.T) {
	resetState(t)

	testServer.RegisterAndLogin(t, "wulan", "wulan@example.com", "oldpassword1",
		"What is your favorite color?", "Blue")

	resp, _ := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "wulan@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := testServer.DoJSON(t, http.MethodPost, "/auth/recover/verify", "", map[string]string{
		"email":  "wulan@example.com",
		"answer": "green",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "answer", body["error_type"])

	// A wrong answer never mints a token, the right one still can
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/recover/verify", "", map[string]string{
		"email":  "wulan@example.com",
		"answer": "blue",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["reset_token"])
}

func TestRecoveryFlow_RejectedPasswordLeavesTokenUsable(t *testing.T) {
	resetState(t)

	testServer.RegisterAndLogin(t, "wulan", "wulan@example.com", "oldpassword1",
		"What is your favorite color?", "Blue")

	resp, _ := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "wulan@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := testServer.DoJSON(t, http.MethodPost, "/auth/recover/verify", "", map[string]string{
		"email":  "wulan@example.com",
		"answer": "Blue",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["reset_token"].(string)
	require.NotEmpty(t, token)

	// Confirmation mismatch is rejected before the token is consumed
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      token,
		"password":         "hunter22",
		"confirm_password": "hunter23",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "confirm_password", body["error_type"])

	// Same for a too short password
	resp, body = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      token,
		"password":         "abc",
		"confirm_password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password", body["error_type"])

	// The token survives both rejections
	resp, _ = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      token,
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecoveryFlow_RestartInvalidatesPreviousSession(t *testing.T) {
	resetState(t)

	testServer.RegisterAndLogin(t, "wulan", "wulan@example.com", "oldpassword1",
		"What is your favorite color?", "Blue")

	resp, _ := testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "wulan@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := testServer.DoJSON(t, http.MethodPost, "/auth/recover/verify", "", map[string]string{
		"email":  "wulan@example.com",
		"answer": "Blue",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	firstToken, _ := body["reset_token"].(string)
	require.NotEmpty(t, firstToken)

	// Starting over discards the verified session and its token
	resp, _ = testServer.DoJSON(t, http.MethodPost, "/auth/recover", "", map[string]string{
		"email": "wulan@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = testServer.DoJSON(t, http.MethodPost, "/auth/recover/reset", "", map[string]string{
		"reset_token":      firstToken,
		"password":         "hunter22",
		"confirm_password": "hunter22",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
