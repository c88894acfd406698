// internal/handlers/utils_test.go
package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc123", extractCookieToken("auth_token=abc123", "auth_token"))
	assert.Equal(t, "abc123", extractCookieToken("other=x; auth_token=abc123; last=y", "auth_token"))
	assert.Equal(t, "", extractCookieToken("other=x", "auth_token"))
	assert.Equal(t, "", extractCookieToken("", "auth_token"))

	// A cookie whose name merely ends in the wanted name must not shadow it.
	assert.Equal(t, "good", extractCookieToken("xauth_token=evil; auth_token=good", "auth_token"))
	assert.Equal(t, "", extractCookieToken("xauth_token=evil", "auth_token"))
}
