// internal/handlers/utils.go
package handlers

import "strings"

// extractCookieToken pulls a named cookie value out of a raw Cookie
// header, or returns empty if not present. The name must match a whole
// cookie: a "xauth_token" cookie never answers for "auth_token".
func extractCookieToken(cookieHeader, cookieName string) string {
	for _, pair := range strings.Split(cookieHeader, ";") {
		pair = strings.TrimSpace(pair)
		if value, ok := strings.CutPrefix(pair, cookieName+"="); ok {
			return value
		}
	}
	return ""
}
