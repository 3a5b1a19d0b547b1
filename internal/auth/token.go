package auth

import (
	"net/http"
	"strings"
)

const (
	// CustomerCookie carries the customer access token.
	CustomerCookie = "access_token"
	// AdminCookie carries the admin session token.
	AdminCookie = "admin_session"
)

// ExtractAccessToken returns the customer token from the cookie, falling back
// to a bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	return extract(r, CustomerCookie)
}

// ExtractAdminToken is ExtractAccessToken for the admin session cookie.
func ExtractAdminToken(r *http.Request) string {
	return extract(r, AdminCookie)
}

func extract(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
