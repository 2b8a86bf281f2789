package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// SessionTokenKey is the context key for the caller's session token
	SessionTokenKey ContextKey = "session_token"

	// cookiePrefix namespaces one session cookie per share code so a single
	// device can track multiple dinners independently.
	cookiePrefix = "potluck_session_"

	// cookieMaxAge keeps the capability token around for a year. The token
	// never expires server-side.
	cookieMaxAge = 365 * 24 * 60 * 60
)

// CookieName returns the session cookie name for a share code.
func CookieName(shareCode string) string {
	return cookiePrefix + shareCode
}

// SetSessionCookie persists the session token on the client under the
// dinner's share code.
func SetSessionCookie(w http.ResponseWriter, shareCode, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(shareCode),
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session extracts the caller's session token into the request context.
// The token may arrive as an X-Session-Token header (API clients) or as the
// per-share-code cookie (browsers). Possession of the token is the only
// authentication mechanism; requests without one proceed as anonymous viewers.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Session-Token")
		if token == "" {
			if shareCode := chi.URLParam(r, "shareCode"); shareCode != "" {
				if c, err := r.Cookie(CookieName(shareCode)); err == nil {
					token = c.Value
				}
			}
		}

		if token != "" {
			ctx := context.WithValue(r.Context(), SessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetSessionToken extracts the session token from the request context
func GetSessionToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(SessionTokenKey).(string)
	return token, ok
}
