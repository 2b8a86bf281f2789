package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeWithSession(capture *string) http.Handler {
	r := chi.NewRouter()
	r.Route("/dinners/{shareCode}", func(r chi.Router) {
		r.Use(Session)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			if token, ok := GetSessionToken(req.Context()); ok {
				*capture = token
			}
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestSessionFromHeader(t *testing.T) {
	var captured string
	srv := httptest.NewServer(routeWithSession(&captured))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/dinners/abc12345/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-Token", "header-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "header-token", captured)
}

func TestSessionFromCookie(t *testing.T) {
	var captured string
	srv := httptest.NewServer(routeWithSession(&captured))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/dinners/abc12345/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: CookieName("abc12345"), Value: "cookie-token"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "cookie-token", captured)
}

func TestSessionCookieScopedToShareCode(t *testing.T) {
	var captured string
	srv := httptest.NewServer(routeWithSession(&captured))
	defer srv.Close()

	// A cookie for a different dinner must not leak into this one.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/dinners/abc12345/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: CookieName("other999"), Value: "other-token"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, captured)
}

func TestSessionHeaderWinsOverCookie(t *testing.T) {
	var captured string
	srv := httptest.NewServer(routeWithSession(&captured))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/dinners/abc12345/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-Token", "header-token")
	req.AddCookie(&http.Cookie{Name: CookieName("abc12345"), Value: "cookie-token"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "header-token", captured)
}

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc12345", "tok")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "potluck_session_abc12345", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, "/", cookies[0].Path)
}
