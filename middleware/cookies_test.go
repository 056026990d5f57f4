package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieEchoHandler(t *testing.T, name string, wantValue string, wantFound bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found := CookieValue(r, name)
		assert.Equal(t, wantFound, found)
		if wantFound {
			assert.Equal(t, wantValue, got)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCookiesPlainValue(t *testing.T) {
	handler := Cookies(CookiesConfig{})(cookieEchoHandler(t, "session", "abc123", true))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc123"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCookiesSignedRoundTrip(t *testing.T) {
	const secret = "cookie-secret"
	signed := SignCookie("user-42", secret)
	require.NotEqual(t, "user-42", signed)

	handler := Cookies(CookiesConfig{Secret: secret})(cookieEchoHandler(t, "uid", "user-42", true))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "uid", Value: signed})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCookiesTamperedSignatureDropped(t *testing.T) {
	signed := SignCookie("user-42", "right-secret")

	handler := Cookies(CookiesConfig{Secret: "other-secret"})(cookieEchoHandler(t, "uid", "", false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "uid", Value: signed})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCookiesSignedValueWithDots(t *testing.T) {
	const secret = "s"
	signed := SignCookie("a.b.c", secret)

	value, ok := VerifyCookie(signed, secret)
	require.True(t, ok)
	assert.Equal(t, "a.b.c", value)
}

func TestVerifyCookieRejectsGarbage(t *testing.T) {
	_, ok := VerifyCookie("plain-value", "secret")
	assert.False(t, ok)

	_, ok = VerifyCookie("s:no-signature", "secret")
	assert.False(t, ok)
}

func TestCookieValueWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "raw", Value: "v"})

	got, ok := CookieValue(req, "raw")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = CookieValue(req, "missing")
	assert.False(t, ok)
}
