package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ajayos/Server/internal/auth/token"
	"github.com/Ajayos/Server/internal/support/hash"
)

func TestBasicAuth(t *testing.T) {
	hasher := hash.MustBcryptHasher(bcrypt.MinCost)
	stored, err := hasher.Hash("hunter2")
	require.NoError(t, err)

	handler := BasicAuth(BasicAuthConfig{
		Users:  map[string]string{"admin": stored},
		Hasher: hasher,
	})(okHandler())

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "hunter2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic realm=")
	})

	t.Run("unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("ghost", "hunter2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestStaticBearer(t *testing.T) {
	handler := StaticBearer("metrics-secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer metrics-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthJWT(t *testing.T) {
	manager := token.MustManager(token.Options{SigningKey: []byte("guard-key"), Issuer: "server"})
	handler := BearerAuth(BearerAuthConfig{Manager: manager, Scope: "vitals:read"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := TokenClaims(r)
			require.True(t, ok)
			assert.Equal(t, "ops", claims.Subject)
			w.WriteHeader(http.StatusOK)
		}))

	signed, _, err := manager.Issue("ops", "vitals:read", time.Minute)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/vitals", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong scope", func(t *testing.T) {
		other, _, err := manager.Issue("ops", "metrics:read", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/debug/vitals", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("scope inside list", func(t *testing.T) {
		listed, _, err := manager.Issue("ops", "metrics:read vitals:read", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/debug/vitals", nil)
		req.Header.Set("Authorization", "Bearer "+listed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/vitals", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/vitals", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
