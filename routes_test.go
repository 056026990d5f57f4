package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutingServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Env: EnvProduction, Logger: discardLogger()})
	require.NoError(t, err)
	return s
}

func taggedHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", tag)
		w.WriteHeader(http.StatusOK)
	}
}

func TestVerbRegistrations(t *testing.T) {
	s := newRoutingServer(t)

	s.Get("/r", taggedHandler("get"))
	s.Post("/r", taggedHandler("post"))
	s.Put("/r", taggedHandler("put"))
	s.Delete("/r", taggedHandler("delete"))
	s.Patch("/r", taggedHandler("patch"))
	s.Options("/r", taggedHandler("options"))
	s.Head("/r", taggedHandler("head"))
	s.Connect("/r", taggedHandler("connect"))
	s.Trace("/r", taggedHandler("trace"))

	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodOptions, http.MethodHead,
		http.MethodConnect, http.MethodTrace,
	}
	for _, method := range methods {
		rec := serveRequest(s, httptest.NewRequest(method, "/r", nil))
		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, strings.ToLower(method), rec.Header().Get("X-Handler"), method)
	}
}

func TestAllMatchesEveryMethod(t *testing.T) {
	s := newRoutingServer(t)
	s.All("/any", taggedHandler("all"))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch} {
		rec := serveRequest(s, httptest.NewRequest(method, "/any", nil))
		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "all", rec.Header().Get("X-Handler"), method)
	}
}

func TestHandleAndHandleFunc(t *testing.T) {
	s := newRoutingServer(t)
	s.Handle("/h", http.HandlerFunc(taggedHandler("handle")))
	s.HandleFunc("/hf", taggedHandler("handlefunc"))

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/h", nil))
	assert.Equal(t, "handle", rec.Header().Get("X-Handler"))

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, "/hf", nil))
	assert.Equal(t, "handlefunc", rec.Header().Get("X-Handler"))
}

func TestMountSubHandler(t *testing.T) {
	s := newRoutingServer(t)
	sub := chi.NewRouter()
	sub.Get("/child", taggedHandler("mounted"))
	s.Mount("/sub", sub)

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/sub/child", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mounted", rec.Header().Get("X-Handler"))
}

func TestRouteGroups(t *testing.T) {
	s := newRoutingServer(t)
	s.Route("/api", func(r chi.Router) {
		r.Get("/ping", taggedHandler("ping"))
	})

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ping", rec.Header().Get("X-Handler"))
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	s := newRoutingServer(t)
	s.Get("/only-get", taggedHandler("get"))
	s.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "custom not found", http.StatusNotFound)
	})
	s.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "custom method", http.StatusMethodNotAllowed)
	})

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "custom not found")

	rec = serveRequest(s, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "custom method")
}

func TestRouterExposesUnderlyingChi(t *testing.T) {
	s := newRoutingServer(t)
	require.NotNil(t, s.Router())
	s.Router().Get("/via-chi", taggedHandler("chi"))

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/via-chi", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chi", rec.Header().Get("X-Handler"))
}

func TestUserRouteOverridesBuiltin(t *testing.T) {
	s := newRoutingServer(t)
	s.Get("/healthz", taggedHandler("mine"))

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mine", rec.Header().Get("X-Handler"))
}
