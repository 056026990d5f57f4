// 文件路径: routes.go
// 模块说明: 路由注册直通层，所有调用原样转发给底层 chi 路由器。
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Get registers a GET handler. Like every registration method here it
// forwards verbatim to chi; the facade adds no handler contract of its
// own. Register routes before Start; the router is serving afterwards.
func (s *Server) Get(pattern string, handler http.HandlerFunc) {
	s.router.Get(pattern, handler)
}

// Post registers a POST handler.
func (s *Server) Post(pattern string, handler http.HandlerFunc) {
	s.router.Post(pattern, handler)
}

// Put registers a PUT handler.
func (s *Server) Put(pattern string, handler http.HandlerFunc) {
	s.router.Put(pattern, handler)
}

// Delete registers a DELETE handler.
func (s *Server) Delete(pattern string, handler http.HandlerFunc) {
	s.router.Delete(pattern, handler)
}

// Patch registers a PATCH handler.
func (s *Server) Patch(pattern string, handler http.HandlerFunc) {
	s.router.Patch(pattern, handler)
}

// Options registers an OPTIONS handler.
func (s *Server) Options(pattern string, handler http.HandlerFunc) {
	s.router.Options(pattern, handler)
}

// Head registers a HEAD handler.
func (s *Server) Head(pattern string, handler http.HandlerFunc) {
	s.router.Head(pattern, handler)
}

// Connect registers a CONNECT handler.
func (s *Server) Connect(pattern string, handler http.HandlerFunc) {
	s.router.Connect(pattern, handler)
}

// Trace registers a TRACE handler.
func (s *Server) Trace(pattern string, handler http.HandlerFunc) {
	s.router.Trace(pattern, handler)
}

// All registers the handler for every HTTP method at the pattern.
func (s *Server) All(pattern string, handler http.HandlerFunc) {
	s.router.HandleFunc(pattern, handler)
}

// Handle registers an http.Handler for every method at the pattern.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.router.Handle(pattern, handler)
}

// HandleFunc registers an http.HandlerFunc for every method.
func (s *Server) HandleFunc(pattern string, handler http.HandlerFunc) {
	s.router.HandleFunc(pattern, handler)
}

// Mount attaches a sub-handler (another router, promhttp, pprof) under
// the pattern.
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.router.Mount(pattern, handler)
}

// Route creates a sub-router at the pattern and passes it to fn.
func (s *Server) Route(pattern string, fn func(chi.Router)) chi.Router {
	return s.router.Route(pattern, fn)
}

// NotFound sets the handler for unmatched paths.
func (s *Server) NotFound(handler http.HandlerFunc) {
	s.router.NotFound(handler)
}

// MethodNotAllowed sets the handler for matched paths with a wrong method.
func (s *Server) MethodNotAllowed(handler http.HandlerFunc) {
	s.router.MethodNotAllowed(handler)
}

// Router exposes the underlying chi router for anything the passthrough
// surface does not cover.
func (s *Server) Router() chi.Router {
	return s.router
}
