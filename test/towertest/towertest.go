// Package towertest provides a fake Tower API server for tests.
//
// The fake records every request it receives so tests can assert on the
// exact sequence of calls an operation makes, in the spirit of:
//
//	srv := towertest.NewServer(t)
//	srv.HandleJSON(http.MethodGet, "/api/v1/projects/1/", 200, map[string]any{...})
//	client := srv.Client(t)
//	// ... exercise code ...
//	require.Equal(t, []string{"GET /api/v1/projects/1/"}, srv.Calls())
package towertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/towerops/towerctl/pkg/api"
)

// Request is one recorded request.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Server is a fake Tower API server.
type Server struct {
	*httptest.Server

	router chi.Router

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake Tower server that shuts down with the test.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{router: chi.NewRouter()}
	recorder := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			s.mu.Lock()
			s.requests = append(s.requests, Request{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
				Body:   string(body),
			})
			s.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
	s.router.Use(recorder)

	s.Server = httptest.NewServer(s.router)
	t.Cleanup(s.Server.Close)
	return s
}

// Handle registers an arbitrary handler for a method and path pattern.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.router.Method(method, pattern, h)
}

// HandleJSON registers a handler that always answers with the given
// status and JSON body.
func (s *Server) HandleJSON(method, pattern string, status int, body any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// HandleRawJSON registers a handler answering with a literal JSON string.
// Use this when the test cares about response key order.
func (s *Server) HandleRawJSON(method, pattern string, status int, raw string) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(raw))
	})
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns the recorded requests as "METHOD /path" strings.
func (s *Server) Calls() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = fmt.Sprintf("%s %s", r.Method, r.Path)
	}
	return out
}

// Client builds an API client pointed at the fake server. The rate
// limiter is effectively disabled so polling tests run fast.
func (s *Server) Client(t *testing.T) *api.Client {
	t.Helper()

	client, err := api.NewClient(api.Config{
		Host:              s.URL,
		Username:          "meagan",
		Password:          "this is the best wine",
		RequestsPerSecond: 10000,
	}, api.WithHTTPClient(s.Server.Client()))
	if err != nil {
		t.Fatalf("build test client: %v", err)
	}
	return client
}
