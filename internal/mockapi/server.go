// Package mockapi provides an httptest stand-in for the chat completions API.
package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Paths served by the real API.
const (
	ChatPath   = "/v1/chat/completions"
	ModelsPath = "/v1/models"
)

// Server is a mock of the remote API. Responses are configured per path;
// unconfigured paths answer 404.
type Server struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses  map[string]Response
	responders map[string]Responder
	requests   []Request
}

// Responder builds a reply from the incoming request.
type Responder func(Request) Response

// Response defines a canned reply.
type Response struct {
	StatusCode int

	// Body is written as is when it is a string or []byte and JSON-encoded
	// otherwise.
	Body any

	Delay   time.Duration
	Headers map[string]string
}

// Request is a recorded incoming request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewServer starts a mock server. Close it when done.
func NewServer() *Server {
	s := &Server{
		responses:  make(map[string]Response),
		responders: make(map[string]Responder),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// ChatURL returns the chat completions URL.
func (s *Server) ChatURL() string {
	return s.server.URL + ChatPath
}

// ModelsURL returns the models URL.
func (s *Server) ModelsURL() string {
	return s.server.URL + ModelsPath
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse configures the reply for path.
func (s *Server) SetResponse(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
	delete(s.responders, path)
}

// SetResponder answers requests to path with fn. It takes precedence over
// SetResponse until SetResponse is called again for the same path.
func (s *Server) SetResponder(path string, fn Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[path] = fn
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request, or false if none arrived.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	}
	s.requests = append(s.requests, req)
	resp, ok := s.responses[r.URL.Path]
	responder, dynamic := s.responders[r.URL.Path]
	s.mu.Unlock()

	if dynamic {
		resp, ok = responder(req), true
	}

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)

	switch v := resp.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
