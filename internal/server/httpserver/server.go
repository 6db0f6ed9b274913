package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the standard library HTTP server.
type Server struct {
	httpServer *http.Server
}

// Timeouts bound request handling.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
}

// New creates an HTTP server.
func New(addr string, handler http.Handler, t Timeouts) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  t.Read,
			WriteTimeout: t.Write,
		},
	}
}

// ListenAndServe starts the server and blocks.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
