package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/cliniqa/clinicsign-server/internal/model"
)

// HTTPServer wraps an http.Server with the graceful lifecycle the rest of
// the application expects.
type HTTPServer struct {
	server *http.Server
	addr   string
}

func NewHTTPServer(h http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{Handler: h},
		addr:   addr,
	}
}

var _ model.Server = (*HTTPServer)(nil)

// Start opens a listener through the security layer and serves until Stop
// is called. A normal shutdown is not reported as an error.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
