package system

import (
	"context"
	"net/http"
	"time"

	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// HTTPServer adapts an http.Server to the Service interface.
type HTTPServer struct {
	name string
	srv  *http.Server
	log  *logger.Logger
}

// NewHTTPServer creates a named, lifecycle-managed HTTP server.
func NewHTTPServer(name, addr string, handler http.Handler, log *logger.Logger) *HTTPServer {
	if log == nil {
		log = logger.NewDefault(name)
	}
	return &HTTPServer{
		name: name,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Name implements Service.
func (s *HTTPServer) Name() string { return s.name }

// Start begins serving in the background. Listen errors after startup are
// logged; the caller's shutdown path is the signal handler, not this error.
func (s *HTTPServer) Start(_ context.Context) error {
	s.log.Infof("%s listening on %s", s.name, s.srv.Addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Errorf("%s server stopped", s.name)
		}
	}()
	return nil
}

// Stop drains in-flight requests until the context expires.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
