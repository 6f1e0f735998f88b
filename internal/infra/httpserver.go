package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server with the timeouts this service needs. The
// write timeout in particular is sized so a generation request can block
// through its whole poll budget without the connection being cut.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the server from config. Zero config timeouts fall
// back to conservative values rather than http.Server's unlimited defaults.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	readTimeout := cfg.HTTPReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.HTTPWriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 11 * time.Minute
	}
	idleTimeout := cfg.HTTPIdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = time.Minute
	}

	return &HTTPServer{srv: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    1 << 20,
	}}
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string {
	if s == nil || s.srv == nil {
		return ""
	}
	return s.srv.Addr
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *HTTPServer) Start() error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
