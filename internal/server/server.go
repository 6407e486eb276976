package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Default timeouts of the application server.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultUploadLimit caps request bodies, picture uploads included.
	DefaultUploadLimit = 10 << 20
)

// Config configures the application server.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// RateLimit is the sustained requests per second per client IP.
	// Zero disables rate limiting.
	RateLimit float64
	// RateBurst is the bucket size per client IP.
	RateBurst int
	// TrustProxy makes the rate limiter key on X-Forwarded-For.
	TrustProxy bool
}

// AppServer serves the web application together with the health endpoints.
type AppServer struct {
	httpServer *http.Server
	health     *HealthChecker
	limiter    *RateLimiter
	config     Config
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewAppServer wraps app with rate limiting and security headers and mounts
// it next to the health endpoints.
func NewAppServer(config Config, app http.Handler, health *HealthChecker, logger *slog.Logger) (*AppServer, error) {
	if app == nil {
		return nil, errors.New("application handler is required")
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return nil, errors.New("both TLS certificate and key files are required for HTTPS")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if health == nil {
		health = NewHealthChecker(nil)
	}

	s := &AppServer{
		health: health,
		config: config,
		logger: logger,
	}

	handler := SecurityHeaders(http.MaxBytesHandler(app, DefaultUploadLimit))
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = int(config.RateLimit) * 2
		}
		s.limiter = NewRateLimiter(config.RateLimit, burst, config.TrustProxy)
		handler = s.limiter.Middleware(handler)
	}

	mux := http.NewServeMux()
	health.RegisterHealthEndpoints(mux)
	mux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s, nil
}

// Handler returns the fully wrapped handler.
func (s *AppServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// StartWithReadySignal binds the listener, closes ready once connections
// are accepted and serves until Shutdown.
func (s *AppServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	tlsEnabled := s.config.TLSCertFile != ""
	s.logger.Info("starting web server", "addr", ln.Addr().String(), "tls", tlsEnabled)
	if ready != nil {
		close(ready)
	}

	if tlsEnabled {
		err = s.httpServer.ServeTLS(ln, s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown marks the server as draining and waits for in-flight requests.
func (s *AppServer) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	s.health.SetReady(false)
	if s.limiter != nil {
		s.limiter.Close()
	}

	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.logger.Info("shutting down web server")
	return s.httpServer.Shutdown(ctx)
}

// ListenAddr returns the bound address once the server started.
func (s *AppServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
