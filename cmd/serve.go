package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/quickstart/internal/config"
	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/logging"
	"github.com/teemow/quickstart/internal/server"
	"github.com/teemow/quickstart/internal/web"
)

// configEnv names the config file when --config is not set.
const configEnv = "QUICKSTART_CONFIG"

// setting ties a serve flag to its environment variable and its field in
// config.Config. An explicitly set flag wins over the environment, which
// wins over the config file.
type setting struct {
	flag string
	env  string
	set  func(cfg *config.Config, value string) error
}

func stringSetting(flag, env string, field func(*config.Config) *string) setting {
	return setting{flag: flag, env: env, set: func(cfg *config.Config, v string) error {
		*field(cfg) = v
		return nil
	}}
}

func boolSetting(flag, env string, field func(*config.Config) *bool) setting {
	return setting{flag: flag, env: env, set: func(cfg *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		*field(cfg) = b
		return nil
	}}
}

func intSetting(flag, env string, field func(*config.Config) *int) setting {
	return setting{flag: flag, env: env, set: func(cfg *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", v)
		}
		*field(cfg) = n
		return nil
	}}
}

func floatSetting(flag, env string, field func(*config.Config) *float64) setting {
	return setting{flag: flag, env: env, set: func(cfg *config.Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", v)
		}
		*field(cfg) = f
		return nil
	}}
}

var settings = []setting{
	stringSetting("addr", "HTTP_ADDR", func(c *config.Config) *string { return &c.Addr }),
	stringSetting("base-url", "BASE_URL", func(c *config.Config) *string { return &c.BaseURL }),
	stringSetting("log-format", "LOG_FORMAT", func(c *config.Config) *string { return &c.LogFormat }),
	boolSetting("debug", "DEBUG", func(c *config.Config) *bool { return &c.Debug }),

	stringSetting("google-client-id", "GOOGLE_CLIENT_ID", func(c *config.Config) *string { return &c.Google.ClientID }),
	stringSetting("google-client-secret", "GOOGLE_CLIENT_SECRET", func(c *config.Config) *string { return &c.Google.ClientSecret }),
	stringSetting("google-credentials-file", "GOOGLE_CREDENTIALS_FILE", func(c *config.Config) *string { return &c.Google.CredentialsFile }),
	stringSetting("plus-base-url", "PLUS_BASE_URL", func(c *config.Config) *string { return &c.Google.PlusBaseURL }),

	stringSetting("session-store", "SESSION_STORE", func(c *config.Config) *string { return &c.Sessions.Store }),
	stringSetting("session-timeout", "SESSION_TIMEOUT", func(c *config.Config) *string { return &c.Sessions.Timeout }),
	stringSetting("valkey-url", "VALKEY_URL", func(c *config.Config) *string { return &c.Sessions.Valkey.URL }),
	stringSetting("valkey-password", "VALKEY_PASSWORD", func(c *config.Config) *string { return &c.Sessions.Valkey.Password }),
	boolSetting("valkey-tls", "VALKEY_TLS_ENABLED", func(c *config.Config) *bool { return &c.Sessions.Valkey.TLS }),
	stringSetting("valkey-key-prefix", "VALKEY_KEY_PREFIX", func(c *config.Config) *string { return &c.Sessions.Valkey.KeyPrefix }),
	intSetting("valkey-db", "VALKEY_DB", func(c *config.Config) *int { return &c.Sessions.Valkey.DB }),

	stringSetting("csrf-key", "CSRF_KEY", func(c *config.Config) *string { return &c.Security.CSRFKey }),
	{flag: "trusted-origins", env: "TRUSTED_ORIGINS", set: func(c *config.Config, v string) error {
		c.Security.TrustedOrigins = parseCommaSeparatedList(v)
		return nil
	}},
	boolSetting("secure-cookies", "SECURE_COOKIES", func(c *config.Config) *bool { return &c.Security.SecureCookies }),
	floatSetting("rate-limit", "RATE_LIMIT", func(c *config.Config) *float64 { return &c.Security.RateLimit }),
	intSetting("rate-burst", "RATE_BURST", func(c *config.Config) *int { return &c.Security.RateBurst }),
	boolSetting("trust-proxy", "TRUST_PROXY", func(c *config.Config) *bool { return &c.Security.TrustProxy }),

	boolSetting("metrics-enabled", "METRICS_ENABLED", func(c *config.Config) *bool { return &c.Metrics.Enabled }),
	stringSetting("metrics-addr", "METRICS_ADDR", func(c *config.Config) *string { return &c.Metrics.Addr }),

	stringSetting("tls-cert-file", "TLS_CERT_FILE", func(c *config.Config) *string { return &c.TLS.CertFile }),
	stringSetting("tls-key-file", "TLS_KEY_FILE", func(c *config.Config) *string { return &c.TLS.KeyFile }),
}

func newServeCmd() *cobra.Command {
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		Long: `Start the quickstart web application.

Configuration:
  Settings come from an optional TOML file (--config or QUICKSTART_CONFIG),
  then environment variables, then command-line flags. An explicitly set
  flag always wins.

Google OAuth (required):
  --google-client-id and --google-client-secret flags
  OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars
  OR --google-credentials-file pointing at a downloaded client_secret.json

  Register <base-url>/oauth2/callback as an authorized redirect URI.

Sessions:
  Sessions are kept in memory by default. Use --session-store valkey to
  share them between replicas.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, os.Getenv)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	f := cmd.Flags()
	f.String("config", "", "Path to a TOML config file. Can also use QUICKSTART_CONFIG env var.")
	f.String("addr", d.Addr, "HTTP server address. Can also use HTTP_ADDR env var.")
	f.String("base-url", "", "Public base URL of the application, used for the OAuth redirect URL. Can also use BASE_URL env var. Example: https://quickstart.example.com")
	f.String("log-format", d.LogFormat, "Log format: text or json. Can also use LOG_FORMAT env var.")
	f.Bool("debug", false, "Enable debug logging. Can also use DEBUG env var.")

	f.String("google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	f.String("google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	f.String("google-credentials-file", "", "Path to a client_secret.json, used when no client ID is set. Can also use GOOGLE_CREDENTIALS_FILE env var.")
	f.String("plus-base-url", "", "Override the Google+ API root. Can also use PLUS_BASE_URL env var.")

	f.String("session-store", d.Sessions.Store, "Session store: memory or valkey. Can also use SESSION_STORE env var.")
	f.String("session-timeout", d.Sessions.Timeout, "Idle session expiry. Can also use SESSION_TIMEOUT env var.")
	f.String("valkey-url", "", "Valkey server address (e.g., valkey.namespace.svc:6379). Can also use VALKEY_URL env var.")
	f.String("valkey-password", "", "Valkey authentication password. Can also use VALKEY_PASSWORD env var.")
	f.Bool("valkey-tls", false, "Enable TLS for Valkey connections. Can also use VALKEY_TLS_ENABLED env var.")
	f.String("valkey-key-prefix", d.Sessions.Valkey.KeyPrefix, "Prefix for all Valkey keys. Can also use VALKEY_KEY_PREFIX env var.")
	f.Int("valkey-db", 0, "Valkey database number. Can also use VALKEY_DB env var.")

	f.String("csrf-key", "", "CSRF key for form posts (32 bytes, base64 encoded). Can also use CSRF_KEY env var. Generate with: openssl rand -base64 32")
	f.String("trusted-origins", "", "Additional origins allowed to post forms (comma-separated host[:port]). Can also use TRUSTED_ORIGINS env var.")
	f.Bool("secure-cookies", false, "Mark cookies Secure. Enable when served over HTTPS. Can also use SECURE_COOKIES env var.")
	f.Float64("rate-limit", d.Security.RateLimit, "Requests per second per client IP, 0 disables rate limiting. Can also use RATE_LIMIT env var.")
	f.Int("rate-burst", d.Security.RateBurst, "Rate limit burst per client IP. Can also use RATE_BURST env var.")
	f.Bool("trust-proxy", false, "Use X-Forwarded-For for the client IP. Only enable behind a trusted proxy. Can also use TRUST_PROXY env var.")

	f.Bool("metrics-enabled", d.Metrics.Enabled, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	f.String("metrics-addr", d.Metrics.Addr, "Metrics server address. Can also use METRICS_ADDR env var.")

	f.String("tls-cert-file", "", "Path to TLS certificate file (PEM format). If provided with --tls-key-file, enables HTTPS. Can also use TLS_CERT_FILE env var.")
	f.String("tls-key-file", "", "Path to TLS private key file (PEM format). If provided with --tls-cert-file, enables HTTPS. Can also use TLS_KEY_FILE env var.")

	return cmd
}

// resolveConfig loads the config file and applies the environment and the
// explicitly set flags on top of it.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if !cmd.Flags().Changed("config") {
		if env := getenv(configEnv); env != "" {
			path = env
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	for _, s := range settings {
		value, ok := settingValue(cmd, s, getenv)
		if !ok {
			continue
		}
		if err := s.set(&cfg, value); err != nil {
			return cfg, fmt.Errorf("invalid value for --%s (or %s): %w", s.flag, s.env, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// settingValue returns the flag value when the flag was set explicitly,
// otherwise the environment value when present.
func settingValue(cmd *cobra.Command, s setting, getenv func(string) string) (string, bool) {
	if f := cmd.Flags().Lookup(s.flag); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if v := getenv(s.env); v != "" {
		return v, true
	}
	return "", false
}

// sessionBackend is a session store the readiness probe can ping.
type sessionBackend interface {
	server.SessionStore
	server.Pinger
}

func newSessionStore(cfg config.Config, logger *slog.Logger) (sessionBackend, error) {
	timeout, err := cfg.SessionTimeout()
	if err != nil {
		return nil, err
	}

	switch cfg.Sessions.Store {
	case config.StoreValkey:
		v := cfg.Sessions.Valkey
		store, err := server.NewValkeyStore(server.ValkeyConfig{
			URL:            v.URL,
			Password:       v.Password,
			TLSEnabled:     v.TLS,
			DB:             v.DB,
			KeyPrefix:      v.KeyPrefix,
			SessionTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using valkey session store", "addr", v.URL, "tls", v.TLS)
		return store, nil
	default:
		logger.Info("using in-memory session store")
		return server.NewMemoryStoreWithLogger(timeout, logger), nil
	}
}

func runServe(cfg config.Config) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.New(os.Stderr, logging.Options{Format: cfg.LogFormat, Debug: cfg.Debug})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var (
		metrics *instrumentation.Metrics
		audit   *instrumentation.AuditLogger
	)
	if provider.Enabled() {
		metrics = provider.Metrics()
		audit = instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)
	}

	// Start metrics server if enabled
	if cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(cfg.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	sessions, err := newSessionStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Error("error closing session store", logging.Err(err))
		}
	}()
	if memory, ok := sessions.(*server.MemoryStore); ok {
		memory.OnExpire(func(n int) {
			for range n {
				metrics.DecrementActiveSessions(context.Background())
			}
		})
	}

	oauthConf, err := google.NewOAuthConfig(google.OAuthConfig{
		ClientID:        cfg.Google.ClientID,
		ClientSecret:    cfg.Google.ClientSecret,
		CredentialsFile: cfg.Google.CredentialsFile,
		RedirectURL:     cfg.RedirectURL(),
	})
	if err != nil {
		return fmt.Errorf("failed to configure Google OAuth: %w", err)
	}

	var factoryOpts []web.FactoryOption
	if cfg.Google.PlusBaseURL != "" {
		factoryOpts = append(factoryOpts, web.WithPlusBaseURL(cfg.Google.PlusBaseURL))
	}

	csrfKey, err := cfg.CSRFKey()
	if err != nil {
		return err
	}
	if csrfKey == nil {
		logger.Warn("CSRF protection disabled, set --csrf-key to enable it")
	}

	app, err := web.NewHandler(web.Config{
		OAuth:          oauthConf,
		Sessions:       sessions,
		Clients:        web.NewGoogleClientFactory(oauthConf, sessions, metrics, factoryOpts...),
		Metrics:        metrics,
		Audit:          audit,
		Logger:         logger,
		CSRFKey:        csrfKey,
		TrustedOrigins: cfg.Security.TrustedOrigins,
		SecureCookies:  cfg.Security.SecureCookies,
	})
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	appServer, err := server.NewAppServer(server.Config{
		Addr:        cfg.Addr,
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		RateLimit:   cfg.Security.RateLimit,
		RateBurst:   cfg.Security.RateBurst,
		TrustProxy:  cfg.Security.TrustProxy,
	}, app, server.NewHealthChecker(sessions), logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := appServer.StartWithReadySignal(ready); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		logger.Info("quickstart started",
			"url", cfg.PublicURL(),
			"redirect_url", cfg.RedirectURL(),
			"version", version)
	case err := <-serverDone:
		return fmt.Errorf("web server failed to start: %w", err)
	}

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping web server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := appServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down web server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("web server stopped with error: %w", err)
		}
	}

	logger.Info("web server gracefully stopped")
	return nil
}

// startMetricsServer starts the metrics server and waits until it accepts
// connections.
func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, errors.New("metrics server startup timed out")
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
