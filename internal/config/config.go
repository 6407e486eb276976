package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreValkey = "valkey"
)

// Config is the complete server configuration.
type Config struct {
	// Addr is the listen address of the web application.
	Addr string `toml:"addr"`

	// BaseURL is the public URL of the application. The OAuth redirect URL
	// is derived from it. Defaults to http://localhost<addr>.
	BaseURL string `toml:"base_url"`

	LogFormat string `toml:"log_format"`
	Debug     bool   `toml:"debug"`

	Google   Google   `toml:"google"`
	Sessions Sessions `toml:"sessions"`
	Security Security `toml:"security"`
	Metrics  Metrics  `toml:"metrics"`
	TLS      TLS      `toml:"tls"`
}

// Google holds the OAuth client of the application.
type Google struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// CredentialsFile is a client_secret.json, used when ClientID is empty.
	CredentialsFile string `toml:"credentials_file"`

	// PlusBaseURL overrides the Google+ API root.
	PlusBaseURL string `toml:"plus_base_url"`
}

// Sessions selects and configures the session store.
type Sessions struct {
	Store string `toml:"store"`

	// Timeout is the idle expiry, as a Go duration ("24h").
	Timeout string `toml:"timeout"`

	Valkey Valkey `toml:"valkey"`
}

// Valkey configures the valkey session store.
type Valkey struct {
	URL       string `toml:"url"`
	Password  string `toml:"password"`
	TLS       bool   `toml:"tls"`
	KeyPrefix string `toml:"key_prefix"`
	DB        int    `toml:"db"`
}

// Security holds the HTTP hardening settings.
type Security struct {
	// CSRFKey is a base64 encoded 32 byte key. Empty disables CSRF tokens.
	CSRFKey string `toml:"csrf_key"`

	// TrustedOrigins may post forms in addition to the application itself.
	TrustedOrigins []string `toml:"trusted_origins"`

	SecureCookies bool `toml:"secure_cookies"`

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit  float64 `toml:"rate_limit"`
	RateBurst  int     `toml:"rate_burst"`
	TrustProxy bool    `toml:"trust_proxy"`
}

// Metrics configures the dedicated metrics server.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// TLS enables HTTPS when both files are set.
type TLS struct {
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogFormat: "text",
		Sessions: Sessions{
			Store:   StoreMemory,
			Timeout: "24h",
			Valkey:  Valkey{KeyPrefix: "quickstart:"},
		},
		Security: Security{
			RateLimit: 10,
			RateBurst: 20,
		},
		Metrics: Metrics{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("failed to parse config file %s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Sessions.Store {
	case StoreMemory:
	case StoreValkey:
		if c.Sessions.Valkey.URL == "" {
			return errors.New("valkey URL is required for the valkey session store")
		}
	default:
		return fmt.Errorf("invalid session store %q, must be one of: memory, valkey", c.Sessions.Store)
	}
	if _, err := c.SessionTimeout(); err != nil {
		return err
	}
	if _, err := c.CSRFKey(); err != nil {
		return err
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("both TLS certificate and key files are required for HTTPS")
	}
	if c.Security.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.Security.RateLimit)
	}
	return nil
}

// SessionTimeout parses Sessions.Timeout. Empty means the store default.
func (c Config) SessionTimeout() (time.Duration, error) {
	if c.Sessions.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Sessions.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid session timeout %q: %w", c.Sessions.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session timeout must be positive, got %s", d)
	}
	return d, nil
}

// CSRFKey decodes Security.CSRFKey. It returns nil when no key is set.
func (c Config) CSRFKey() ([]byte, error) {
	if c.Security.CSRFKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Security.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("invalid CSRF key (must be base64 encoded): %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CSRF key must be exactly 32 bytes (got %d bytes)", len(key))
	}
	return key, nil
}

// PublicURL returns BaseURL, or a localhost URL for Addr.
func (c Config) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	scheme := "http"
	if c.TLS.CertFile != "" {
		scheme = "https"
	}
	if strings.HasPrefix(c.Addr, ":") {
		return scheme + "://localhost" + c.Addr
	}
	return scheme + "://" + c.Addr
}

// RedirectURL is the absolute URL of the OAuth callback.
func (c Config) RedirectURL() string {
	return c.PublicURL() + "/oauth2/callback"
}
