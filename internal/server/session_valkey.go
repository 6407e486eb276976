package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyConfig configures a ValkeyStore.
type ValkeyConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379").
	URL string

	Password   string
	TLSEnabled bool
	DB         int

	// KeyPrefix is prepended to every session key.
	KeyPrefix string

	// SessionTimeout is the idle expiry of a session.
	SessionTimeout time.Duration
}

// ValkeyStore keeps sessions in Valkey as JSON with a sliding expiry.
type ValkeyStore struct {
	client  valkey.Client
	prefix  string
	timeout time.Duration
}

// NewValkeyStore connects to Valkey.
func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("valkey URL is required")
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}

	opt := valkey.ClientOption{
		InitAddress: []string{cfg.URL},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	}
	if cfg.TLSEnabled {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return &ValkeyStore{
		client:  client,
		prefix:  cfg.KeyPrefix,
		timeout: cfg.SessionTimeout,
	}, nil
}

func (s *ValkeyStore) key(id string) string {
	return s.prefix + "session:" + id
}

func (s *ValkeyStore) ttlSeconds() int64 {
	return int64(s.timeout / time.Second)
}

// Get returns the session and extends its expiry.
func (s *ValkeyStore) Get(ctx context.Context, id string) (*Session, error) {
	cmd := s.client.B().Getex().Key(s.key(id)).ExSeconds(s.ttlSeconds()).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	session.LastAccess = time.Now()
	return &session, nil
}

// Save stores the session.
func (s *ValkeyStore) Save(ctx context.Context, session *Session) error {
	cp := *session
	cp.LastAccess = time.Now()

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	cmd := s.client.B().Set().Key(s.key(session.ID)).Value(string(data)).ExSeconds(s.ttlSeconds()).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *ValkeyStore) Delete(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(s.key(id)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close closes the connection.
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
