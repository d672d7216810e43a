package shelfgate

import (
	"context"
	"errors"
	"net/http"

	"github.com/hartwellk/shelfgate/api"
	internalaudit "github.com/hartwellk/shelfgate/internal/audit"
	"github.com/hartwellk/shelfgate/permission"
	"github.com/hartwellk/shelfgate/token"
)

// Builder defines a public type used by shelfgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	httpClient *http.Client
	apiClient  *api.Client
	tokens     token.Store
	table      *permission.Table
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithTokenStore describes the withtokenstore operation and its observable behavior.
//
// WithTokenStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTokenStore(store token.Store) *Builder {
	b.tokens = store
	return b
}

// WithHTTPClient substitutes the transport used when the Builder
// constructs its own API client (ignored if WithAPIClient was called).
func (b *Builder) WithHTTPClient(h *http.Client) *Builder {
	b.httpClient = h
	return b
}

// WithAPIClient supplies a pre-built API client, bypassing BaseURL-based
// construction.
func (b *Builder) WithAPIClient(client *api.Client) *Builder {
	b.apiClient = client
	return b
}

// WithPermissionTable substitutes the role-claim table. Defaults to
// [permission.DefaultTable].
func (b *Builder) WithPermissionTable(t *permission.Table) *Builder {
	b.table = t
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.tokens == nil {
		return nil, errors.New("token store required")
	}

	client := b.apiClient
	if client == nil {
		if cfg.API.BaseURL == "" {
			return nil, errors.New("API base URL or client required")
		}
		opts := []api.Option{api.WithTokenSource(storeTokenSource{store: b.tokens})}
		if b.httpClient != nil {
			opts = append(opts, api.WithHTTPClient(b.httpClient))
		}
		var err error
		client, err = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, opts...)
		if err != nil {
			return nil, err
		}
	}

	decoder, err := token.NewDecoder(cfg.Token.DecodeLeeway)
	if err != nil {
		return nil, err
	}

	table := b.table
	if table == nil {
		table = permission.DefaultTable()
	}

	b.built = true

	return &Session{
		config:  cfg,
		api:     client,
		tokens:  b.tokens,
		decoder: decoder,
		table:   table,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}, nil
}

// storeTokenSource adapts a token.Store to the api.TokenSource contract.
type storeTokenSource struct {
	store token.Store
}

func (s storeTokenSource) AccessToken(ctx context.Context) string {
	cred, err := s.store.Load(ctx)
	if err != nil {
		return ""
	}
	return cred.AccessToken
}
