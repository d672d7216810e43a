package shelfgate

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by shelfgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API     APIConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by shelfgate APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	// BaseURL is the Shelf server root, e.g. "https://shelf.example.org".
	BaseURL string `env:"API_BASE_URL"`
	// Timeout bounds every auth and permission request. A timed-out
	// permission query is a transport error and therefore a denial.
	Timeout time.Duration `env:"API_TIMEOUT"`
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by shelfgate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// DecodeLeeway softens clock skew on the local expiry check when
	// decoding a stored access token.
	DecodeLeeway time.Duration `env:"TOKEN_DECODE_LEEWAY"`
	// RefreshWindow is how long before expiry Refresh starts rotating
	// the credential. Zero disables proactive refresh.
	RefreshWindow time.Duration `env:"TOKEN_REFRESH_WINDOW"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by shelfgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"AUDIT_ENABLED"`
	BufferSize int  `env:"AUDIT_BUFFER_SIZE"`
	DropIfFull bool `env:"AUDIT_DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by shelfgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"METRICS_LATENCY"`
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: 10 * time.Second,
		},
		Token: TokenConfig{
			DecodeLeeway:  30 * time.Second,
			RefreshWindow: 2 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfig returns the baseline configuration: 10s request timeout,
// 2m proactive refresh window, audit and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigFromEnv overlays SHELFGATE_-prefixed environment variables onto the
// defaults, e.g. SHELFGATE_API_BASE_URL, SHELFGATE_API_TIMEOUT.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SHELFGATE_"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	// Config is all value fields today; the clone point exists so adding
	// a slice or map field later cannot alias caller state.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return errors.New("API timeout must be positive")
	}
	if c.API.Timeout > time.Minute {
		return errors.New("API timeout above 1m defeats fail-closed gating")
	}
	if c.Token.DecodeLeeway < 0 || c.Token.DecodeLeeway > 2*time.Minute {
		return errors.New("invalid token decode leeway")
	}
	if c.Token.RefreshWindow < 0 {
		return errors.New("refresh window cannot be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}
	return nil
}
