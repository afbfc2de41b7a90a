// Package egpconfig holds the configuration surfaces a worker process
// uses to stand up its cache hierarchy and Gene Pool connection,
// mirroring gpa.Config/gpa.SSLConfig's shape.
package egpconfig

import (
	"fmt"
	"time"
)

// DBConfig describes the Postgres connection backing the Gene Pool store.
type DBConfig struct {
	ConnectionURL string `json:"connection_url" yaml:"connection_url"`
	Host          string `json:"host" yaml:"host"`
	Port          int    `json:"port" yaml:"port"`
	Database      string `json:"database" yaml:"database"`
	Username      string `json:"username" yaml:"username"`
	Password      string `json:"password" yaml:"password"`

	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`

	SSL SSLConfig `json:"ssl" yaml:"ssl"`
}

// DSN renders c as a Postgres connection string, preferring ConnectionURL
// verbatim when set (mirrors the teacher's DBConfig.DSN(), which
// delegates to a pre-built DataSource when one is supplied rather than
// always assembling the pieces itself).
func (c DBConfig) DSN() string {
	if c.ConnectionURL != "" {
		return c.ConnectionURL
	}
	sslMode := "disable"
	if c.SSL.Enabled {
		sslMode = c.SSL.Mode
		if sslMode == "" {
			sslMode = "require"
		}
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, sslMode)
}

// SSLConfig describes TLS settings for the Postgres connection.
type SSLConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Mode     string `json:"mode" yaml:"mode"`
	CertFile string `json:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" yaml:"key_file"`
	CAFile   string `json:"ca_file" yaml:"ca_file"`
}

// RedisConfig describes the optional shared L2 cache connection.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// CacheLayerConfig configures one level of the in-process cache hierarchy.
type CacheLayerConfig struct {
	// MaxItems bounds the layer; 0 means unbounded (used for L1 "dirty").
	MaxItems int `json:"max_items" yaml:"max_items"`
	// PurgeCount is how many items are evicted per purge call.
	PurgeCount int `json:"purge_count" yaml:"purge_count"`
}

// SeedConfig locates the signed type/codon seed bundle used to bootstrap
// an empty Gene Pool (spec §6.6) and the public key its signature
// verifies against.
type SeedConfig struct {
	JSONPath      string `json:"json_path" yaml:"json_path"`
	SignaturePath string `json:"signature_path" yaml:"signature_path"`
	PublicKey     []byte `json:"public_key" yaml:"public_key"`
}

// SessionConfig is the top-level configuration a worker process loads at
// startup to build a worker.Session.
type SessionConfig struct {
	DB    DBConfig         `json:"db" yaml:"db"`
	Redis *RedisConfig     `json:"redis,omitempty" yaml:"redis,omitempty"`
	L1    CacheLayerConfig `json:"l1" yaml:"l1"`
	L2    CacheLayerConfig `json:"l2" yaml:"l2"`
	Seed  SeedConfig       `json:"seed" yaml:"seed"`
}

// Option mutates a SessionConfig; used to apply overrides on top of defaults.
type Option func(*SessionConfig)

// WithL1 sets the L1 "dirty" cache layer sizing.
func WithL1(cfg CacheLayerConfig) Option {
	return func(c *SessionConfig) { c.L1 = cfg }
}

// WithL2 sets the L2 LRU cache layer sizing.
func WithL2(cfg CacheLayerConfig) Option {
	return func(c *SessionConfig) { c.L2 = cfg }
}

// WithRedis attaches a shared distributed L2 cache.
func WithRedis(cfg RedisConfig) Option {
	return func(c *SessionConfig) { c.Redis = &cfg }
}

// Default returns a SessionConfig with the reference sizing used by a
// single worker process: an unbounded L1, a 4096-item L2 purging 256 at
// a time.
func Default() SessionConfig {
	return SessionConfig{
		L1: CacheLayerConfig{MaxItems: 0, PurgeCount: 0},
		L2: CacheLayerConfig{MaxItems: 4096, PurgeCount: 256},
	}
}

// New builds a SessionConfig from Default with opts applied in order.
func New(opts ...Option) SessionConfig {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
