package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Chain    ChainConfig    `mapstructure:"chain"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig holds the transfer admission rules.
type LedgerConfig struct {
	// MinterOwner is the owner principal of the reserved mint/burn account.
	MinterOwner string `mapstructure:"minter_owner"`
	// CustodyOwner is the owner principal credited for bridge deposits and
	// debited for withdrawals.
	CustodyOwner string `mapstructure:"custody_owner"`
	// Fee is the flat ledger fee charged on plain transfers.
	Fee uint64 `mapstructure:"fee"`
	// MinBurnAmount is the floor for transfers into the burn sentinel.
	MinBurnAmount uint64 `mapstructure:"min_burn_amount"`
	// DedupHorizon bounds how far in the past a caller timestamp may lie,
	// and how long admitted submissions are remembered for replay checks.
	DedupHorizon time.Duration `mapstructure:"dedup_horizon"`
	// ClockSkew is the tolerated caller clock drift into the future.
	ClockSkew time.Duration `mapstructure:"clock_skew"`
}

// ArchiveConfig controls block log rotation.
type ArchiveConfig struct {
	// Backend selects the archive store: memory, postgres or redis.
	Backend string `mapstructure:"backend"`
	// HighWater is the live window length that triggers archival.
	HighWater int `mapstructure:"high_water"`
	// LowWater is the live window length archival shrinks down to.
	LowWater int `mapstructure:"low_water"`
	// Tick is the periodic re-check interval, a safety net behind the
	// post-apply notification.
	Tick time.Duration `mapstructure:"tick"`
	// RetryBackoff is the delay between idempotent resends of a failed
	// segment write.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// GuardConfig controls the per-account operation coordinator.
type GuardConfig struct {
	// MaxConcurrent is the process-wide ceiling on outstanding leases.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// LeaseTTL is how long a flow may hold a lease before the reclaimer
	// treats it as abandoned.
	LeaseTTL time.Duration `mapstructure:"lease_ttl"`
	// ReclaimInterval is how often the reclaimer scans for expired leases.
	ReclaimInterval time.Duration `mapstructure:"reclaim_interval"`
}

// ChainConfig points at the external value-transfer network.
type ChainConfig struct {
	// Backend selects the adapter: http or fake (in-process, for dev/test).
	Backend string `mapstructure:"backend"`
	// Endpoint is the base URL of the network gateway (http backend).
	Endpoint string `mapstructure:"endpoint"`
	// RequestTimeout bounds each outbound network call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// MinRetrieveAmount is the smallest withdrawal the bridge accepts.
	MinRetrieveAmount uint64 `mapstructure:"min_retrieve_amount"`
	// MinRetrieveFee is the network fee floor for withdrawals.
	MinRetrieveFee uint64 `mapstructure:"min_retrieve_fee"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TLG_ (Token LedGer).
// Nested keys use underscore: TLG_LEDGER_FEE, TLG_ARCHIVE_BACKEND, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "token_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ledger.minter_owner", "minter")
	v.SetDefault("ledger.custody_owner", "custody")
	v.SetDefault("ledger.fee", 10)
	v.SetDefault("ledger.min_burn_amount", 100)
	v.SetDefault("ledger.dedup_horizon", "24h")
	v.SetDefault("ledger.clock_skew", "5m")
	v.SetDefault("archive.backend", "memory")
	v.SetDefault("archive.high_water", 1000)
	v.SetDefault("archive.low_water", 500)
	v.SetDefault("archive.tick", "30s")
	v.SetDefault("archive.retry_backoff", "5s")
	v.SetDefault("guard.max_concurrent", 100)
	v.SetDefault("guard.lease_ttl", "5m")
	v.SetDefault("guard.reclaim_interval", "30s")
	v.SetDefault("chain.backend", "fake")
	v.SetDefault("chain.endpoint", "http://localhost:9332")
	v.SetDefault("chain.request_timeout", "10s")
	v.SetDefault("chain.min_retrieve_amount", 1000)
	v.SetDefault("chain.min_retrieve_fee", 50)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "token-ledger")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TLG_LEDGER_FEE -> ledger.fee
	v.SetEnvPrefix("TLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required; env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Archive.LowWater >= cfg.Archive.HighWater {
		return nil, fmt.Errorf("archive.low_water (%d) must be below archive.high_water (%d)",
			cfg.Archive.LowWater, cfg.Archive.HighWater)
	}

	return &cfg, nil
}
