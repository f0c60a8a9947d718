package domain

import (
	"os"
	"strconv"
	"time"
)

// Config holds the complete validator configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Tier determines which backing services are used
	Tier Tier `json:"tier"`

	// Component configurations
	Repository RepositoryConfig `json:"repository"`
	Cache      CacheConfig      `json:"cache"`
	EventBus   EventBusConfig   `json:"eventBus"`
	Lookup     LookupConfig     `json:"lookup"`
	Simulation SimulationConfig `json:"simulation"`

	// NetworkRules is an optional YAML file of card network rules merged
	// over the builtin set.
	NetworkRules string `json:"networkRules,omitempty"`

	// AsyncWorker runs the experiment worker inside the server process.
	AsyncWorker bool `json:"asyncWorker"`

	// MaxIdentifierLength caps the normalized input the correction search
	// accepts over HTTP. The candidate set grows with the square of it.
	MaxIdentifierLength int `json:"maxIdentifierLength"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// LookupConfig holds settings for the book lookup collaborator.
type LookupConfig struct {
	// BaseURL of the Google Books API, without the /volumes suffix.
	BaseURL string        `json:"baseUrl"`
	APIKey  string        `json:"apiKey,omitempty"`
	Timeout time.Duration `json:"timeout"`

	// CacheTTL applies to found records, NegativeTTL to misses.
	CacheTTL    time.Duration `json:"cacheTtl"`
	NegativeTTL time.Duration `json:"negativeTtl"`

	// MaxPerWindow caps remote lookups per Window; 0 disables the cap.
	MaxPerWindow int64         `json:"maxPerWindow"`
	Window       time.Duration `json:"window"`

	// MaxSuggestions caps how many corrections are looked up per request.
	MaxSuggestions int `json:"maxSuggestions"`
}

// SimulationConfig holds defaults for detection-rate experiments.
type SimulationConfig struct {
	DefaultLength  int `json:"defaultLength"`
	DefaultSamples int `json:"defaultSamples"`
	Workers        int `json:"workers"`

	// Upper bounds on a single run; zero disables a bound.
	MaxLength  int `json:"maxLength"`
	MaxSamples int `json:"maxSamples"`
	MaxWorkers int `json:"maxWorkers"`

	// Seed makes experiments reproducible when non-zero.
	Seed int64 `json:"seed"`

	// ResultTTL is how long asynchronous results stay retrievable.
	ResultTTL time.Duration `json:"resultTtl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// Tier represents the deployment tier.
type Tier string

const (
	// TierCommunity runs on SQLite, an in-process cache and Go channels.
	TierCommunity Tier = "community"

	// TierPro runs on PostgreSQL, Redis and NATS.
	TierPro Tier = "pro"
)

// DefaultConfig returns a default configuration for Community tier.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 60,
		},
		Tier:                TierCommunity,
		AsyncWorker:         true,
		MaxIdentifierLength: 64,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./validator.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 100,
		},
		Lookup: LookupConfig{
			BaseURL:        "https://www.googleapis.com/books/v1",
			Timeout:        10 * time.Second,
			CacheTTL:       24 * time.Hour,
			NegativeTTL:    10 * time.Minute,
			MaxPerWindow:   100,
			Window:         time.Minute,
			MaxSuggestions: 5,
		},
		Simulation: SimulationConfig{
			DefaultLength:  16,
			DefaultSamples: 10000,
			Workers:        4,
			MaxLength:      64,
			MaxSamples:     1000000,
			MaxWorkers:     16,
			ResultTTL:      time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "luhn-isbn-validator",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "validator",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
		LocalTTL:       time.Minute,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
		NATSQueueGroup:    "validator-workers",
	}
	cfg.Tracing.Enabled = true
	return cfg
}

// LoadConfig picks the tier from VALIDATOR_TIER and applies overrides.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	if os.Getenv("VALIDATOR_TIER") == string(TierPro) {
		cfg = ProConfig()
	}
	ApplyEnv(cfg, os.Getenv)
	return cfg
}

// ApplyEnv overrides individual settings from VALIDATOR_* variables.
// Unset or unparsable values leave the current setting untouched.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	setString(getenv, "VALIDATOR_HOST", &cfg.Server.Host)
	setInt(getenv, "VALIDATOR_PORT", &cfg.Server.Port)

	setString(getenv, "VALIDATOR_DB_PATH", &cfg.Repository.SQLitePath)
	setString(getenv, "VALIDATOR_POSTGRES_HOST", &cfg.Repository.PostgresHost)
	setString(getenv, "VALIDATOR_POSTGRES_USER", &cfg.Repository.PostgresUser)
	setString(getenv, "VALIDATOR_POSTGRES_PASSWORD", &cfg.Repository.PostgresPassword)
	setString(getenv, "VALIDATOR_POSTGRES_DB", &cfg.Repository.PostgresDB)

	setString(getenv, "VALIDATOR_REDIS_ADDR", &cfg.Cache.RedisAddr)
	setString(getenv, "VALIDATOR_REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	setString(getenv, "VALIDATOR_NATS_URL", &cfg.EventBus.NATSUrl)
	setString(getenv, "VALIDATOR_NATS_TOKEN", &cfg.EventBus.NATSToken)
	setString(getenv, "VALIDATOR_NATS_QUEUE", &cfg.EventBus.NATSQueueGroup)
	setString(getenv, "VALIDATOR_NETWORK_RULES", &cfg.NetworkRules)
	if v := getenv("VALIDATOR_ASYNC_WORKER"); v != "" {
		cfg.AsyncWorker = v == "true"
	}

	setString(getenv, "VALIDATOR_BOOKS_URL", &cfg.Lookup.BaseURL)
	setString(getenv, "VALIDATOR_BOOKS_API_KEY", &cfg.Lookup.APIKey)
	setDuration(getenv, "VALIDATOR_LOOKUP_TIMEOUT", &cfg.Lookup.Timeout)
	setInt(getenv, "VALIDATOR_MAX_SUGGESTIONS", &cfg.Lookup.MaxSuggestions)
	setInt(getenv, "VALIDATOR_MAX_IDENTIFIER_LENGTH", &cfg.MaxIdentifierLength)

	setInt(getenv, "VALIDATOR_SAMPLES", &cfg.Simulation.DefaultSamples)
	setInt(getenv, "VALIDATOR_WORKERS", &cfg.Simulation.Workers)
	setInt(getenv, "VALIDATOR_MAX_LENGTH", &cfg.Simulation.MaxLength)
	setInt(getenv, "VALIDATOR_MAX_SAMPLES", &cfg.Simulation.MaxSamples)
	setInt(getenv, "VALIDATOR_MAX_WORKERS", &cfg.Simulation.MaxWorkers)
	if v := getenv("VALIDATOR_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.Seed = seed
		}
	}

	if getenv("VALIDATOR_DEBUG") == "true" {
		cfg.Logging.Level = "debug"
	}
	if v := getenv("VALIDATOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}

func setInt(getenv func(string) string, key string, dst *int) {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(getenv func(string) string, key string, dst *time.Duration) {
	if v := getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
