// Package config loads coursectx configuration from YAML, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	EmbedderMock      = "mock"
	EmbedderOpenAI    = "openai"
	EmbedderLangChain = "langchain"

	EstimatorHeuristic = "heuristic"
	EstimatorTiktoken  = "tiktoken"
)

// RedisConfig holds connection details shared by the Redis stores.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db"`
	Prefix    string `yaml:"prefix"`
	IndexName string `yaml:"index_name"`
}

// PostgresConfig configures the Postgres details store.
type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

// SQLiteConfig configures the SQLite details store.
type SQLiteConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

// StorageConfig selects the tier backends. The code index always lives next
// to the summaries.
type StorageConfig struct {
	Summaries string          `yaml:"summaries"`
	Details   string          `yaml:"details"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  *PostgresConfig `yaml:"postgres,omitempty"`
	SQLite    *SQLiteConfig   `yaml:"sqlite,omitempty"`
}

// OpenAIConfig configures the OpenAI embedding client.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// APIKey reads the key from the configured environment variable.
func (c *OpenAIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// LangChainConfig configures an embedder built from a langchaingo client.
type LangChainConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	ServerURL string `yaml:"server_url,omitempty"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Type      string           `yaml:"type"`
	Dimension int              `yaml:"dimension"`
	OpenAI    *OpenAIConfig    `yaml:"openai,omitempty"`
	LangChain *LangChainConfig `yaml:"langchain,omitempty"`
}

// RetrievalConfig holds search and assembly defaults.
type RetrievalConfig struct {
	SummaryLimit int    `yaml:"summary_limit"`
	DetailLimit  int    `yaml:"detail_limit"`
	MaxTokens    int    `yaml:"max_tokens"`
	Estimator    string `yaml:"estimator"`
	Encoding     string `yaml:"encoding,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the root configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the in-memory configuration with a mock embedder.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadWithEnv loads .env files (./.env when none are given, missing files
// ignored), then the config file, then applies environment overrides.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks backend names and required settings.
func (c *Config) Validate() error {
	switch c.Storage.Summaries {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unsupported summary backend %q", c.Storage.Summaries)
	}

	switch c.Storage.Details {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Storage.Postgres == nil || c.Storage.Postgres.ConnString == "" {
			return errors.New("postgres details backend requires storage.postgres.conn_string")
		}
	case BackendSQLite:
		if c.Storage.SQLite == nil || c.Storage.SQLite.Path == "" {
			return errors.New("sqlite details backend requires storage.sqlite.path")
		}
	default:
		return fmt.Errorf("unsupported details backend %q", c.Storage.Details)
	}

	switch c.Embedding.Type {
	case EmbedderMock:
	case EmbedderOpenAI:
		if c.Embedding.OpenAI == nil {
			return errors.New("openai embedder requires embedding.openai")
		}
		if c.Embedding.OpenAI.APIKey() == "" {
			return fmt.Errorf("%s is not set", c.Embedding.OpenAI.APIKeyEnv)
		}
	case EmbedderLangChain:
		if c.Embedding.LangChain == nil || c.Embedding.LangChain.Provider == "" {
			return errors.New("langchain embedder requires embedding.langchain.provider")
		}
	default:
		return fmt.Errorf("unsupported embedder %q", c.Embedding.Type)
	}

	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension)
	}

	r := c.Retrieval
	if r.SummaryLimit <= 0 {
		return fmt.Errorf("retrieval summary_limit must be positive, got %d", r.SummaryLimit)
	}
	if r.DetailLimit < 0 {
		return fmt.Errorf("retrieval detail_limit must not be negative, got %d", r.DetailLimit)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("retrieval max_tokens must be positive, got %d", r.MaxTokens)
	}

	switch r.Estimator {
	case EstimatorHeuristic, EstimatorTiktoken:
	default:
		return fmt.Errorf("unsupported token estimator %q", r.Estimator)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Summaries == "" {
		cfg.Storage.Summaries = BackendMemory
	}
	if cfg.Storage.Details == "" {
		cfg.Storage.Details = cfg.Storage.Summaries
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "coursectx:"
	}
	if cfg.Storage.Redis.IndexName == "" {
		cfg.Storage.Redis.IndexName = "coursectx_summaries"
	}
	if cfg.Storage.Postgres != nil && cfg.Storage.Postgres.Table == "" {
		cfg.Storage.Postgres.Table = "course_details"
	}
	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Table == "" {
		cfg.Storage.SQLite.Table = "course_details"
	}

	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = EmbedderMock
	}
	if cfg.Embedding.Dimension == 0 {
		if cfg.Embedding.Type == EmbedderMock {
			cfg.Embedding.Dimension = 256
		} else {
			cfg.Embedding.Dimension = 1536
		}
	}
	if cfg.Embedding.Type == EmbedderOpenAI {
		if cfg.Embedding.OpenAI == nil {
			cfg.Embedding.OpenAI = &OpenAIConfig{}
		}
		if cfg.Embedding.OpenAI.APIKeyEnv == "" {
			cfg.Embedding.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedding.OpenAI.Model == "" {
			cfg.Embedding.OpenAI.Model = "text-embedding-3-small"
		}
	}

	if cfg.Retrieval.SummaryLimit == 0 {
		cfg.Retrieval.SummaryLimit = 10
	}
	if cfg.Retrieval.DetailLimit == 0 {
		cfg.Retrieval.DetailLimit = 3
	}
	if cfg.Retrieval.MaxTokens == 0 {
		cfg.Retrieval.MaxTokens = 4000
	}
	if cfg.Retrieval.Estimator == "" {
		cfg.Retrieval.Estimator = EstimatorHeuristic
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Storage.Redis.DB = db
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && cfg.Storage.Postgres != nil {
		cfg.Storage.Postgres.ConnString = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && cfg.Embedding.OpenAI != nil {
		cfg.Embedding.OpenAI.BaseURL = v
	}
	if v := os.Getenv("COURSECTX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
