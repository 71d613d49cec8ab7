package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Summaries)
	assert.Equal(t, BackendMemory, cfg.Storage.Details)
	assert.Equal(t, EmbedderMock, cfg.Embedding.Type)
	assert.Equal(t, 256, cfg.Embedding.Dimension)
	assert.Equal(t, 10, cfg.Retrieval.SummaryLimit)
	assert.Equal(t, 3, cfg.Retrieval.DetailLimit)
	assert.Equal(t, 4000, cfg.Retrieval.MaxTokens)
	assert.Equal(t, EstimatorHeuristic, cfg.Retrieval.Estimator)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
storage:
  summaries: redis
  details: sqlite
  sqlite:
    path: /tmp/courses.db
embedding:
  type: openai
retrieval:
  detail_limit: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "coursectx:", cfg.Storage.Redis.Prefix)
	assert.Equal(t, "course_details", cfg.Storage.SQLite.Table)
	assert.Equal(t, 1536, cfg.Embedding.Dimension)
	require.NotNil(t, cfg.Embedding.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedding.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.OpenAI.Model)
	assert.Equal(t, 5, cfg.Retrieval.DetailLimit)
	assert.Equal(t, 10, cfg.Retrieval.SummaryLimit)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "storage: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	unsetEnv(t, "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "COURSECTX_LOG_LEVEL", "TEST_OPENAI_KEY")
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", `
REDIS_ADDR=redis.internal:6380
REDIS_PASSWORD=secret
REDIS_DB=2
COURSECTX_LOG_LEVEL=debug
TEST_OPENAI_KEY=sk-test
`)
	path := writeFile(t, dir, "config.yaml", `
storage:
  summaries: redis
embedding:
  type: openai
  openai:
    api_key_env: TEST_OPENAI_KEY
`)

	cfg, err := LoadWithEnv(path, envPath)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, "secret", cfg.Storage.Redis.Password)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, BackendRedis, cfg.Storage.Details)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.Embedding.OpenAI.APIKey())
}

func TestLoadWithEnv_MissingEnvFileIgnored(t *testing.T) {
	unsetEnv(t, "REDIS_ADDR", "REDIS_DB")
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "none.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
}

func TestLoadWithEnv_BadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "none.yaml"), filepath.Join(t.TempDir(), ".env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY")

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown summary backend", func(c *Config) { c.Storage.Summaries = "qdrant" }},
		{"unknown details backend", func(c *Config) { c.Storage.Details = "s3" }},
		{"postgres without conn string", func(c *Config) { c.Storage.Details = BackendPostgres }},
		{"sqlite without path", func(c *Config) { c.Storage.Details = BackendSQLite }},
		{"openai without key", func(c *Config) {
			c.Embedding.Type = EmbedderOpenAI
			c.Embedding.OpenAI = &OpenAIConfig{APIKeyEnv: "OPENAI_API_KEY"}
		}},
		{"openai without section", func(c *Config) {
			c.Embedding.Type = EmbedderOpenAI
			c.Embedding.OpenAI = nil
		}},
		{"langchain without provider", func(c *Config) { c.Embedding.Type = EmbedderLangChain }},
		{"zero dimension", func(c *Config) { c.Embedding.Dimension = 0 }},
		{"unknown estimator", func(c *Config) { c.Retrieval.Estimator = "words" }},
		{"zero summary limit", func(c *Config) { c.Retrieval.SummaryLimit = 0 }},
		{"negative detail limit", func(c *Config) { c.Retrieval.DetailLimit = -1 }},
		{"zero max tokens", func(c *Config) { c.Retrieval.MaxTokens = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Retrieval.MaxTokens = 1234

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
