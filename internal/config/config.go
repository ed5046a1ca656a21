package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the slatesearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding runtime and producer settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // openai, ollama (default: openai)
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"` // 0 learns the size from the model
	QueryInstruction string `yaml:"query_instruction"`
	PoolSize         int    `yaml:"pool_size"`
	MaxBatchSize     int    `yaml:"max_batch_size"` // texts per runtime request
	InitTimeoutSec   int    `yaml:"init_timeout_sec"`
	CacheDisabled    bool   `yaml:"cache_disabled"` // ingestion vector cache
}

// SearchConfig holds query fan-out settings.
type SearchConfig struct {
	TopK            int    `yaml:"top_k"`
	LookupTimeoutMs int    `yaml:"lookup_timeout_ms"`
	Relevance       string `yaml:"relevance"` // distance, similarity (default: distance)
}

// IndexConfig holds vector index and ingestion settings.
type IndexConfig struct {
	Algorithm       string `yaml:"algorithm"` // HNSW, FLAT (default: HNSW)
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	BatchSize       int    `yaml:"batch_size"` // records embedded and stored together
}

// LookupTimeout returns the per-kind lookup bound.
func (s SearchConfig) LookupTimeout() time.Duration {
	return time.Duration(s.LookupTimeoutMs) * time.Millisecond
}

// StorageConfig holds key space settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "BAAI/bge-large-en-v1.5"
	}
	if c.Embedding.PoolSize <= 0 {
		c.Embedding.PoolSize = 4
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 32
	}
	if c.Embedding.InitTimeoutSec <= 0 {
		c.Embedding.InitTimeoutSec = 120
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 10
	}
	if c.Search.LookupTimeoutMs <= 0 {
		c.Search.LookupTimeoutMs = 2000
	}
	if c.Search.Relevance == "" {
		c.Search.Relevance = "distance"
	}
	if c.Index.Algorithm == "" {
		c.Index.Algorithm = "HNSW"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 64
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "slate:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"ollama\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	switch c.Search.Relevance {
	case "distance", "similarity":
	default:
		return fmt.Errorf("search.relevance must be \"distance\" or \"similarity\", got %q", c.Search.Relevance)
	}
	switch c.Index.Algorithm {
	case "HNSW", "FLAT":
	default:
		return fmt.Errorf("index.algorithm must be \"HNSW\" or \"FLAT\", got %q", c.Index.Algorithm)
	}
	if !strings.HasSuffix(c.Storage.KeyPrefix, ":") {
		return fmt.Errorf("storage.key_prefix must end with \":\", got %q", c.Storage.KeyPrefix)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
