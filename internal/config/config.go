package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/qacache/internal/domain"
)

// Config holds the qacache configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Cache      CacheConfig      `yaml:"cache"`
	Session    SessionConfig    `yaml:"session"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// EmbeddingConfig holds the embedding provider and model.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"`
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	CacheTTLSec         int          `yaml:"cache_ttl_sec"` // 0 disables the embedding cache
	Budget              BudgetConfig `yaml:"budget"`
}

// GenerationConfig holds the chat model used on cache misses.
type GenerationConfig struct {
	Provider     string       `yaml:"provider"`
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	Model        string       `yaml:"model"`
	Temperature  float32      `yaml:"temperature"`
	MaxTokens    int          `yaml:"max_tokens"`
	TimeoutSec   int          `yaml:"timeout_sec"`
	SystemPrompt string       `yaml:"system_prompt"`
	Budget       BudgetConfig `yaml:"budget"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Cache modes.
const (
	ModeStateless      = "stateless"
	ModeConversational = "conversational"
)

// CacheConfig tunes lookup, acceptance and storage of answers.
type CacheConfig struct {
	Mode              string   `yaml:"mode"` // stateless (default) | conversational
	ThresholdPercent  float64  `yaml:"threshold_percent"`
	MinQuestionLength int      `yaml:"min_question_length"`
	MaxWords          int      `yaml:"max_words"`
	TopK              int      `yaml:"top_k"`
	BypassKeywords    []string `yaml:"bypass_keywords"`
	EmbedSource       string   `yaml:"embed_source"` // answer (default) | question
	HNSWM             int      `yaml:"hnsw_m"`
	HNSWEFConstruct   int      `yaml:"hnsw_ef_construction"`
}

// Session stores.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// SessionConfig holds conversational transcript settings.
type SessionConfig struct {
	Store       string `yaml:"store"` // memory (default) | redis
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	MaxMessages int    `yaml:"max_messages"`
	TTLSec      int    `yaml:"ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = c.Embedding.Provider
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}

	if c.Cache.Mode == "" {
		c.Cache.Mode = ModeStateless
	}
	if c.Cache.ThresholdPercent == 0 {
		c.Cache.ThresholdPercent = 75
	}
	if c.Cache.MinQuestionLength == 0 {
		c.Cache.MinQuestionLength = 5
	}
	if c.Cache.MaxWords == 0 {
		c.Cache.MaxWords = 80
	}
	if c.Cache.TopK <= 0 {
		c.Cache.TopK = 1
	}
	if c.Cache.EmbedSource == "" {
		c.Cache.EmbedSource = "answer"
	}
	if c.Cache.HNSWM <= 0 {
		c.Cache.HNSWM = vec.HNSWM
	}
	if c.Cache.HNSWEFConstruct <= 0 {
		c.Cache.HNSWEFConstruct = vec.EFConstruction
	}

	if c.Session.Store == "" {
		c.Session.Store = SessionStoreMemory
	}
	if c.Session.MaxMessages == 0 {
		c.Session.MaxMessages = 20
	}
	if c.Session.TTLSec == 0 {
		c.Session.TTLSec = 3600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if err := validateBudget("embedding", c.Embedding.Budget); err != nil {
		return err
	}
	if c.Generation.RateLimitRPS < 0 {
		return fmt.Errorf("generation.rate_limit_rps must be >= 0, got %v", c.Generation.RateLimitRPS)
	}
	if err := validateBudget("generation", c.Generation.Budget); err != nil {
		return err
	}

	switch c.Cache.Mode {
	case ModeStateless, ModeConversational:
	default:
		return fmt.Errorf("cache.mode must be %q or %q, got %q", ModeStateless, ModeConversational, c.Cache.Mode)
	}
	if c.Cache.ThresholdPercent < 0 || c.Cache.ThresholdPercent > 100 {
		return fmt.Errorf("cache.threshold_percent must be between 0 and 100, got %v", c.Cache.ThresholdPercent)
	}
	if c.Cache.MinQuestionLength < 0 {
		return fmt.Errorf("cache.min_question_length must not be negative, got %d", c.Cache.MinQuestionLength)
	}
	switch c.Cache.EmbedSource {
	case "answer", "question":
	default:
		return fmt.Errorf("cache.embed_source must be \"answer\" or \"question\", got %q", c.Cache.EmbedSource)
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Session.Addr == "" {
			return fmt.Errorf("session.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("session.store must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store)
	}
	return nil
}

func validateBudget(section string, b BudgetConfig) error {
	switch b.Action {
	case "", "warn", "reject":
		return nil
	default:
		return fmt.Errorf("%s.budget.action must be \"warn\" or \"reject\", got %q", section, b.Action)
	}
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
