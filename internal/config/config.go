// Package config loads and persists engine configuration.
//
// Precedence, highest to lowest: explicit CLI flags (applied by the
// caller after Load), environment variables (GENOME_-prefixed or a
// handful of well-known names), config file, built-in defaults. The
// OS keychain is consulted for the LLM API key only, and only when
// neither LLM_API_KEY nor the config file supplies one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all engine configuration.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	API     APIConfig     `yaml:"api"`
	Engine  EngineConfig  `yaml:"engine"`
	Query   QueryConfig   `yaml:"query"`
	Context ContextConfig `yaml:"context"`
	Serving ServingConfig `yaml:"serving"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Directory      string        `yaml:"directory"`
	TTL            time.Duration `yaml:"ttl"`
	MaxEntries     int           `yaml:"max_entries"`
	SharedCacheURL string        `yaml:"shared_cache_url"` // optional redis:// address
}

// APIConfig configures the optional LLM capability consumed by IntentAtlas,
// and the optional GitHub-hosted HistorySource consumed by ChronoMap
// when no local git checkout is available.
type APIConfig struct {
	LLMModel    string `yaml:"llm_model"`
	LLMKey      string `yaml:"llm_key"`
	LLMBaseURL  string `yaml:"llm_base_url"`
	UseKeychain bool   `yaml:"use_keychain"`

	GitHubToken   string `yaml:"github_token"`
	GitHubRepoRPS int    `yaml:"github_rps"`
}

// EngineConfig configures the structural extractor and incremental coordinator.
type EngineConfig struct {
	Workers          int             `yaml:"workers"`
	MaxSummaryLen    int             `yaml:"max_summary_len"`
	IgnorePatterns   []string        `yaml:"ignore_patterns"`
	LegacyPatterns   []string        `yaml:"legacy_patterns"`
	SchemaVersion    string          `yaml:"schema_version"`
	EnabledSubsystem map[string]bool `yaml:"enabled_subsystems"`
}

// QueryConfig configures the query/filter engine's defaults and caching.
type QueryConfig struct {
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`
}

// ContextConfig configures the context assembler's default token budget.
type ContextConfig struct {
	DefaultBudgetTokens int    `yaml:"default_budget_tokens"`
	SessionStorePath    string `yaml:"session_store_path"`
}

// ServingConfig configures the stdio transport and Agent Contract.
type ServingConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Cache: CacheConfig{
			Directory:  filepath.Join(homeDir, ".repogenome", "cache"),
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		API: APIConfig{
			LLMModel:      "gpt-4o-mini",
			GitHubRepoRPS: 1,
		},
		Engine: EngineConfig{
			Workers:       0, // 0 = spider's default of 4 workers
			MaxSummaryLen: 500,
			IgnorePatterns: []string{
				".git", "node_modules", "vendor", "venv", "__pycache__",
				".next", "dist", "build", "out", "target", ".cache",
				"coverage", ".pytest_cache", ".tox", ".venv", ".idea", ".vscode",
			},
			SchemaVersion: "1.0",
			EnabledSubsystem: map[string]bool{
				"flowweaver":   true,
				"intentatlas":  true,
				"chronomap":    true,
				"contractlens": true,
				"testgalaxy":   true,
				"risklens":     true,
			},
		},
		Query: QueryConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 1000,
		},
		Context: ContextConfig{
			DefaultBudgetTokens: 8000,
			SessionStorePath:    filepath.Join(homeDir, ".repogenome", "sessions.bbolt"),
		},
		Serving: ServingConfig{
			DefaultTimeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from file, environment, and keychain.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("api", cfg.API)
	v.SetDefault("engine", cfg.Engine)
	v.SetDefault("query", cfg.Query)
	v.SetDefault("context", cfg.Context)
	v.SetDefault("serving", cfg.Serving)

	v.SetEnvPrefix("GENOME")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("genome")
		v.AddConfigPath(".repogenome")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".repogenome"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".repogenome", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.API.LLMKey = key
	} else if cfg.API.LLMKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if keychainKey, err := km.GetAPIKey(); err == nil && keychainKey != "" {
				cfg.API.LLMKey = keychainKey
			}
		}
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.API.LLMModel = model
	}
	if url := os.Getenv("LLM_BASE_URL"); url != "" {
		cfg.API.LLMBaseURL = url
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.API.GitHubToken = token
	}

	if dir := os.Getenv("CACHE_DIRECTORY"); dir != "" {
		cfg.Cache.Directory = expandPath(dir)
	}
	if url := os.Getenv("SHARED_CACHE_URL"); url != "" {
		cfg.Cache.SharedCacheURL = url
	}

	if workers := os.Getenv("ENGINE_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Engine.Workers = n
		}
	}
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("cache", c.Cache)
	v.Set("api", c.API)
	v.Set("engine", c.Engine)
	v.Set("query", c.Query)
	v.Set("context", c.Context)
	v.Set("serving", c.Serving)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
