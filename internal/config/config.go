package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talentlink/matchengine/internal/augment"
	"github.com/talentlink/matchengine/pkg/ollama"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Workers       int           `yaml:"workers"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	Augment       AugmentConfig `yaml:"augment"`
	Ollama        OllamaConfig  `yaml:"ollama"`
}

// AugmentConfig controls the optional LLM analysis pass. An empty model
// name disables augmentation entirely.
type AugmentConfig struct {
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence float64       `yaml:"min_confidence"`
}

type OllamaConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("MATCHD_ADDR", ":8080"),
		JWTSecret:     getEnv("MATCHD_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("MATCHD_DATABASE_PATH", "matchengine.db"),
		TokenDuration: 1 * time.Hour,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration and populates defaults for
// fields the file left unset.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.JWTSecret == "" || c.JWTSecret == "supersecretkey" {
		if os.Getenv("MATCHD_ENV") != "development" {
			return fmt.Errorf("jwt_secret must be set to a strong value outside development")
		}
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 1 * time.Hour
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Augment.Timeout <= 0 {
		c.Augment.Timeout = 20 * time.Second
	}
	if c.Augment.MinConfidence <= 0 {
		c.Augment.MinConfidence = 0.5
	}

	def := ollama.DefaultConfig()
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = def.BaseURL
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = def.Timeout
	}
	if c.Ollama.Retries == 0 {
		c.Ollama.Retries = def.Retries
	}
	if c.Ollama.Backoff <= 0 {
		c.Ollama.Backoff = def.Backoff
	}
	if c.Ollama.CircuitFailureThreshold <= 0 {
		c.Ollama.CircuitFailureThreshold = def.CircuitFailureThreshold
	}
	if c.Ollama.CircuitReset <= 0 {
		c.Ollama.CircuitReset = def.CircuitReset
	}

	return nil
}

// OllamaClientConfig converts the YAML ollama section into the client's
// own config type.
func (c *Config) OllamaClientConfig() ollama.Config {
	return ollama.Config{
		BaseURL:                 c.Ollama.BaseURL,
		Timeout:                 c.Ollama.Timeout,
		Retries:                 c.Ollama.Retries,
		Backoff:                 c.Ollama.Backoff,
		CircuitFailureThreshold: c.Ollama.CircuitFailureThreshold,
		CircuitReset:            c.Ollama.CircuitReset,
	}
}

// AugmentEngineConfig converts the YAML augment section into the
// analysis engine's config type.
func (c *Config) AugmentEngineConfig() augment.Config {
	return augment.Config{
		Model:         c.Augment.Model,
		Timeout:       c.Augment.Timeout,
		MinConfidence: c.Augment.MinConfidence,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
