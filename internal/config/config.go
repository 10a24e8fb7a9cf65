package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type YelpConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type PlacesConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type DirectoryConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

type ConcurrencyConfig struct {
	EnhanceFanout int `toml:"enhance_fanout"`
	IngestBatch   int `toml:"ingest_batch"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Neo4j       Neo4jConfig       `toml:"neo4j"`
	Yelp        YelpConfig        `toml:"yelp"`
	Places      PlacesConfig      `toml:"places"`
	Directory   DirectoryConfig   `toml:"directory"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a config usable without a file on disk; env overrides are
// applied by the server bootstrap.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Neo4j.URI == "" {
		c.Neo4j.URI = "bolt://localhost:7687"
	}
	if c.Yelp.BaseURL == "" {
		c.Yelp.BaseURL = "https://api.yelp.com/v3"
	}
	if c.Places.BaseURL == "" {
		c.Places.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if c.Directory.BaseURL == "" {
		c.Directory.BaseURL = "https://tabelog.com"
	}
	if c.Directory.TimeoutSeconds <= 0 {
		c.Directory.TimeoutSeconds = 15
	}
	if c.Directory.RequestsPerSec <= 0 {
		c.Directory.RequestsPerSec = 1
	}
	if c.Concurrency.EnhanceFanout <= 0 {
		c.Concurrency.EnhanceFanout = 4
	}
	if c.Concurrency.IngestBatch <= 0 {
		c.Concurrency.IngestBatch = 1000
	}
}

// DirectoryTimeout returns the outbound call timeout for the scraped source.
func (c *Config) DirectoryTimeout() time.Duration {
	return time.Duration(c.Directory.TimeoutSeconds) * time.Second
}
