package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent braid configuration stored as config.toml
// in the .braid/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version      int                `toml:"version"`
	Storage      StorageConfig      `toml:"storage"`
	Engine       EngineConfig       `toml:"engine"`
	Embedding    EmbeddingConfig    `toml:"embedding"`
	Judge        JudgeConfig        `toml:"judge"`
	API          APIConfig          `toml:"api"`
	MCP          MCPConfig          `toml:"mcp"`
	Eventstream  EventstreamConfig  `toml:"eventstream"`
	Preprocessor PreprocessorConfig `toml:"preprocessor"`
}

// StorageConfig holds the event store settings.
type StorageConfig struct {
	// DBPath is the SQLite database file, or ":memory:".
	DBPath string `toml:"db_path,omitempty"`
}

// EngineConfig holds the memory engine knobs.
type EngineConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold,omitempty"`
	SoftLinkThreshold   float64 `toml:"soft_link_threshold,omitempty"`
	MaxPotentialCauses  int     `toml:"max_potential_causes,omitempty"`
	TimeDecayHours      int     `toml:"time_decay_hours,omitempty"`
	MaxConsequenceDepth int     `toml:"max_consequence_depth,omitempty"`
	EmbeddingCacheSize  int     `toml:"embedding_cache_size,omitempty"`

	// ExternalTimeoutSecs bounds each embedder/judge call.
	ExternalTimeoutSecs int `toml:"external_timeout_secs,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// JudgeConfig holds causality judge settings.
type JudgeConfig struct {
	Provider    string  `toml:"provider,omitempty"`
	Target      string  `toml:"target,omitempty"`
	Model       string  `toml:"model,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	APIKey      string  `toml:"api_key,omitempty"`
}

// APIConfig holds REST server settings.
type APIConfig struct {
	Listen                string `toml:"listen,omitempty"`
	APIKey                string `toml:"api_key,omitempty"`
	CORSOrigins           string `toml:"cors_origins,omitempty"`
	RateLimitEventsPerMin int    `toml:"rate_limit_events_per_min,omitempty"`
	RateLimitQueryPerMin  int    `toml:"rate_limit_query_per_min,omitempty"`
}

// MCPConfig holds tool-protocol server settings.
type MCPConfig struct {
	// Port selects the transport: a positive port binds the SSE HTTP
	// server; zero means stdio.
	Port int `toml:"port,omitempty"`
}

// EventstreamConfig holds persisted-event notification settings.
type EventstreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// PreprocessorConfig holds query preprocessor settings.
type PreprocessorConfig struct {
	Enabled             bool    `toml:"enabled,omitempty"`
	ConfidenceThreshold float64 `toml:"confidence_threshold,omitempty"`
	SuggestionTopK      int     `toml:"suggestion_top_k,omitempty"`
}

// keyInfo binds a dotted config key to typed get/set accessors.
type keyInfo struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringKey(get func(*Config) *string) keyInfo {
	return keyInfo{
		get: func(c *Config) string { return *get(c) },
		set: func(c *Config, v string) error {
			*get(c) = v
			return nil
		},
	}
}

func intKey(get func(*Config) *int) keyInfo {
	return keyInfo{
		get: func(c *Config) string { return strconv.Itoa(*get(c)) },
		set: func(c *Config, v string) error {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected integer, got %q", v)
			}
			*get(c) = parsed
			return nil
		},
	}
}

func floatKey(get func(*Config) *float64) keyInfo {
	return keyInfo{
		get: func(c *Config) string { return strconv.FormatFloat(*get(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("expected number, got %q", v)
			}
			*get(c) = parsed
			return nil
		},
	}
}

func boolKey(get func(*Config) *bool) keyInfo {
	return keyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*get(c)) },
		set: func(c *Config, v string) error {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected boolean, got %q", v)
			}
			*get(c) = parsed
			return nil
		},
	}
}

// configKeys is the registry of user-settable configuration keys.
var configKeys = map[string]keyInfo{
	"storage.db_path":              stringKey(func(c *Config) *string { return &c.Storage.DBPath }),
	"engine.similarity_threshold":  floatKey(func(c *Config) *float64 { return &c.Engine.SimilarityThreshold }),
	"engine.soft_link_threshold":   floatKey(func(c *Config) *float64 { return &c.Engine.SoftLinkThreshold }),
	"engine.max_potential_causes":  intKey(func(c *Config) *int { return &c.Engine.MaxPotentialCauses }),
	"engine.time_decay_hours":      intKey(func(c *Config) *int { return &c.Engine.TimeDecayHours }),
	"engine.max_consequence_depth": intKey(func(c *Config) *int { return &c.Engine.MaxConsequenceDepth }),
	"engine.embedding_cache_size":  intKey(func(c *Config) *int { return &c.Engine.EmbeddingCacheSize }),
	"engine.external_timeout_secs": intKey(func(c *Config) *int { return &c.Engine.ExternalTimeoutSecs }),
	"embedding.provider":           stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":             stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":              stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"judge.provider":               stringKey(func(c *Config) *string { return &c.Judge.Provider }),
	"judge.target":                 stringKey(func(c *Config) *string { return &c.Judge.Target }),
	"judge.model":                  stringKey(func(c *Config) *string { return &c.Judge.Model }),
	"judge.temperature":            floatKey(func(c *Config) *float64 { return &c.Judge.Temperature }),
	"api.listen":                   stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.cors_origins":             stringKey(func(c *Config) *string { return &c.API.CORSOrigins }),
	"api.rate_limit_events_per_min": intKey(func(c *Config) *int {
		return &c.API.RateLimitEventsPerMin
	}),
	"api.rate_limit_query_per_min": intKey(func(c *Config) *int {
		return &c.API.RateLimitQueryPerMin
	}),
	"mcp.port":             intKey(func(c *Config) *int { return &c.MCP.Port }),
	"eventstream.provider": stringKey(func(c *Config) *string { return &c.Eventstream.Provider }),
	"eventstream.brokers":  stringKey(func(c *Config) *string { return &c.Eventstream.Brokers }),
	"eventstream.topic":    stringKey(func(c *Config) *string { return &c.Eventstream.Topic }),
	"preprocessor.enabled": boolKey(func(c *Config) *bool { return &c.Preprocessor.Enabled }),
	"preprocessor.confidence_threshold": floatKey(func(c *Config) *float64 {
		return &c.Preprocessor.ConfidenceThreshold
	}),
	"preprocessor.suggestion_top_k": intKey(func(c *Config) *int { return &c.Preprocessor.SuggestionTopK }),
}
