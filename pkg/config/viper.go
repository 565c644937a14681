package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/braidhq/braid/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the commands)
//  2. Environment variables (BRAID_API_LISTEN etc., plus the historical
//     flat names like DB_PATH and SIMILARITY_THRESHOLD)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: BRAID_STORAGE_DB_PATH, BRAID_API_LISTEN, etc.
	v.SetEnvPrefix("BRAID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Historical flat names recognized for deployment compatibility.
	bindFlatEnvNames(v)

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.db_path", d.Storage.DBPath)

	// Engine
	v.SetDefault("engine.similarity_threshold", d.Engine.SimilarityThreshold)
	v.SetDefault("engine.soft_link_threshold", d.Engine.SoftLinkThreshold)
	v.SetDefault("engine.max_potential_causes", d.Engine.MaxPotentialCauses)
	v.SetDefault("engine.time_decay_hours", d.Engine.TimeDecayHours)
	v.SetDefault("engine.max_consequence_depth", d.Engine.MaxConsequenceDepth)
	v.SetDefault("engine.embedding_cache_size", d.Engine.EmbeddingCacheSize)
	v.SetDefault("engine.external_timeout_secs", d.Engine.ExternalTimeoutSecs)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Judge
	v.SetDefault("judge.provider", d.Judge.Provider)
	v.SetDefault("judge.target", d.Judge.Target)
	v.SetDefault("judge.model", d.Judge.Model)
	v.SetDefault("judge.temperature", d.Judge.Temperature)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.cors_origins", d.API.CORSOrigins)
	v.SetDefault("api.rate_limit_events_per_min", d.API.RateLimitEventsPerMin)
	v.SetDefault("api.rate_limit_query_per_min", d.API.RateLimitQueryPerMin)

	// MCP
	v.SetDefault("mcp.port", 0)

	// Eventstream
	v.SetDefault("eventstream.provider", d.Eventstream.Provider)

	// Preprocessor
	v.SetDefault("preprocessor.enabled", false)
}

// bindFlatEnvNames binds the historical flat environment names so existing
// deployments keep working unchanged.
func bindFlatEnvNames(v *viper.Viper) {
	flat := map[string]string{
		"storage.db_path":               "DB_PATH",
		"embedding.model":               "EMBEDDING_MODEL",
		"judge.model":                   "LLM_MODEL",
		"judge.temperature":             "LLM_TEMPERATURE",
		"engine.similarity_threshold":   "SIMILARITY_THRESHOLD",
		"engine.soft_link_threshold":    "SOFT_LINK_THRESHOLD",
		"engine.max_potential_causes":   "MAX_POTENTIAL_CAUSES",
		"engine.time_decay_hours":       "TIME_DECAY_HOURS",
		"engine.max_consequence_depth":  "MAX_CONSEQUENCE_DEPTH",
		"engine.embedding_cache_size":   "EMBEDDING_CACHE_SIZE",
		"api.api_key":                   "API_KEY",
		"api.cors_origins":              "CORS_ORIGINS",
		"api.rate_limit_events_per_min": "RATE_LIMIT_EVENTS_PER_MIN",
		"api.rate_limit_query_per_min":  "RATE_LIMIT_QUERY_PER_MIN",
		"mcp.port":                      "PORT",
	}

	for key, env := range flat {
		// BindEnv keeps the BRAID_-prefixed name as the primary binding.
		v.BindEnv(key, "BRAID_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env)
	}
}

// FromViper materialises a Config from the resolved viper state.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			DBPath: v.GetString("storage.db_path"),
		},
		Engine: EngineConfig{
			SimilarityThreshold: v.GetFloat64("engine.similarity_threshold"),
			SoftLinkThreshold:   v.GetFloat64("engine.soft_link_threshold"),
			MaxPotentialCauses:  v.GetInt("engine.max_potential_causes"),
			TimeDecayHours:      v.GetInt("engine.time_decay_hours"),
			MaxConsequenceDepth: v.GetInt("engine.max_consequence_depth"),
			EmbeddingCacheSize:  v.GetInt("engine.embedding_cache_size"),
			ExternalTimeoutSecs: v.GetInt("engine.external_timeout_secs"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		Judge: JudgeConfig{
			Provider:    v.GetString("judge.provider"),
			Target:      v.GetString("judge.target"),
			Model:       v.GetString("judge.model"),
			Temperature: v.GetFloat64("judge.temperature"),
			APIKey:      v.GetString("judge.api_key"),
		},
		API: APIConfig{
			Listen:                v.GetString("api.listen"),
			APIKey:                v.GetString("api.api_key"),
			CORSOrigins:           v.GetString("api.cors_origins"),
			RateLimitEventsPerMin: v.GetInt("api.rate_limit_events_per_min"),
			RateLimitQueryPerMin:  v.GetInt("api.rate_limit_query_per_min"),
		},
		MCP: MCPConfig{
			Port: v.GetInt("mcp.port"),
		},
		Eventstream: EventstreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetString("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
		Preprocessor: PreprocessorConfig{
			Enabled:             v.GetBool("preprocessor.enabled"),
			ConfidenceThreshold: v.GetFloat64("preprocessor.confidence_threshold"),
			SuggestionTopK:      v.GetInt("preprocessor.suggestion_top_k"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
