package config

// Default values for the engine knobs. defaults.go is the single source of
// truth: viper defaults, TOML merging, and flag help all read from here.
const (
	DefaultDBPath              = "causal_memory.db"
	DefaultSimilarityThreshold = 0.5
	DefaultSoftLinkThreshold   = 0.85
	DefaultMaxPotentialCauses  = 5
	DefaultTimeDecayHours      = 24
	DefaultConsequenceDepth    = 2
	DefaultEmbeddingCacheSize  = 1000
	DefaultExternalTimeoutSecs = 10

	DefaultEmbeddingProvider = "ollama"
	DefaultEmbeddingTarget   = "http://localhost:11434"
	DefaultEmbeddingModel    = "all-MiniLM-L6-v2"
	DefaultEmbeddingDims     = 384

	DefaultJudgeProvider    = "openai"
	DefaultJudgeModel       = "gpt-3.5-turbo"
	DefaultJudgeTemperature = 0.1

	DefaultAPIListen         = ":8000"
	DefaultCORSOrigins       = "*"
	DefaultRateLimitEvents   = 60
	DefaultRateLimitQueries  = 120
	DefaultEventstreamDriver = "nop"
)

// NewDefaultConfig returns a fully-populated Config with sane defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			DBPath: DefaultDBPath,
		},
		Engine: EngineConfig{
			SimilarityThreshold: DefaultSimilarityThreshold,
			SoftLinkThreshold:   DefaultSoftLinkThreshold,
			MaxPotentialCauses:  DefaultMaxPotentialCauses,
			TimeDecayHours:      DefaultTimeDecayHours,
			MaxConsequenceDepth: DefaultConsequenceDepth,
			EmbeddingCacheSize:  DefaultEmbeddingCacheSize,
			ExternalTimeoutSecs: DefaultExternalTimeoutSecs,
		},
		Embedding: EmbeddingConfig{
			Provider:   DefaultEmbeddingProvider,
			Target:     DefaultEmbeddingTarget,
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultEmbeddingDims,
		},
		Judge: JudgeConfig{
			Provider:    DefaultJudgeProvider,
			Model:       DefaultJudgeModel,
			Temperature: DefaultJudgeTemperature,
		},
		API: APIConfig{
			Listen:                DefaultAPIListen,
			CORSOrigins:           DefaultCORSOrigins,
			RateLimitEventsPerMin: DefaultRateLimitEvents,
			RateLimitQueryPerMin:  DefaultRateLimitQueries,
		},
		Eventstream: EventstreamConfig{
			Provider: DefaultEventstreamDriver,
		},
	}
}
