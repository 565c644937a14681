// Package memoryutils is the memory engine utility package
package memoryutils

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/config"
	embeddingutils "github.com/braidhq/braid/pkg/embeddings/utils"
	"github.com/braidhq/braid/pkg/eventstream"
	"github.com/braidhq/braid/pkg/eventstream/kafka"
	"github.com/braidhq/braid/pkg/eventstream/nop"
	judgeutils "github.com/braidhq/braid/pkg/judge/utils"
	"github.com/braidhq/braid/pkg/memory"
	"github.com/braidhq/braid/pkg/storage"
	"github.com/braidhq/braid/pkg/storage/inmemory"
	"github.com/braidhq/braid/pkg/storage/sqlite"
)

// NewCoreFromConfig wires a memory core from the resolved configuration:
// store, embedder, judge, and eventstream publisher.
func NewCoreFromConfig(cfg *config.Config, logger *zap.Logger) (*memory.Core, error) {
	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Engine.ExternalTimeoutSecs) * time.Second

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Timeout:      timeout,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	judger, err := judgeutils.NewJudge(&judgeutils.NewJudgeOpts{
		ProviderType: cfg.Judge.Provider,
		TargetURL:    cfg.Judge.Target,
		Model:        cfg.Judge.Model,
		APIKey:       cfg.Judge.APIKey,
		Temperature:  cfg.Judge.Temperature,
		Timeout:      timeout,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating judge: %w", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	core := memory.NewCore(memory.Config{
		Store:               store,
		Embedder:            embedder,
		Judge:               judger,
		Publisher:           publisher,
		Logger:              logger,
		SimilarityThreshold: cfg.Engine.SimilarityThreshold,
		SoftLinkThreshold:   cfg.Engine.SoftLinkThreshold,
		MaxPotentialCauses:  cfg.Engine.MaxPotentialCauses,
		TimeDecayHours:      cfg.Engine.TimeDecayHours,
		MaxConsequenceDepth: cfg.Engine.MaxConsequenceDepth,
		ExternalTimeout:     timeout,
		EmbeddingCacheSize:  cfg.Engine.EmbeddingCacheSize,
	})

	return core, nil
}

func newStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.Storage.DBPath == "" {
		logger.Info("using in-memory event store")
		return inmemory.New(), nil
	}

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("creating sqlite store: %w", err)
	}

	logger.Info("using SQLite event store", zap.String("path", cfg.Storage.DBPath))
	return store, nil
}

func newPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	switch cfg.Eventstream.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		brokers := strings.Split(cfg.Eventstream.Brokers, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		return kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   cfg.Eventstream.Topic,
		})
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", cfg.Eventstream.Provider)
	}
}
