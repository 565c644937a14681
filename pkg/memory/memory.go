// Package memory implements the causal memory engine: events are embedded,
// linked to their most plausible direct cause, persisted append-only, and
// retrieved as chronological narratives by walking the causal chain.
//
// The [Core] facade is safe for concurrent use. External collaborators
// (embedder, judge) are capabilities injected at construction; tests supply
// deterministic stand-ins.
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/embeddings"
	embcache "github.com/braidhq/braid/pkg/embeddings/cache"
	"github.com/braidhq/braid/pkg/event"
	"github.com/braidhq/braid/pkg/eventstream"
	"github.com/braidhq/braid/pkg/eventstream/nop"
	"github.com/braidhq/braid/pkg/judge"
	"github.com/braidhq/braid/pkg/storage"
)

// NoContextFound is the canonical reply when no stored event matches a query.
const NoContextFound = "No relevant context found in memory."

// SoftLinkRelationship is the fixed phrase recorded for similarity-only links.
const SoftLinkRelationship = "(These events represent sequential steps in the same workflow.)"

const (
	defaultSimilarityThreshold = 0.5
	defaultSoftLinkThreshold   = 0.85
	defaultMaxPotentialCauses  = 5
	defaultTimeDecayHours      = 24
	defaultConsequenceDepth    = 2
	defaultExternalTimeout     = 10 * time.Second
	defaultCandidatePoolLimit  = 50
)

// Config is the configuration options for the memory core.
type Config struct {
	// Store is the durable event backend.
	Store storage.Store

	// Embedder converts text to vectors. The core wraps it in an LRU cache.
	Embedder embeddings.Embedder

	// Judge decides causality between event pairs. Judge failures are
	// absorbed; they can only downgrade a link, never fail an insert.
	Judge judge.Judge

	// Publisher receives persisted-event notifications. Optional; nil
	// disables publishing.
	Publisher eventstream.Publisher

	// Logger is the configured zap logger.
	Logger *zap.Logger

	// SimilarityThreshold is the candidate and anchor cosine cutoff.
	// Zero means the default (0.5).
	SimilarityThreshold float64

	// SoftLinkThreshold is the similarity-only fallback-link cutoff.
	// Zero means the default (0.85).
	SoftLinkThreshold float64

	// MaxPotentialCauses caps the candidate list. Zero means the default (5).
	MaxPotentialCauses int

	// TimeDecayHours is the candidate recency window. Zero means the
	// default (24).
	TimeDecayHours int

	// MaxConsequenceDepth bounds forward traversal. Zero means the
	// default (2); negative disables forward extension.
	MaxConsequenceDepth int

	// ExternalTimeout bounds each embedder and judge call. Zero means the
	// default (10s).
	ExternalTimeout time.Duration

	// CandidatePoolLimit caps the recent-window scan. Zero means the
	// default (50).
	CandidatePoolLimit int

	// EmbeddingCacheSize is the LRU capacity. Zero means the cache default.
	EmbeddingCacheSize int
}

// Core is the memory engine facade. It owns the embedding cache and wires
// the store, embedder, and judge together.
type Core struct {
	store     storage.Store
	embedder  *embcache.Cache
	judge     judge.Judge
	publisher eventstream.Publisher
	logger    *zap.Logger

	similarityThreshold float64
	softLinkThreshold   float64
	maxPotentialCauses  int
	timeDecay           time.Duration
	consequenceDepth    int
	externalTimeout     time.Duration
	candidatePoolLimit  int

	now func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// NewCore creates a memory core from the given configuration, applying
// defaults for zero-valued knobs.
func NewCore(c Config) *Core {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaultSimilarityThreshold
	}
	if c.SoftLinkThreshold == 0 {
		c.SoftLinkThreshold = defaultSoftLinkThreshold
	}
	if c.MaxPotentialCauses == 0 {
		c.MaxPotentialCauses = defaultMaxPotentialCauses
	}
	if c.TimeDecayHours == 0 {
		c.TimeDecayHours = defaultTimeDecayHours
	}
	if c.MaxConsequenceDepth == 0 {
		c.MaxConsequenceDepth = defaultConsequenceDepth
	} else if c.MaxConsequenceDepth < 0 {
		c.MaxConsequenceDepth = 0
	}
	if c.ExternalTimeout == 0 {
		c.ExternalTimeout = defaultExternalTimeout
	}
	if c.CandidatePoolLimit == 0 {
		c.CandidatePoolLimit = defaultCandidatePoolLimit
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &Core{
		store:               c.Store,
		embedder:            embcache.New(c.Embedder, c.EmbeddingCacheSize),
		judge:               c.Judge,
		publisher:           c.Publisher,
		logger:              c.Logger,
		similarityThreshold: c.SimilarityThreshold,
		softLinkThreshold:   c.SoftLinkThreshold,
		maxPotentialCauses:  c.MaxPotentialCauses,
		timeDecay:           time.Duration(c.TimeDecayHours) * time.Hour,
		consequenceDepth:    c.MaxConsequenceDepth,
		externalTimeout:     c.ExternalTimeout,
		candidatePoolLimit:  c.CandidatePoolLimit,
		now:                 time.Now,
	}
}

// AddEvent validates, embeds, causally links, and persists a new event,
// returning its assigned id.
//
// Embedder failures surface as KindUnavailable; store failures as
// KindStorage. Judge failures are absorbed: the event is still inserted as a
// root or soft-linked.
func (c *Core) AddEvent(ctx context.Context, effectText string) (int64, error) {
	if err := event.ValidateEffectText(effectText); err != nil {
		return 0, WrapError(KindValidation, "invalid_effect_text", "effect_text failed validation", err)
	}

	embedding, err := c.embed(ctx, effectText)
	if err != nil {
		return 0, WrapError(KindUnavailable, "embedder_unavailable", "embedding service failed", err)
	}

	candidates, err := c.findPotentialCauses(ctx, embedding, effectText)
	if err != nil {
		return 0, WrapError(KindStorage, "candidate_scan_failed", "could not scan candidate events", err)
	}

	causeID, relationship, softLinked := c.linkCause(ctx, effectText, candidates)

	ev, err := c.store.Insert(ctx, effectText, embedding, causeID, relationship)
	if err != nil {
		return 0, WrapError(KindStorage, "insert_failed", "could not persist event", err)
	}

	c.logger.Debug("event added",
		zap.Int64("event_id", ev.ID),
		zap.Bool("linked", causeID != nil),
		zap.Bool("soft_linked", softLinked),
	)

	c.publish(ctx, ev, softLinked)

	return ev.ID, nil
}

// Query validates the query, locates the anchor event, traverses the causal
// chain backward and forward, and returns the assembled narrative.
//
// Traverser anomalies (broken or cyclic chains) degrade to partial
// narratives; they never fail a query.
func (c *Core) Query(ctx context.Context, queryText string) (string, error) {
	if err := event.ValidateQueryText(queryText); err != nil {
		return "", WrapError(KindValidation, "invalid_query", "query failed validation", err)
	}

	embedding, err := c.embed(ctx, queryText)
	if err != nil {
		return "", WrapError(KindUnavailable, "embedder_unavailable", "embedding service failed", err)
	}

	anchor, err := c.findAnchor(ctx, embedding)
	if err != nil {
		return "", WrapError(KindStorage, "anchor_scan_failed", "could not scan events", err)
	}
	if anchor == nil {
		return NoContextFound, nil
	}

	chain := c.buildChain(ctx, anchor)

	return Narrate(chain), nil
}

// GetContext is an exact delegate of Query, kept for compatibility.
func (c *Core) GetContext(ctx context.Context, queryText string) (string, error) {
	return c.Query(ctx, queryText)
}

// Stats reports aggregate counts over the store.
func (c *Core) Stats(ctx context.Context) (storage.Stats, error) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return storage.Stats{}, WrapError(KindStorage, "stats_failed", "could not read store stats", err)
	}
	return stats, nil
}

// Healthy reports whether the store is reachable.
func (c *Core) Healthy(ctx context.Context) bool {
	return c.store.Ping(ctx) == nil
}

// Close shuts the engine down idempotently: collaborators first, then the
// store.
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		if err := c.embedder.Close(); err != nil {
			c.closeErr = err
		}
		if c.judge != nil {
			if err := c.judge.Close(); err != nil && c.closeErr == nil {
				c.closeErr = err
			}
		}
		if err := c.publisher.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
		if err := c.store.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}

// embed resolves text to a vector through the LRU cache under the external
// call timeout.
func (c *Core) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.externalTimeout)
	defer cancel()
	return c.embedder.Embed(ctx, text)
}

// publish emits a persisted-event notification. Publisher failures are
// logged and dropped; notification is best-effort.
func (c *Core) publish(ctx context.Context, ev *event.Event, softLinked bool) {
	notification := eventstream.FromEvent(ev, newNotifyID(), c.now().UTC(), softLinked)
	if err := c.publisher.PublishEvent(ctx, notification); err != nil {
		c.logger.Warn("failed to publish event notification",
			zap.Int64("event_id", ev.ID),
			zap.Error(err),
		)
	}
}
