// Package preprocess provides an optional rule-based preprocessor for query
// text: a lightweight classifier plus a semantic mapper that nudges
// conceptual queries toward vocabulary known to appear in stored events.
//
// The preprocessor is fail-open: any internal fault returns the input
// unchanged. Event text is never rewritten; only queries are translated, and
// only when the mapper's confidence clears the configured threshold.
package preprocess

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// QueryType classifies an incoming query.
type QueryType string

const (
	QueryDirectKeyword QueryType = "direct_keyword"
	QueryConceptual    QueryType = "conceptual"
	QueryCausal        QueryType = "causal"
	QueryUnknown       QueryType = "unknown"
)

// DefaultConfidenceThreshold is the translation cutoff.
const DefaultConfidenceThreshold = 0.35

// DefaultSuggestionTopK is the default number of suggestions returned.
const DefaultSuggestionTopK = 5

// defaultRecentLimit bounds the metrics history.
const defaultRecentLimit = 50

// Config holds preprocessor settings.
type Config struct {
	// Enabled turns the preprocessor on. Disabled means pure pass-through.
	Enabled bool

	// ConfidenceThreshold gates translation. Zero means the default.
	ConfidenceThreshold float64

	// SuggestionTopK is the default suggestion count. Zero means the default.
	SuggestionTopK int
}

var directHints = []*regexp.Regexp{
	regexp.MustCompile(`\b(add|insert|create|write)[ _-]?(event|record|file|dir|directory|folder)\b`),
	regexp.MustCompile(`\bquery\b`),
	regexp.MustCompile(`\bsearch\b`),
}

var conceptualHints = []*regexp.Regexp{
	regexp.MustCompile(`\bwhy\b|\bhow\b|\broot cause\b|\bcontext\b`),
	regexp.MustCompile(`\bexplain\b|\bmeaning\b|\bconcept\b`),
}

// semanticMappings bias conceptual queries toward phrases that recorded
// events tend to contain.
var semanticMappings = map[string][]string{
	"file creation": {
		"file creation", "created", "write_file", "file created",
		"new file", "create file",
	},
	"testing activities": {
		"testing", "comprehensive testing", "test", "testing outcomes",
		"e2e tests", "unit tests", "benchmark",
	},
	"memory systems": {
		"memory", "causal memory", "memory systems", "context", "narrative",
		"causal chain", "retrieve context",
	},
	"directory operations": {
		"directory", "create_directory", "folder", "make folder",
	},
	"application launch": {
		"opening application", "app opened", "launched application", "interactive mode",
	},
	"document loading": {
		"document loaded", "file loaded", "load document", "file opened",
	},
	"project creation": {
		"project creation", "created project", "new project",
	},
	"workflow actions": {
		"workflow actions", "workflow", "actions", "add event", "query memory",
	},
	"bug resolution": {
		"bug resolved", "fix applied", "patch deployed",
	},
	"user interactions": {
		"clicked on a file", "clicked", "open file",
	},
}

var wordPattern = regexp.MustCompile(`\w+`)

// Preprocessor classifies and optionally translates query text.
type Preprocessor struct {
	config Config

	mu      sync.Mutex
	metrics Metrics
}

// Metrics are in-memory counters over preprocessor activity.
type Metrics struct {
	TotalCalls           int               `json:"total_calls"`
	QueryCalls           int               `json:"total_query_calls"`
	Classifications      map[QueryType]int `json:"classifications"`
	TranslationsApplied  int               `json:"translations_applied"`
	TranslationsRejected int               `json:"translations_rejected"`
	Recent               []Translation     `json:"recent"`
}

// Translation records one preprocessing decision.
type Translation struct {
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	QueryType  QueryType `json:"query_type"`
	Confidence float64   `json:"confidence"`
}

// Suggestion is a ranked vocabulary hint for a free-form query.
type Suggestion struct {
	Category string  `json:"category"`
	Phrase   string  `json:"phrase"`
	Score    float64 `json:"score"`
}

// New creates a preprocessor, applying defaults for zero-valued knobs.
func New(config Config) *Preprocessor {
	if config.ConfidenceThreshold == 0 {
		config.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if config.SuggestionTopK == 0 {
		config.SuggestionTopK = DefaultSuggestionTopK
	}
	return &Preprocessor{
		config: config,
		metrics: Metrics{
			Classifications: make(map[QueryType]int),
		},
	}
}

// Enabled reports whether preprocessing is active.
func (p *Preprocessor) Enabled() bool {
	return p.config.Enabled
}

// Classify buckets a query by shape.
func Classify(queryText string) QueryType {
	qt := strings.ToLower(queryText)
	for _, hint := range directHints {
		if hint.MatchString(qt) {
			return QueryDirectKeyword
		}
	}
	for _, hint := range conceptualHints {
		if hint.MatchString(qt) {
			return QueryConceptual
		}
	}
	if strings.Contains(qt, "cause") || strings.Contains(qt, "led to") || strings.Contains(qt, "because") {
		return QueryCausal
	}
	return QueryUnknown
}

// ProcessQuery translates a query when the mapper is confident enough,
// otherwise returns it unchanged. Direct-keyword queries always pass through.
func (p *Preprocessor) ProcessQuery(queryText string) string {
	if !p.config.Enabled {
		return queryText
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.TotalCalls++
	p.metrics.QueryCalls++

	queryType := Classify(queryText)
	p.metrics.Classifications[queryType]++

	if queryType == QueryDirectKeyword {
		p.record(Translation{Input: queryText, Output: queryText, QueryType: queryType})
		return queryText
	}

	phrase, confidence := translate(queryText)
	if confidence >= p.config.ConfidenceThreshold && phrase != "" {
		p.metrics.TranslationsApplied++
		p.record(Translation{Input: queryText, Output: phrase, QueryType: queryType, Confidence: confidence})
		return phrase
	}

	p.metrics.TranslationsRejected++
	p.record(Translation{Input: queryText, Output: queryText, QueryType: queryType, Confidence: confidence})
	return queryText
}

// Suggest ranks vocabulary hints for free-form text. topK <= 0 uses the
// configured default.
func (p *Preprocessor) Suggest(text string, topK int) []Suggestion {
	if topK <= 0 {
		topK = p.config.SuggestionTopK
	}

	lt := strings.ToLower(text)
	var suggestions []Suggestion
	for category, phrases := range semanticMappings {
		for _, phrase := range phrases {
			if score := overlap(lt, phrase); score > 0 {
				suggestions = append(suggestions, Suggestion{
					Category: category,
					Phrase:   phrase,
					Score:    score,
				})
			}
		}
	}

	// Highest score first; stable category/phrase order for equal scores.
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		if suggestions[i].Category != suggestions[j].Category {
			return suggestions[i].Category < suggestions[j].Category
		}
		return suggestions[i].Phrase < suggestions[j].Phrase
	})

	if len(suggestions) > topK {
		suggestions = suggestions[:topK]
	}
	return suggestions
}

// Snapshot returns a copy of the current metrics.
func (p *Preprocessor) Snapshot() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.metrics
	snapshot.Classifications = make(map[QueryType]int, len(p.metrics.Classifications))
	for k, v := range p.metrics.Classifications {
		snapshot.Classifications[k] = v
	}
	snapshot.Recent = append([]Translation(nil), p.metrics.Recent...)
	return snapshot
}

// record appends a translation to the bounded history. Caller holds p.mu.
func (p *Preprocessor) record(t Translation) {
	p.metrics.Recent = append(p.metrics.Recent, t)
	if len(p.metrics.Recent) > defaultRecentLimit {
		p.metrics.Recent = p.metrics.Recent[len(p.metrics.Recent)-defaultRecentLimit:]
	}
}

// translate finds the best-overlapping known phrase for the text.
func translate(text string) (string, float64) {
	lt := strings.ToLower(text)
	best := ""
	bestScore := 0.0
	for _, phrases := range semanticMappings {
		for _, phrase := range phrases {
			if score := overlap(lt, phrase); score > bestScore {
				bestScore = score
				best = phrase
			}
		}
	}
	return best, bestScore
}

// overlap is Jaccard similarity over word tokens.
func overlap(a, b string) float64 {
	at := tokenSet(a)
	bt := tokenSet(b)
	if len(at) == 0 || len(bt) == 0 {
		return 0
	}

	inter := 0
	for token := range at {
		if bt[token] {
			inter++
		}
	}
	union := len(at) + len(bt) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range wordPattern.FindAllString(s, -1) {
		set[token] = true
	}
	return set
}
