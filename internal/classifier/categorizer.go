package classifier

import (
	"context"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/logger"
)

// Decision path constants recorded in logs and metrics.
const (
	decisionPathLocal    = "local"
	decisionPathRemote   = "remote"
	decisionPathFallback = "fallback"
)

// RemoteLabeler is the remote classification interface.
type RemoteLabeler interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Categorizer assigns a category in two stages: local keyword rules
// first, then the remote classifier, then the configured default.
// Categorization never fails a claim; the default category absorbs
// remote errors and timeouts.
type Categorizer struct {
	engine          *TrieRuleEngine
	remote          RemoteLabeler // nil when the remote classifier is disabled
	defaultCategory string
	logger          logger.Logger
}

// NewCategorizer creates a categorizer over the given rule engine.
func NewCategorizer(engine *TrieRuleEngine, remote RemoteLabeler, defaultCategory string, log logger.Logger) *Categorizer {
	if defaultCategory == "" {
		defaultCategory = domain.CategoryUncategorized
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Categorizer{
		engine:          engine,
		remote:          remote,
		defaultCategory: defaultCategory,
		logger:          log,
	}
}

// Categorize returns the category for English claim text with provenance.
func (c *Categorizer) Categorize(ctx context.Context, text string) domain.CategoryOutcome {
	matches, details := c.engine.MatchWithDetails(text)
	if len(matches) > 0 {
		best := matches[0]
		c.logger.Debug("local classification matched",
			logger.String("category", best.Rule.Category),
			logger.String("decision_path", decisionPathLocal),
			logger.Int("unique_matches", best.UniqueMatches),
			logger.Float64("score", best.Score),
			logger.Strings("matched_keywords", best.MatchedKeywords),
			logger.Int64("duration_ms", details.DurationMs))
		return domain.LocalOutcome(best.Rule.Category, best.Score)
	}

	if c.remote != nil {
		category, err := c.remote.Classify(ctx, text)
		if err == nil {
			c.logger.Debug("remote classification complete",
				logger.String("category", category),
				logger.String("decision_path", decisionPathRemote))
			return domain.RemoteOutcome(category)
		}
		c.logger.Warn("remote classification failed, using default category",
			logger.String("decision_path", decisionPathFallback),
			logger.Error(err))
	}

	return domain.FallbackOutcome(c.defaultCategory)
}
