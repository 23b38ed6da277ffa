// Package pipeline sequences claim processing: conditional translation,
// sentiment scoring with bounded retry, two-stage categorization,
// priority ranking, and persistence. The pipeline is the sole writer of
// a claim's status while it is in flight.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/events"
	"github.com/jonesrussell/claim-ranker/internal/language"
	"github.com/jonesrussell/claim-ranker/internal/logger"
	"github.com/jonesrussell/claim-ranker/internal/ranker"
	"github.com/jonesrussell/claim-ranker/internal/retry"
	"github.com/jonesrussell/claim-ranker/internal/telemetry"
)

// Stage names recorded in metrics and spans.
const (
	stageTranslate  = "translate"
	stageSentiment  = "sentiment"
	stageCategorize = "categorize"
	stagePersist    = "persist"
)

// Default sentiment retry policy: one retry after a short fixed delay.
const (
	defaultSentimentAttempts = 2
	defaultSentimentDelay    = 500 * time.Millisecond
)

// Translator converts text in the given source language to English.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// SentimentScorer scores English text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (domain.SentimentResult, error)
}

// Categorizer assigns a category to English text. It never fails; the
// fallback category absorbs classification errors.
type Categorizer interface {
	Categorize(ctx context.Context, text string) domain.CategoryOutcome
}

// ClaimStore persists completed claims.
type ClaimStore interface {
	Insert(ctx context.Context, claim *domain.Claim) error
}

// Deps holds the pipeline's collaborators. Publisher and Telemetry may
// be nil.
type Deps struct {
	Translator  Translator
	Sentiment   SentimentScorer
	Categorizer Categorizer
	Store       ClaimStore
	Publisher   *events.Publisher
	Telemetry   *telemetry.Provider
	Logger      logger.Logger
}

// Options tunes the pipeline's retry policy.
type Options struct {
	SentimentMaxAttempts int
	SentimentRetryDelay  time.Duration
}

// Pipeline processes one claim at a time per call; concurrent calls
// share no mutable state beyond the store.
type Pipeline struct {
	translator  Translator
	sentiment   SentimentScorer
	categorizer Categorizer
	store       ClaimStore
	publisher   *events.Publisher
	telemetry   *telemetry.Provider
	logger      logger.Logger
	retryCfg    retry.Config
}

// New creates a pipeline from its collaborators.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	attempts := opts.SentimentMaxAttempts
	if attempts <= 0 {
		attempts = defaultSentimentAttempts
	}
	delay := opts.SentimentRetryDelay
	if delay <= 0 {
		delay = defaultSentimentDelay
	}

	return &Pipeline{
		translator:  deps.Translator,
		sentiment:   deps.Sentiment,
		categorizer: deps.Categorizer,
		store:       deps.Store,
		publisher:   deps.Publisher,
		telemetry:   deps.Telemetry,
		logger:      deps.Logger,
		retryCfg: retry.Config{
			MaxAttempts:  attempts,
			InitialDelay: delay,
			MaxDelay:     delay,
			Multiplier:   1, // fixed delay between sentiment attempts
			IsRetryable:  retry.AlwaysRetry,
		},
	}
}

// Process runs rawText through the full pipeline and returns the
// persisted claim. Fatal stage failures return a *domain.StageError;
// the failed claim is persisted with its fail reason unless the store
// itself is the failing stage.
func (p *Pipeline) Process(ctx context.Context, rawText, declaredLanguage string) (*domain.Claim, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, domain.ErrEmptyClaim
	}

	started := time.Now()
	now := started.UTC()
	claim := &domain.Claim{
		ID:         uuid.New().String(),
		RawText:    text,
		Language:   language.Detect(text, declaredLanguage),
		Status:     domain.StatusReceived,
		Resolution: domain.ResolutionOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	ctx, span := p.startSpan(ctx, claim)
	defer span.end()

	if err := p.translate(ctx, claim); err != nil {
		return nil, p.fail(ctx, claim, domain.FailReasonTranslation, err, started)
	}

	if err := p.score(ctx, claim); err != nil {
		return nil, p.fail(ctx, claim, domain.FailReasonSentiment, err, started)
	}

	p.categorize(ctx, claim)
	p.rank(claim)

	if err := p.persist(ctx, claim); err != nil {
		return nil, p.fail(ctx, claim, domain.FailReasonPersistence, err, started)
	}

	if p.telemetry != nil {
		p.telemetry.RecordClaimProcessed(ctx, string(domain.StatusStored), time.Since(started))
	}
	p.publisher.PublishAsync(events.NewClaimStored(claim))

	p.logger.Info("claim processed",
		logger.String("claim_id", claim.ID),
		logger.String("language", claim.Language),
		logger.String("category", claim.Category),
		logger.String("category_source", claim.CategorySource),
		logger.Int("priority", claim.Priority),
		logger.Duration("duration", time.Since(started)))

	return claim, nil
}

// translate fills TranslatedText. English input passes through verbatim.
func (p *Pipeline) translate(ctx context.Context, claim *domain.Claim) error {
	if language.IsEnglish(claim.Language) {
		claim.TranslatedText = claim.RawText
		p.advance(claim, domain.StatusTranslated)
		return nil
	}

	start := time.Now()
	translated, err := p.translator.Translate(ctx, claim.RawText, claim.Language)
	if p.telemetry != nil {
		p.telemetry.RecordProviderCall(ctx, "translator", err == nil, time.Since(start))
	}
	p.recordStage(ctx, stageTranslate, start)
	if err != nil {
		return err
	}

	claim.TranslatedText = translated
	p.advance(claim, domain.StatusTranslated)
	return nil
}

// score runs the sentiment scorer with one bounded retry.
func (p *Pipeline) score(ctx context.Context, claim *domain.Claim) error {
	start := time.Now()

	var result domain.SentimentResult
	attempt := 0
	err := retry.Retry(ctx, p.retryCfg, func() error {
		if attempt > 0 {
			if p.telemetry != nil {
				p.telemetry.IncrementSentimentRetry()
			}
			p.logger.Warn("retrying sentiment scorer",
				logger.String("claim_id", claim.ID),
				logger.Int("attempt", attempt+1))
		}
		attempt++

		callStart := time.Now()
		scored, scoreErr := p.sentiment.Score(ctx, claim.TranslatedText)
		if p.telemetry != nil {
			p.telemetry.RecordProviderCall(ctx, "sentiment", scoreErr == nil, time.Since(callStart))
		}
		if scoreErr != nil {
			return scoreErr
		}
		result = scored
		return nil
	})
	p.recordStage(ctx, stageSentiment, start)
	if err != nil {
		return err
	}

	claim.SentimentLabel = result.Label
	claim.SentimentScore = result.Score
	p.advance(claim, domain.StatusScored)
	return nil
}

// categorize never fails; the categorizer falls back internally.
func (p *Pipeline) categorize(ctx context.Context, claim *domain.Claim) {
	start := time.Now()
	outcome := p.categorizer.Categorize(ctx, claim.TranslatedText)
	p.recordStage(ctx, stageCategorize, start)

	claim.Category = outcome.Category
	claim.CategorySource = outcome.Source
	p.advance(claim, domain.StatusCategorized)

	if p.telemetry != nil {
		p.telemetry.RecordCategory(ctx, outcome.Category, outcome.Source)
	}
}

func (p *Pipeline) rank(claim *domain.Claim) {
	claim.Priority = ranker.Rank(claim.SentimentScore, claim.Category)
	p.advance(claim, domain.StatusRanked)

	if p.telemetry != nil {
		p.telemetry.RecordPriority(claim.Priority)
	}
}

// persist writes the claim with terminal status stored. The in-memory
// claim only advances once the insert succeeds.
func (p *Pipeline) persist(ctx context.Context, claim *domain.Claim) error {
	persisted := *claim
	persisted.Status = domain.StatusStored
	persisted.UpdatedAt = time.Now().UTC()

	start := time.Now()
	err := p.store.Insert(ctx, &persisted)
	p.recordStage(ctx, stagePersist, start)
	if err != nil {
		return err
	}

	*claim = persisted
	return nil
}

// fail marks the claim failed, persists it when the store is intact,
// and returns the stage error for the caller.
func (p *Pipeline) fail(ctx context.Context, claim *domain.Claim, reason string, cause error, started time.Time) error {
	claim.Status = domain.StatusFailed
	claim.FailReason = reason
	claim.UpdatedAt = time.Now().UTC()

	if reason != domain.FailReasonPersistence {
		if insertErr := p.store.Insert(ctx, claim); insertErr != nil {
			p.logger.Error("failed to persist failed claim",
				logger.String("claim_id", claim.ID),
				logger.Error(insertErr))
		}
	}

	if p.telemetry != nil {
		p.telemetry.RecordClaimFailure(ctx, reason)
		p.telemetry.RecordClaimProcessed(ctx, string(domain.StatusFailed), time.Since(started))
	}
	p.publisher.PublishAsync(events.NewClaimFailed(claim))

	p.logger.Error("claim processing failed",
		logger.String("claim_id", claim.ID),
		logger.String("reason", reason),
		logger.Error(cause))

	return domain.NewStageError(claim.ID, reason, cause)
}

func (p *Pipeline) advance(claim *domain.Claim, next domain.Status) {
	if claim.Status.CanTransitionTo(next) {
		claim.Status = next
		claim.UpdatedAt = time.Now().UTC()
	}
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, start time.Time) {
	if p.telemetry != nil {
		p.telemetry.RecordStageDuration(ctx, stage, time.Since(start))
	}
}

// span wraps the optional trace span so call sites stay flat.
type span struct {
	end func()
}

func (p *Pipeline) startSpan(ctx context.Context, claim *domain.Claim) (context.Context, span) {
	if p.telemetry == nil {
		return ctx, span{end: func() {}}
	}

	ctx, s := p.telemetry.StartSpan(ctx, "pipeline.process",
		attribute.String("claim.id", claim.ID),
		attribute.String("claim.language", claim.Language))
	return ctx, span{end: func() { s.End() }}
}
