package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/pipeline"
	"github.com/jonesrussell/claim-ranker/internal/testhelpers"
)

type stubTranslator struct {
	calls      int
	lastText   string
	lastLang   string
	translated string
	err        error
}

func (s *stubTranslator) Translate(_ context.Context, text, sourceLang string) (string, error) {
	s.calls++
	s.lastText = text
	s.lastLang = sourceLang
	if s.err != nil {
		return "", s.err
	}
	return s.translated, nil
}

// stubScorer fails the first `failures` calls, then succeeds.
type stubScorer struct {
	calls    int
	failures int
	err      error
	result   domain.SentimentResult
	lastText string
	onCall   func()
}

func (s *stubScorer) Score(_ context.Context, text string) (domain.SentimentResult, error) {
	s.calls++
	s.lastText = text
	if s.onCall != nil {
		s.onCall()
	}
	if s.calls <= s.failures {
		return domain.SentimentResult{}, s.err
	}
	return s.result, nil
}

type stubCategorizer struct {
	calls    int
	lastText string
	outcome  domain.CategoryOutcome
}

func (s *stubCategorizer) Categorize(_ context.Context, text string) domain.CategoryOutcome {
	s.calls++
	s.lastText = text
	return s.outcome
}

func happyDeps() (pipeline.Deps, *stubTranslator, *stubScorer, *stubCategorizer, *testhelpers.MemClaimStore) {
	translator := &stubTranslator{translated: "My luggage was lost"}
	scorer := &stubScorer{result: domain.SentimentResult{Label: domain.SentimentNegative, Score: -0.4}}
	categorizer := &stubCategorizer{outcome: domain.LocalOutcome(domain.CategoryDelay, 0.7)}
	store := testhelpers.NewMemClaimStore()

	deps := pipeline.Deps{
		Translator:  translator,
		Sentiment:   scorer,
		Categorizer: categorizer,
		Store:       store,
	}
	return deps, translator, scorer, categorizer, store
}

func newPipeline(t *testing.T, deps pipeline.Deps) *pipeline.Pipeline {
	t.Helper()

	return pipeline.New(deps, pipeline.Options{
		SentimentMaxAttempts: 2,
		SentimentRetryDelay:  time.Millisecond,
	})
}

func TestProcess_EnglishClaimSkipsTranslator(t *testing.T) {
	t.Helper()

	deps, translator, scorer, _, store := happyDeps()
	p := newPipeline(t, deps)

	const text = "My suitcase was damaged on arrival"
	claim, processErr := p.Process(context.Background(), text, "en")
	if processErr != nil {
		t.Fatalf("Process() error = %v", processErr)
	}

	if translator.calls != 0 {
		t.Errorf("translator calls = %d, want 0", translator.calls)
	}
	if claim.TranslatedText != text {
		t.Errorf("TranslatedText = %q, want raw text %q", claim.TranslatedText, text)
	}
	if scorer.lastText != text {
		t.Errorf("scorer received %q, want %q", scorer.lastText, text)
	}
	if claim.Language != "en" {
		t.Errorf("Language = %q, want en", claim.Language)
	}
	if claim.Status != domain.StatusStored {
		t.Errorf("Status = %q, want %q", claim.Status, domain.StatusStored)
	}
	if got := store.Stored(); len(got) != 1 {
		t.Fatalf("stored claims = %d, want 1", len(got))
	}
}

func TestProcess_TranslatesNonEnglish(t *testing.T) {
	t.Helper()

	deps, translator, scorer, categorizer, _ := happyDeps()
	p := newPipeline(t, deps)

	const text = "Мой багаж потеряли"
	claim, processErr := p.Process(context.Background(), text, "")
	if processErr != nil {
		t.Fatalf("Process() error = %v", processErr)
	}

	if translator.calls != 1 {
		t.Fatalf("translator calls = %d, want 1", translator.calls)
	}
	if translator.lastLang != "ru" {
		t.Errorf("translator language = %q, want ru (detected)", translator.lastLang)
	}
	if translator.lastText != text {
		t.Errorf("translator received %q, want raw text", translator.lastText)
	}
	if claim.TranslatedText != translator.translated {
		t.Errorf("TranslatedText = %q, want %q", claim.TranslatedText, translator.translated)
	}
	if scorer.lastText != translator.translated {
		t.Errorf("scorer received %q, want translated text", scorer.lastText)
	}
	if categorizer.lastText != translator.translated {
		t.Errorf("categorizer received %q, want translated text", categorizer.lastText)
	}
}

func TestProcess_StronglyNegativeDamageClaimRanksHigh(t *testing.T) {
	t.Helper()

	deps, translator, scorer, categorizer, store := happyDeps()
	translator.translated = "The package arrived damaged"
	scorer.result = domain.SentimentResult{Label: domain.SentimentNegative, Score: -0.8}
	categorizer.outcome = domain.LocalOutcome(domain.CategoryDamage, 0.9)
	p := newPipeline(t, deps)

	claim, processErr := p.Process(context.Background(), "Пакет пришёл повреждённым", "ru")
	if processErr != nil {
		t.Fatalf("Process() error = %v", processErr)
	}

	if claim.Category != domain.CategoryDamage {
		t.Errorf("Category = %q, want %q", claim.Category, domain.CategoryDamage)
	}
	if claim.CategorySource != domain.CategorySourceLocal {
		t.Errorf("CategorySource = %q, want %q", claim.CategorySource, domain.CategorySourceLocal)
	}
	if claim.Priority != 5 {
		t.Errorf("Priority = %d, want 5 for strongly negative damage claim", claim.Priority)
	}
	if claim.Resolution != domain.ResolutionOpen {
		t.Errorf("Resolution = %q, want %q", claim.Resolution, domain.ResolutionOpen)
	}
	if claim.CreatedAt.IsZero() || claim.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got := store.Stored()
	if len(got) != 1 {
		t.Fatalf("stored claims = %d, want 1", len(got))
	}
	if got[0].Status != domain.StatusStored {
		t.Errorf("persisted status = %q, want %q", got[0].Status, domain.StatusStored)
	}
}

func TestProcess_SentimentRetriesOnceThenSucceeds(t *testing.T) {
	t.Helper()

	deps, _, scorer, _, store := happyDeps()
	scorer.failures = 1
	scorer.err = errors.New("scorer unavailable")
	p := newPipeline(t, deps)

	claim, processErr := p.Process(context.Background(), "The staff ignored my complaint", "en")
	if processErr != nil {
		t.Fatalf("Process() error = %v, want retry to recover", processErr)
	}

	if scorer.calls != 2 {
		t.Errorf("scorer calls = %d, want 2 (initial + one retry)", scorer.calls)
	}
	if claim.SentimentLabel != domain.SentimentNegative {
		t.Errorf("SentimentLabel = %q, want %q", claim.SentimentLabel, domain.SentimentNegative)
	}
	if got := store.Stored(); len(got) != 1 || got[0].Status != domain.StatusStored {
		t.Errorf("expected one stored claim, got %d", len(got))
	}
}

func TestProcess_SentimentFailureMarksClaimFailed(t *testing.T) {
	t.Helper()

	deps, _, scorer, categorizer, store := happyDeps()
	scorer.failures = 2
	scorer.err = errors.New("scorer unavailable")
	p := newPipeline(t, deps)

	claim, processErr := p.Process(context.Background(), "The staff ignored my complaint", "en")
	if processErr == nil {
		t.Fatal("Process() error = nil, want sentiment failure")
	}
	if claim != nil {
		t.Errorf("claim = %+v, want nil on fatal failure", claim)
	}
	if !errors.Is(processErr, domain.ErrSentiment) {
		t.Errorf("error = %v, want domain.ErrSentiment", processErr)
	}

	var stageErr *domain.StageError
	if !errors.As(processErr, &stageErr) {
		t.Fatalf("error = %T, want *domain.StageError", processErr)
	}
	if stageErr.Reason != domain.FailReasonSentiment {
		t.Errorf("Reason = %q, want %q", stageErr.Reason, domain.FailReasonSentiment)
	}
	if stageErr.ClaimID == "" {
		t.Error("ClaimID empty in stage error")
	}

	if scorer.calls != 2 {
		t.Errorf("scorer calls = %d, want 2", scorer.calls)
	}
	if categorizer.calls != 0 {
		t.Errorf("categorizer calls = %d, want 0 after fatal sentiment failure", categorizer.calls)
	}

	got := store.Stored()
	if len(got) != 1 {
		t.Fatalf("stored claims = %d, want failed claim persisted", len(got))
	}
	failed := got[0]
	if failed.Status != domain.StatusFailed {
		t.Errorf("persisted status = %q, want %q", failed.Status, domain.StatusFailed)
	}
	if failed.FailReason != domain.FailReasonSentiment {
		t.Errorf("FailReason = %q, want %q", failed.FailReason, domain.FailReasonSentiment)
	}
	if failed.Category != "" || failed.Priority != 0 {
		t.Errorf("failed claim has category %q priority %d, want neither assigned", failed.Category, failed.Priority)
	}
}

func TestProcess_TranslationFailureIsFatal(t *testing.T) {
	t.Helper()

	deps, translator, scorer, _, store := happyDeps()
	translator.err = errors.New("translator unreachable")
	p := newPipeline(t, deps)

	_, processErr := p.Process(context.Background(), "Мой багаж потеряли", "ru")
	if processErr == nil {
		t.Fatal("Process() error = nil, want translation failure")
	}
	if !errors.Is(processErr, domain.ErrTranslation) {
		t.Errorf("error = %v, want domain.ErrTranslation", processErr)
	}
	if scorer.calls != 0 {
		t.Errorf("scorer calls = %d, want 0", scorer.calls)
	}

	got := store.Stored()
	if len(got) != 1 {
		t.Fatalf("stored claims = %d, want failed claim persisted", len(got))
	}
	if got[0].FailReason != domain.FailReasonTranslation {
		t.Errorf("FailReason = %q, want %q", got[0].FailReason, domain.FailReasonTranslation)
	}
}

func TestProcess_PersistenceFailureSurfaced(t *testing.T) {
	t.Helper()

	deps, _, _, _, store := happyDeps()
	store.SetError(errors.New("disk full"))
	p := newPipeline(t, deps)

	claim, processErr := p.Process(context.Background(), "I was charged twice for the repair", "en")
	if processErr == nil {
		t.Fatal("Process() error = nil, want persistence failure")
	}
	if claim != nil {
		t.Errorf("claim = %+v, want nil", claim)
	}
	if !errors.Is(processErr, domain.ErrPersistence) {
		t.Errorf("error = %v, want domain.ErrPersistence", processErr)
	}
	if store.Attempts() != 1 {
		t.Errorf("insert attempts = %d, want 1 (no insert retry for the failure record)", store.Attempts())
	}
}

func TestProcess_EmptyTextRejected(t *testing.T) {
	t.Helper()

	deps, translator, scorer, _, store := happyDeps()
	p := newPipeline(t, deps)

	_, processErr := p.Process(context.Background(), "   ", "en")
	if !errors.Is(processErr, domain.ErrEmptyClaim) {
		t.Fatalf("error = %v, want domain.ErrEmptyClaim", processErr)
	}
	if translator.calls != 0 || scorer.calls != 0 || store.Attempts() != 0 {
		t.Error("collaborators invoked for empty submission")
	}
}

func TestProcess_DuplicateTextGetsDistinctIDs(t *testing.T) {
	t.Helper()

	deps, _, _, _, store := happyDeps()
	p := newPipeline(t, deps)

	const text = "My refund never arrived"
	first, err1 := p.Process(context.Background(), text, "en")
	second, err2 := p.Process(context.Background(), text, "en")
	if err1 != nil || err2 != nil {
		t.Fatalf("Process() errors = %v, %v", err1, err2)
	}

	if first.ID == second.ID {
		t.Errorf("duplicate submissions share ID %q, want distinct", first.ID)
	}
	if got := store.Stored(); len(got) != 2 {
		t.Errorf("stored claims = %d, want 2 independent records", len(got))
	}
}

func TestProcess_CancellationSkipsRetry(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	deps, _, scorer, _, store := happyDeps()
	scorer.failures = 2
	scorer.err = errors.New("scorer unavailable")
	scorer.onCall = cancel

	p := pipeline.New(deps, pipeline.Options{
		SentimentMaxAttempts: 2,
		SentimentRetryDelay:  time.Minute,
	})

	start := time.Now()
	_, processErr := p.Process(ctx, "The agent was rude to me", "en")
	if processErr == nil {
		t.Fatal("Process() error = nil, want failure after cancellation")
	}
	if scorer.calls != 1 {
		t.Errorf("scorer calls = %d, want 1 (cancellation abandons retry)", scorer.calls)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Process blocked %v waiting out the retry delay", elapsed)
	}

	got := store.Stored()
	for i := range got {
		if got[i].Status == domain.StatusStored {
			t.Errorf("claim %s stored despite cancellation", got[i].ID)
		}
	}
}
