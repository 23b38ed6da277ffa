package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/logger"
	"github.com/jonesrussell/claim-ranker/internal/logging"
	"github.com/jonesrussell/claim-ranker/internal/ratelimit"
	"github.com/jonesrussell/claim-ranker/internal/telemetry"
)

// ErrUnavailable indicates the remote classifier could not be reached
// or produced no usable category.
var ErrUnavailable = errors.New("remote classifier unavailable")

const (
	defaultRemoteTimeout   = 10 * time.Second
	defaultRemoteMaxTokens = 16
	cacheCleanupInterval   = 10 * time.Minute

	// remoteTemperature stands in for 0; a literal 0 is dropped by omitempty.
	remoteTemperature = 1e-8
)

// RemoteConfig configures the remote LLM classifier.
type RemoteConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxTokens         int
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// RemoteClassifier asks an OpenAI-compatible chat completions endpoint
// for a category label. Works against hosted APIs and local Ollama at /v1.
// Calls are rate limited and successful classifications are cached by
// normalized text.
type RemoteClassifier struct {
	client       *openai.Client
	model        string
	timeout      time.Duration
	maxTokens    int
	systemPrompt string
	limiter      *ratelimit.Limiter
	cache        *gocache.Cache
	telemetry    *telemetry.Provider
	logger       logger.Logger
}

// NewRemoteClassifier creates a remote classifier from cfg.
func NewRemoteClassifier(cfg RemoteConfig, log logger.Logger, tp *telemetry.Provider) *RemoteClassifier {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRemoteTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultRemoteMaxTokens
	}

	return &RemoteClassifier{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		timeout:      timeout,
		maxTokens:    maxTokens,
		systemPrompt: buildSystemPrompt(),
		limiter:      ratelimit.PerMinute(cfg.RequestsPerMinute, logging.NewAdapter(log)),
		cache:        gocache.New(cfg.CacheTTL, cacheCleanupInterval),
		telemetry:    tp,
		logger:       log,
	}
}

func buildSystemPrompt() string {
	return "You classify customer claims. Allowed categories: " +
		strings.Join(domain.Categories(), ", ") +
		". Respond with ONLY the category name."
}

// Classify returns a category label for English claim text.
// Returns ErrUnavailable on transport failures and a plain error when the
// model names a category outside the allowed set.
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (string, error) {
	key := normalizeText(text)
	if cached, found := c.cache.Get(key); found {
		c.recordCacheLookup(true)
		return cached.(string), nil
	}
	c.recordCacheLookup(false)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   c.maxTokens,
		Temperature: remoteTemperature,
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	raw := resp.Choices[0].Message.Content
	category := normalizeCategoryLabel(raw)
	if !domain.ValidCategory(category) || category == domain.CategoryUncategorized {
		return "", fmt.Errorf("remote classifier returned unknown category %q", raw)
	}

	c.cache.Set(key, category, gocache.DefaultExpiration)
	return category, nil
}

// normalizeCategoryLabel strips the quoting, casing, and trailing
// punctuation chat models wrap around bare labels.
func normalizeCategoryLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, `"'.`)
	// Some models answer "category: payment"
	if _, after, found := strings.Cut(label, ":"); found {
		label = strings.TrimSpace(after)
	}
	return label
}

func (c *RemoteClassifier) recordCacheLookup(hit bool) {
	if c.telemetry != nil {
		c.telemetry.RecordClassifierCacheLookup(hit)
	}
}

// CacheSize returns the number of cached classifications.
func (c *RemoteClassifier) CacheSize() int {
	return c.cache.ItemCount()
}
