package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/claim-ranker/internal/api"
	"github.com/jonesrussell/claim-ranker/internal/classifier"
	"github.com/jonesrussell/claim-ranker/internal/config"
	"github.com/jonesrussell/claim-ranker/internal/events"
	"github.com/jonesrussell/claim-ranker/internal/httpserver"
	"github.com/jonesrussell/claim-ranker/internal/logger"
	"github.com/jonesrussell/claim-ranker/internal/logging"
	"github.com/jonesrussell/claim-ranker/internal/pipeline"
	"github.com/jonesrussell/claim-ranker/internal/providerhealth"
	"github.com/jonesrussell/claim-ranker/internal/sentiment"
	"github.com/jonesrussell/claim-ranker/internal/telemetry"
	"github.com/jonesrussell/claim-ranker/internal/translate"
)

const redisPingTimeout = 2 * time.Second

// HTTPComponents holds all components needed for the HTTP server.
type HTTPComponents struct {
	DB        *sqlx.DB
	Publisher *events.Publisher
	Handler   *api.Handler
	Server    *httpserver.Server
	Telemetry *telemetry.Provider
}

// NewHTTPComponents creates all components for the HTTP server.
func NewHTTPComponents(cfg *config.Config, log logger.Logger) (*HTTPComponents, error) {
	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	publisher := SetupEventPublisher(cfg, log)
	tp := telemetry.NewProvider()

	translator := translate.NewClient(cfg.Providers.Translator.URL, cfg.Providers.Translator.Timeout)
	scorer := sentiment.NewClient(cfg.Providers.Sentiment.URL, cfg.Providers.Sentiment.APIKey, cfg.Providers.Sentiment.Timeout)
	categorizer := setupCategorizer(cfg, log, tp)

	proc := pipeline.New(pipeline.Deps{
		Translator:  translator,
		Sentiment:   scorer,
		Categorizer: categorizer,
		Store:       dbComps.Claims,
		Publisher:   publisher,
		Telemetry:   tp,
		Logger:      log,
	}, pipeline.Options{
		SentimentMaxAttempts: cfg.Providers.Sentiment.MaxAttempts,
		SentimentRetryDelay:  cfg.Providers.Sentiment.RetryDelay,
	})
	log.Info("Claim pipeline initialized",
		logger.String("translator_url", cfg.Providers.Translator.URL),
		logger.Bool("remote_classifier", cfg.Providers.Classifier.Enabled),
		logger.Int("sentiment_max_attempts", cfg.Providers.Sentiment.MaxAttempts),
	)

	handler := api.NewHandler(proc, dbComps.Claims, publisher, logging.NewAdapter(log))

	opts := api.ServerOptions{
		Metrics:       tp.Handler(),
		DatabasePing:  dbComps.DB.Ping,
		ProviderPings: providerPings(setupProviderMonitor(cfg, translator)),
	}
	if publisher != nil {
		opts.RedisPing = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
			defer cancel()
			return publisher.Ping(ctx)
		}
	}

	server := api.NewServer(handler, cfg, log, opts)

	return &HTTPComponents{
		DB:        dbComps.DB,
		Publisher: publisher,
		Handler:   handler,
		Server:    server,
		Telemetry: tp,
	}, nil
}

// setupCategorizer builds the two-stage categorizer: local keyword rules
// first, then the optional remote LLM classifier.
func setupCategorizer(cfg *config.Config, log logger.Logger, tp *telemetry.Provider) *classifier.Categorizer {
	engine := classifier.NewTrieRuleEngine(classifier.BuiltinRules(), log, tp)

	var remote classifier.RemoteLabeler
	if cfg.Providers.Classifier.Enabled {
		remote = classifier.NewRemoteClassifier(classifier.RemoteConfig{
			BaseURL:           cfg.Providers.Classifier.BaseURL,
			APIKey:            cfg.Providers.Classifier.APIKey,
			Model:             cfg.Providers.Classifier.Model,
			Timeout:           cfg.Providers.Classifier.Timeout,
			MaxTokens:         cfg.Providers.Classifier.MaxTokens,
			RequestsPerMinute: cfg.Providers.Classifier.RequestsPerMinute,
			CacheTTL:          cfg.Providers.Classifier.CacheTTL,
		}, log, tp)
		log.Info("Remote classifier enabled",
			logger.String("base_url", cfg.Providers.Classifier.BaseURL),
			logger.String("model", cfg.Providers.Classifier.Model),
		)
	}

	return classifier.NewCategorizer(engine, remote, cfg.Classification.DefaultCategory, log)
}

// setupProviderMonitor registers reachability probes for the external
// providers. The translator exposes GET /health; the sentiment and
// classifier endpoints only answer their own routes, so those probes
// check reachability alone.
func setupProviderMonitor(cfg *config.Config, translator *translate.Client) *providerhealth.Monitor {
	monitor := providerhealth.NewMonitor()

	monitor.Register("translator", func(ctx context.Context) (bool, int64, string, error) {
		start := time.Now()
		if err := translator.Health(ctx); err != nil {
			return false, time.Since(start).Milliseconds(), "", err
		}
		return true, time.Since(start).Milliseconds(), "", nil
	})
	monitor.Register("sentiment", providerhealth.ReachabilityProbe(cfg.Providers.Sentiment.URL))
	if cfg.Providers.Classifier.Enabled {
		monitor.Register("classifier", providerhealth.ReachabilityProbe(cfg.Providers.Classifier.BaseURL))
	}

	return monitor
}

// providerPings adapts monitor probes to the readiness check shape.
func providerPings(monitor *providerhealth.Monitor) map[string]func() error {
	names := monitor.Names()
	pings := make(map[string]func() error, len(names))
	for _, name := range names {
		pings[name] = func() error {
			status := monitor.CheckOne(context.Background(), name)
			if status.Error != "" {
				return errors.New(status.Error)
			}
			if !status.Reachable {
				return fmt.Errorf("%s unreachable", name)
			}
			return nil
		}
	}
	return pings
}
