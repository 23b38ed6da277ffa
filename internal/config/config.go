package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName         = "claim-ranker"
	defaultServiceVersion      = "1.0.0"
	defaultTranslatorURL       = "http://localhost:5000/translate"
	defaultTranslatorTimeout   = 10 * time.Second
	defaultSentimentURL        = "https://api.apilayer.com/sentiment/analysis"
	defaultSentimentTimeout    = 5 * time.Second
	defaultSentimentAttempts   = 2
	defaultSentimentRetryDelay = 500 * time.Millisecond
	defaultClassifierBaseURL   = "http://localhost:11434/v1"
	defaultClassifierModel     = "mistral"
	defaultClassifierTimeout   = 10 * time.Second
	defaultClassifierTokens    = 16
	defaultClassifierRPM       = 60
	defaultClassifierCacheTTL  = time.Hour
	defaultCategory            = "uncategorized"
)

// Config holds all configuration for the claim ranker service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Redis          RedisConfig          `yaml:"redis"`
	Logging        LoggingConfig        `yaml:"logging"`
	Providers      ProvidersConfig      `yaml:"providers"`
	Classification ClassificationConfig `yaml:"classification"`
	Auth           AuthConfig           `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ProvidersConfig groups the external provider clients.
type ProvidersConfig struct {
	Translator TranslatorConfig `yaml:"translator"`
	Sentiment  SentimentConfig  `yaml:"sentiment"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// TranslatorConfig holds translation sidecar settings.
type TranslatorConfig struct {
	URL     string        `env:"TRANSLATOR_URL" yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SentimentConfig holds sentiment provider settings.
type SentimentConfig struct {
	URL         string        `env:"SENTIMENT_URL"     yaml:"url"`
	APIKey      string        `env:"SENTIMENT_API_KEY" yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// ClassifierConfig holds remote LLM classifier settings.
type ClassifierConfig struct {
	Enabled           bool          `env:"CLASSIFIER_ENABLED"  yaml:"enabled"`
	BaseURL           string        `env:"CLASSIFIER_BASE_URL" yaml:"base_url"`
	APIKey            string        `env:"CLASSIFIER_API_KEY"  yaml:"api_key"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxTokens         int           `yaml:"max_tokens"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

// ClassificationConfig holds category assignment settings.
type ClassificationConfig struct {
	DefaultCategory string `yaml:"default_category"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, setDefaults)
}

// Default returns the configuration with all defaults applied and
// environment overrides on top, as if loaded from an empty file.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// Validate checks the loaded configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := ValidateURL("providers.translator.url", c.Providers.Translator.URL); err != nil {
		return err
	}
	if err := ValidateURL("providers.sentiment.url", c.Providers.Sentiment.URL); err != nil {
		return err
	}
	if c.Providers.Classifier.Enabled {
		if err := ValidateURL("providers.classifier.base_url", c.Providers.Classifier.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	cfg.Server.SetDefaults()
	cfg.Database.SetDefaults()
	cfg.Redis.SetDefaults()
	cfg.Logging.SetDefaults()
	setProviderDefaults(&cfg.Providers)
	setClassificationDefaults(&cfg.Classification)
	// Auth defaults are handled by env tags - no explicit defaults needed
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
}

func setProviderDefaults(p *ProvidersConfig) {
	if p.Translator.URL == "" {
		p.Translator.URL = defaultTranslatorURL
	}
	if p.Translator.Timeout == 0 {
		p.Translator.Timeout = defaultTranslatorTimeout
	}
	if p.Sentiment.URL == "" {
		p.Sentiment.URL = defaultSentimentURL
	}
	if p.Sentiment.Timeout == 0 {
		p.Sentiment.Timeout = defaultSentimentTimeout
	}
	if p.Sentiment.MaxAttempts == 0 {
		p.Sentiment.MaxAttempts = defaultSentimentAttempts
	}
	if p.Sentiment.RetryDelay == 0 {
		p.Sentiment.RetryDelay = defaultSentimentRetryDelay
	}
	// Classifier defaults: disabled by default, but set endpoint and model
	if p.Classifier.BaseURL == "" {
		p.Classifier.BaseURL = defaultClassifierBaseURL
	}
	if p.Classifier.Model == "" {
		p.Classifier.Model = defaultClassifierModel
	}
	if p.Classifier.Timeout == 0 {
		p.Classifier.Timeout = defaultClassifierTimeout
	}
	if p.Classifier.MaxTokens == 0 {
		p.Classifier.MaxTokens = defaultClassifierTokens
	}
	if p.Classifier.RequestsPerMinute == 0 {
		p.Classifier.RequestsPerMinute = defaultClassifierRPM
	}
	if p.Classifier.CacheTTL == 0 {
		p.Classifier.CacheTTL = defaultClassifierCacheTTL
	}
}

func setClassificationDefaults(c *ClassificationConfig) {
	if c.DefaultCategory == "" {
		c.DefaultCategory = defaultCategory
	}
}
