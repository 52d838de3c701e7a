package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	Chat      ChatConfig      `yaml:"chat" mapstructure:"chat"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures the source fetcher.
type FetchConfig struct {
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts   int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelayMS   int    `yaml:"base_delay_ms" mapstructure:"base_delay_ms"`
	RatePerSecond int    `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// SourcesConfig holds the external source locations.
type SourcesConfig struct {
	ListingURL string `yaml:"listing_url" mapstructure:"listing_url"`
	SocialURL  string `yaml:"social_url" mapstructure:"social_url"`
	MapURL     string `yaml:"map_url" mapstructure:"map_url"`
}

// AggregateConfig configures the aggregation cycle.
type AggregateConfig struct {
	Schedule     string `yaml:"schedule" mapstructure:"schedule"`
	RunOnStartup bool   `yaml:"run_on_startup" mapstructure:"run_on_startup"`
}

// ChatConfig configures the chat response path.
type ChatConfig struct {
	GenerateTimeoutSecs int `yaml:"generate_timeout_secs" mapstructure:"generate_timeout_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FLOWTERNITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "facility.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.base_delay_ms", 1000)
	v.SetDefault("fetch.rate_per_second", 5)
	v.SetDefault("sources.listing_url", "https://playo.co/venues/horamavu-bengaluru/flowternity-sports-horamavu-bengaluru")
	v.SetDefault("sources.social_url", "https://www.instagram.com/flowternity_sports/?hl=en")
	v.SetDefault("sources.map_url", "https://share.google/T3WTGtG79S2pc9jJi")
	v.SetDefault("aggregate.schedule", "@every 5m")
	v.SetDefault("aggregate.run_on_startup", true)
	v.SetDefault("chat.generate_timeout_secs", 15)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
