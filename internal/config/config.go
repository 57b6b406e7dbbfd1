package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Research  ResearchConfig  `yaml:"research" mapstructure:"research"`
	Credits   CreditsConfig   `yaml:"credits" mapstructure:"credits"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ResearchConfig holds the research engine endpoint settings.
type ResearchConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CreditsConfig holds the credit service endpoint settings.
type CreditsConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SchedulerConfig configures the discovery run loop.
type SchedulerConfig struct {
	MaxCreditsPerDay int     `yaml:"max_credits_per_day" mapstructure:"max_credits_per_day"`
	CostPerBatch     int     `yaml:"cost_per_batch" mapstructure:"cost_per_batch"`
	CooldownHours    int     `yaml:"cooldown_hours" mapstructure:"cooldown_hours"`
	BatchSize        int     `yaml:"batch_size" mapstructure:"batch_size"`
	PauseSecs        int     `yaml:"pause_secs" mapstructure:"pause_secs"`
	ImportThreshold  float64 `yaml:"import_threshold" mapstructure:"import_threshold"`
	ReviewThreshold  float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
	EURPerCredit     float64 `yaml:"eur_per_credit" mapstructure:"eur_per_credit"`
}

// Cooldown returns the per-region cooldown window as a duration.
func (c SchedulerConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownHours) * time.Hour
}

// Pause returns the inter-batch pause as a duration.
func (c SchedulerConfig) Pause() time.Duration {
	return time.Duration(c.PauseSecs) * time.Second
}

// ServerConfig configures the trigger server.
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
	v.SetEnvPrefix("DISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("research.timeout_secs", 120)
	v.SetDefault("credits.timeout_secs", 30)
	v.SetDefault("scheduler.max_credits_per_day", 200)
	v.SetDefault("scheduler.cost_per_batch", 6)
	v.SetDefault("scheduler.cooldown_hours", 72)
	v.SetDefault("scheduler.batch_size", 25)
	v.SetDefault("scheduler.pause_secs", 3)
	v.SetDefault("scheduler.import_threshold", 0.85)
	v.SetDefault("scheduler.review_threshold", 0.60)
	v.SetDefault("scheduler.eur_per_credit", 0.25)

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

// Validate checks that the settings required by a command are present.
func (c *Config) Validate(what string) error {
	switch what {
	case "store":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required (DISCOVERY_STORE_DATABASE_URL)")
		}
	case "run":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required (DISCOVERY_STORE_DATABASE_URL)")
		}
		if c.Research.BaseURL == "" {
			return eris.New("config: research.base_url is required (DISCOVERY_RESEARCH_BASE_URL)")
		}
	}
	return nil
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
