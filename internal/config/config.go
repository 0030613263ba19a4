package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Log level constants
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Config is the root configuration for the resort agents service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Logger   LoggerSettings `mapstructure:"logger" validate:"required"`
	LLM      LLMSettings    `mapstructure:"llm" validate:"required"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Agents   AgentsConfig   `mapstructure:"agents" validate:"required"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port" validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	SlowRequest       time.Duration `mapstructure:"slow_request"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	AdminEmails       []string      `mapstructure:"admin_emails"`
	APIRatePerMinute  int           `mapstructure:"api_rate_per_minute" validate:"gte=0"`
	BookRatePerMinute int           `mapstructure:"book_rate_per_minute" validate:"gte=0"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggerSettings holds configuration settings for logging, including log level, type and file path
type LoggerSettings struct {
	LogLevel   string `mapstructure:"log_level" validate:"required,oneof=debug info warning error"`
	LogType    string `mapstructure:"log_type" validate:"required,oneof=console file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Validate checks that all fields in LoggerSettings are valid
func (s *LoggerSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggerSettings: %w", err)
	}

	if s.LogType == LogTypeFile {
		if s.FilePath == "" {
			return fmt.Errorf("file path is required for file logger")
		}
		if s.MaxSize < 1 || s.MaxSize > 100 {
			return fmt.Errorf("max size must be between 1 and 100 MB")
		}
		if s.MaxBackups < 1 || s.MaxBackups > 10 {
			return fmt.Errorf("max backups must be between 1 and 10")
		}
		if s.MaxAge < 1 || s.MaxAge > 365 {
			return fmt.Errorf("max age must be between 1 and 365 days")
		}
	}
	return nil
}

// LLMSettings selects and tunes the language model provider.
type LLMSettings struct {
	Enabled    bool   `mapstructure:"enabled"`
	LogCalls   bool   `mapstructure:"log_calls"`
	Provider   string `mapstructure:"provider" validate:"required,oneof=grok anthropic gemini"`
	Endpoint   string `mapstructure:"endpoint"`
	Model      string `mapstructure:"model"`
	TimeoutMs  int    `mapstructure:"timeout_ms" validate:"gte=0"`
	MaxRetries int    `mapstructure:"max_retries" validate:"gte=0,lte=5"`

	// APIKey overrides the provider key below when set.
	APIKey          string `mapstructure:"api_key"`
	GrokAPIKey      string `mapstructure:"grok_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
}

// ProviderKey returns the credential for the selected provider.
func (s LLMSettings) ProviderKey() string {
	if s.APIKey != "" {
		return s.APIKey
	}
	switch s.Provider {
	case "anthropic":
		return s.AnthropicAPIKey
	case "gemini":
		return s.GeminiAPIKey
	default:
		return s.GrokAPIKey
	}
}

type WhatsAppConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromNumber string `mapstructure:"from_number"`
	APIBase    string `mapstructure:"api_base"`
	WebhookURL string `mapstructure:"webhook_url"`
	// SendsPerSecond throttles bulk proactive sends.
	SendsPerSecond float64 `mapstructure:"sends_per_second" validate:"gte=0"`
}

type PaymentsConfig struct {
	SquareApplicationID string `mapstructure:"square_application_id"`
	SquareAccessToken   string `mapstructure:"square_access_token"`
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	StripeAPIBase       string `mapstructure:"stripe_api_base"`
}

type SecretsConfig struct {
	CronSecret string `mapstructure:"cron_secret"`
	N8NSecret  string `mapstructure:"n8n_secret"`
}

// AgentsConfig tunes the agent loops. A ScanCacheSize of -1 turns off the
// price scan cache.
type AgentsConfig struct {
	MaxIterations int           `mapstructure:"max_iterations" validate:"gte=1,lte=10"`
	MinScore      float64       `mapstructure:"min_score" validate:"gte=0,lte=1"`
	ScanCacheTTL  time.Duration `mapstructure:"scan_cache_ttl"`
	ScanCacheSize int           `mapstructure:"scan_cache_size" validate:"gte=-1"`
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: Field: %s, Tag: %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.Logger.Validate()
}

// Load reads configuration in layers: defaults, the user config file, the
// project config file (explicit path or ./linapoint.yaml), then environment.
// Missing config files are not an error.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := path
	if projectConfig == "" {
		projectConfig = findProjectConfig()
	}
	if projectConfig != "" {
		pv := viper.New()
		pv.SetConfigFile(projectConfig)
		if err := pv.ReadInConfig(); err != nil {
			if path != "" {
				return nil, nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else {
			if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
				return nil, nil, fmt.Errorf("merging project config: %w", err)
			}
			v.SetConfigFile(projectConfig)
		}
	}

	v.SetEnvPrefix("LINAPOINT")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindProviderEnv(v)

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.slow_request", 2*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.admin_emails", []string{})
	v.SetDefault("server.api_rate_per_minute", 100)
	v.SetDefault("server.book_rate_per_minute", 20)

	v.SetDefault("database.path", defaultDBPath())

	v.SetDefault("logger.log_level", LogLevelInfo)
	v.SetDefault("logger.log_type", LogTypeConsole)
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.log_calls", true)
	v.SetDefault("llm.provider", "grok")
	v.SetDefault("llm.endpoint", "https://api.x.ai/v1")
	v.SetDefault("llm.model", "grok-beta")
	v.SetDefault("llm.timeout_ms", 20000)
	v.SetDefault("llm.max_retries", 1)

	v.SetDefault("whatsapp.from_number", "whatsapp:+14155238886")
	v.SetDefault("whatsapp.api_base", "https://api.twilio.com")
	v.SetDefault("whatsapp.sends_per_second", 1.0)

	v.SetDefault("payments.stripe_api_base", "https://api.stripe.com")

	v.SetDefault("agents.max_iterations", 3)
	v.SetDefault("agents.min_score", 0.8)
	v.SetDefault("agents.scan_cache_ttl", 5*time.Minute)
	v.SetDefault("agents.scan_cache_size", 128)
}

// bindProviderEnv maps the conventional provider variable names onto config keys.
func bindProviderEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", "LINAPOINT_LLM_API_KEY")
	_ = v.BindEnv("llm.grok_api_key", "GROK_API_KEY", "XAI_API_KEY")
	_ = v.BindEnv("llm.anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("whatsapp.account_sid", "TWILIO_ACCOUNT_SID")
	_ = v.BindEnv("whatsapp.auth_token", "TWILIO_AUTH_TOKEN")
	_ = v.BindEnv("whatsapp.from_number", "TWILIO_WHATSAPP_NUMBER")
	_ = v.BindEnv("payments.stripe_secret_key", "STRIPE_SECRET_KEY")
	_ = v.BindEnv("payments.stripe_webhook_secret", "STRIPE_WEBHOOK_SECRET")
	_ = v.BindEnv("payments.square_application_id", "SQUARE_APPLICATION_ID")
	_ = v.BindEnv("payments.square_access_token", "SQUARE_ACCESS_TOKEN")
	_ = v.BindEnv("secrets.cron_secret", "CRON_SECRET")
	_ = v.BindEnv("secrets.n8n_secret", "N8N_WEBHOOK_SECRET", "N8N_SECRET")
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "linapoint")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linapoint"
	}
	return filepath.Join(home, ".config", "linapoint")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linapoint.db"
	}
	return filepath.Join(home, ".linapoint", "linapoint.db")
}

// findProjectConfig walks up from the working directory looking for linapoint.yaml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "linapoint.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
