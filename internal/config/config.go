package config

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Azure    AzureConfig
	Security SecurityConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PoolConfig translates the database settings into a pgxpool configuration
func (d DatabaseConfig) PoolConfig() (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(d.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	if d.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(d.MaxOpenConns)
	}
	if d.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(d.MaxIdleConns)
	}
	if d.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = d.ConnMaxLifetime
	}

	return poolCfg, nil
}

// EngineConfig holds the external assessment engine configuration.
// An empty URL disables the engine and pins every session to local mode.
type EngineConfig struct {
	URL     string
	Timeout time.Duration
}

// AzureConfig holds Azure service configuration
type AzureConfig struct {
	OpenAI  OpenAIConfig
	Storage StorageConfig
}

// OpenAIConfig holds Azure OpenAI configuration. Optional: when unset, the
// free-text normalization of medication and allergy answers is skipped.
type OpenAIConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// StorageConfig holds Azure Blob Storage configuration
type StorageConfig struct {
	AccountName      string
	AccountKey       string
	ConnectionString string
	BlobEndpoint     string
	ReportContainer  string
}

// SecurityConfig holds the at-rest encryption settings
type SecurityConfig struct {
	// EncryptionKey must decode to 32 bytes; hex-encoded in the environment
	EncryptionKey string
}

// SessionConfig controls assessment session lifecycle
type SessionConfig struct {
	// MaxAge is how long an active session may idle before it expires
	MaxAge time.Duration
	// ExpirySweepInterval is how often the expiry sweep runs
	ExpirySweepInterval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// BuildLogger constructs a zap logger honoring the configured level and
// format. The environment picks the base preset: production gets sampling
// and ISO timestamps, everything else the development preset.
func (l LoggingConfig) BuildLogger(environment string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if l.Level != "" {
		level, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	switch l.Format {
	case "json":
		zapCfg.Encoding = "json"
	case "console":
		zapCfg.Encoding = "console"
	case "":
		// keep the preset's encoding
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or console)", l.Format)
	}

	return zapCfg.Build()
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// Engine defaults
	v.SetDefault("engine.timeout", 30*time.Second)

	// Azure Storage defaults
	v.SetDefault("azure.storage.reportcontainer", "assessment-reports")

	// Session defaults
	v.SetDefault("session.maxage", 24*time.Hour)
	v.SetDefault("session.expirysweepinterval", 15*time.Minute)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Assessment engine
	v.BindEnv("engine.url", "ASSESSMENT_ENGINE_URL", "BACKEND_URL")
	v.BindEnv("engine.timeout", "ASSESSMENT_ENGINE_TIMEOUT")

	// Azure OpenAI
	v.BindEnv("azure.openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("azure.openai.apikey", "AZURE_OPENAI_API_KEY")
	v.BindEnv("azure.openai.deployment", "AZURE_OPENAI_DEPLOYMENT")

	// Azure Storage
	v.BindEnv("azure.storage.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("azure.storage.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("azure.storage.connectionstring", "AZURE_STORAGE_CONNECTION_STRING")
	v.BindEnv("azure.storage.blobendpoint", "AZURE_STORAGE_BLOB_ENDPOINT")
	v.BindEnv("azure.storage.reportcontainer", "AZURE_STORAGE_REPORT_CONTAINER")

	// Security
	v.BindEnv("security.encryptionkey", "DATA_ENCRYPTION_KEY")

	// Session
	v.BindEnv("session.maxage", "SESSION_MAX_AGE")
	v.BindEnv("session.expirysweepinterval", "SESSION_EXPIRY_SWEEP_INTERVAL")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Security.EncryptionKey == "" {
		return fmt.Errorf("security.encryptionkey is required")
	}

	// OpenAI is optional but must be complete when any part is set
	o := c.Azure.OpenAI
	if (o.Endpoint != "" || o.APIKey != "" || o.Deployment != "") &&
		(o.Endpoint == "" || o.APIKey == "" || o.Deployment == "") {
		return fmt.Errorf("azure.openai requires endpoint, apikey and deployment together")
	}

	if c.Azure.Storage.ConnectionString == "" && (c.Azure.Storage.AccountName == "" || c.Azure.Storage.AccountKey == "") {
		return fmt.Errorf("azure storage credentials are required (either connection string or account name + key)")
	}

	return nil
}
