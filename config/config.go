package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultChatModel answers chat requests when CHAT_MODEL is unset.
const DefaultChatModel = "openai/gpt-4o-mini"

// Config is read once at startup from the environment, optionally seeded
// from the file named by ENV_FILE (".env" by default).
type Config struct {
	Environment   string
	Server        ServerConfig
	Database      *DatabaseConfig // nil unless DATABASE_URL or DB_HOST is set
	Audit         AuditConfig
	Providers     ProvidersConfig
	Chat          ChatConfig
	RateLimit     RateLimitConfig
	Corpus        CorpusConfig
	MCP           MCPConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Address is the listen address of the HTTP server.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig points at the PostgreSQL audit store. ConnectionString
// wins over the discrete fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LogString describes the target database without credentials.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString == "" {
		return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
	}
	u, err := url.Parse(c.ConnectionString)
	if err != nil || u.Host == "" {
		return "host=<from DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
}

// AuditConfig names the SQLite file chat turns go to when no PostgreSQL
// database is configured. Empty disables persistence.
type AuditConfig struct {
	SQLitePath string
}

type ProvidersConfig struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Ollama OllamaConfig
}

// OpenAIConfig also covers OpenAI-compatible servers reached via BaseURL.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey  string
	Timeout time.Duration
}

type OllamaConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

type ChatConfig struct {
	Model       string // "provider/model"
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// RateLimitConfig applies per client IP to the chat endpoints. Idle
// client buckets are dropped after TTL.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
	TTL               time.Duration
}

// CorpusConfig.Path names a YAML corpus. Empty selects the embedded one.
type CorpusConfig struct {
	Path string
}

// MCPConfig.Port serves MCP over streamable HTTP. Zero means stdio.
type MCPConfig struct {
	Port int
}

type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New loads and validates the configuration.
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(envString("ENV_FILE", ".env"))

	cfg := &Config{
		Environment: envString("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            envString("SERVER_HOST", "0.0.0.0"),
			Port:            envFirstInt(8080, "PORT", "SERVER_PORT"),
			ReadTimeout:     envDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    envDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: envDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: databaseFromEnv(),
		Audit:    AuditConfig{SQLitePath: envString("AUDIT_SQLITE_PATH", "")},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:  envString("OPENAI_API_KEY", ""),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Timeout: envDuration("OPENAI_TIMEOUT", time.Minute),
			},
			Gemini: GeminiConfig{
				APIKey:  envString("GEMINI_API_KEY", ""),
				Timeout: envDuration("GEMINI_TIMEOUT", time.Minute),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("OLLAMA_ENABLED", false),
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Timeout: envDuration("OLLAMA_TIMEOUT", 5*time.Minute),
			},
		},
		Chat: ChatConfig{
			Model:       envString("CHAT_MODEL", DefaultChatModel),
			Timeout:     envDuration("CHAT_TIMEOUT", 2*time.Minute),
			Temperature: envFloat("CHAT_TEMPERATURE", 0),
			MaxTokens:   envInt("CHAT_MAX_TOKENS", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:           envBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: envFloat("RATE_LIMIT_RPS", 1),
			Burst:             envInt("RATE_LIMIT_BURST", 5),
			TTL:               envDuration("RATE_LIMIT_TTL", 10*time.Minute),
		},
		Corpus: CorpusConfig{Path: envString("CORPUS_PATH", "")},
		MCP:    MCPConfig{Port: envInt("MCP_PORT", 0)},
		Observability: ObservabilityConfig{
			LogLevel:  envString("LOG_LEVEL", "info"),
			LogFormat: envString("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// databaseFromEnv returns nil when neither DATABASE_URL nor DB_HOST is set.
func databaseFromEnv() *DatabaseConfig {
	db := &DatabaseConfig{
		ConnectionString: envString("DATABASE_URL", ""),
		MaxOpenConns:     envInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     envInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if db.ConnectionString != "" {
		return db
	}

	db.Host = envString("DB_HOST", "")
	if db.Host == "" {
		return nil
	}
	db.Port = envInt("DB_PORT", 5432)
	db.User = envString("DB_USER", "")
	db.Password = envString("DB_PASSWORD", "")
	db.Database = envString("DB_NAME", "research_assistant")
	db.SSLMode = envString("DB_SSLMODE", "disable")
	return db
}

// Validate reports the first inconsistency found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if err := c.Database.validate(); err != nil {
		return err
	}

	provider, model, ok := strings.Cut(c.Chat.Model, "/")
	if !ok || provider == "" || model == "" {
		return fmt.Errorf("chat model %q must be of the form provider/model", c.Chat.Model)
	}
	if c.IsProduction() {
		if err := c.Providers.requireUsable(provider); err != nil {
			return fmt.Errorf("%w for chat model %s", err, c.Chat.Model)
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit requires positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if c.Observability.LogLevel == "" {
		return errors.New("log level is required")
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c == nil || c.ConnectionString != "" {
		return nil
	}
	if c.User == "" {
		return errors.New("database user is required")
	}
	if c.Database == "" {
		return errors.New("database name is required")
	}
	return nil
}

// requireUsable checks that provider has the credentials or switch it
// needs to be registered at startup.
func (p *ProvidersConfig) requireUsable(provider string) error {
	switch {
	case provider == "openai" && p.OpenAI.APIKey == "":
		return errors.New("OPENAI_API_KEY is required")
	case provider == "gemini" && p.Gemini.APIKey == "":
		return errors.New("GEMINI_API_KEY is required")
	case provider == "ollama" && !p.Ollama.Enabled:
		return errors.New("OLLAMA_ENABLED must be set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
