// Package config loads application settings from an optional YAML file and environment overrides.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "COMPETITOR_CONFIG"

	envDatabaseDriver = "DB_DRIVER"
	envDatabaseDSN    = "DATABASE_DSN"
	envDBUser         = "DB_USER"
	envDBPassword     = "DB_PASSWORD"
	envDBName         = "DB_NAME"
	envDBHost         = "DB_HOST"
	envDBPort         = "DB_PORT"
	envDBInstance     = "INSTANCE_CONNECTION_NAME"
	envRunMigrations  = "RUN_MIGRATIONS"

	envRedisHost     = "REDIS_HOST"
	envRedisPort     = "REDIS_PORT"
	envRedisPassword = "REDIS_PASSWORD"

	envPerplexityAPIKey = "PERPLEXITY_API_KEY"
	envNewsAPIKey       = "NEWSAPI_API_KEY"
	envGeminiAPIKey     = "GEMINI_API_KEY"
	envGeminiModel      = "GEMINI_MODEL"
	envJWTSecret        = "JWT_SECRET"
	envLogLevel         = "LOG_LEVEL"
	envServerAddr       = "SERVER_ADDR"
	envFetchConcurrency = "FETCH_CONCURRENCY"
)

// Config holds every setting the server and ingest commands need.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Connectors ConnectorsConfig `yaml:"connectors"`
	Fetch      FetchConfig      `yaml:"fetch"`
	AI         AIConfig         `yaml:"ai"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the gorm driver and its connection details.
// Driver is "postgres" or "sqlite". When DSN is empty the postgres DSN is built from the parts.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	DSN            string        `yaml:"dsn"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	InstanceName   string        `yaml:"instanceName"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	RunMigrations  bool          `yaml:"runMigrations"`
}

// RedisConfig describes the optional cache.
type RedisConfig struct {
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

// ConnectorsConfig lists the source connectors in priority order and their settings.
type ConnectorsConfig struct {
	Order      []string         `yaml:"order"`
	Perplexity PerplexityConfig `yaml:"perplexity"`
	NewsAPI    NewsAPIConfig    `yaml:"newsapi"`
	GoogleNews GoogleNewsConfig `yaml:"googlenews"`
}

// PerplexityConfig configures the premium aggregator connector.
type PerplexityConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerMin int           `yaml:"requestsPerMinute"`
}

// NewsAPIConfig configures the traditional news API connector.
type NewsAPIConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Language       string        `yaml:"language"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerMin int           `yaml:"requestsPerMinute"`
}

// GoogleNewsConfig configures the free RSS fallback connector.
type GoogleNewsConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	Language       string        `yaml:"language"`
	Country        string        `yaml:"country"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerMin int           `yaml:"requestsPerMinute"`
}

// FetchConfig tunes the fallback chain and the multi-organization worker pool.
type FetchConfig struct {
	Concurrency         int           `yaml:"concurrency"`
	RetryBackoff        time.Duration `yaml:"retryBackoff"`
	MaxBackoff          time.Duration `yaml:"maxBackoff"`
	CallTimeout         time.Duration `yaml:"callTimeout"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	DefaultDays         int           `yaml:"defaultDays"`
	DefaultMaxResults   int           `yaml:"defaultMaxResults"`
}

// AIConfig configures the optional Gemini capability.
type AIConfig struct {
	GeminiAPIKey     string        `yaml:"geminiApiKey"`
	Model            string        `yaml:"model"`
	Timeout          time.Duration `yaml:"timeout"`
	SentimentEnabled bool          `yaml:"sentimentEnabled"`
	SummaryEnabled   bool          `yaml:"summaryEnabled"`
	// SummaryWords is the word budget for per-update summaries.
	SummaryWords int `yaml:"summaryWords"`
}

// AnalysisConfig tunes the impact analyzer.
type AnalysisConfig struct {
	WindowDays       int     `yaml:"windowDays"`
	VelocityBaseline float64 `yaml:"velocityBaseline"`
}

// AuthConfig holds the API token secret.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwtSecret"`
	TokenLifetime time.Duration `yaml:"tokenLifetime"`
}

// LoggingConfig holds the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "error", err)
		} else if fileCfg, err := Parse(raw); err != nil {
			slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "error", err)
		} else {
			cfg = merge(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document into a Config without applying defaults.
func Parse(raw []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{
			Driver:         "postgres",
			Port:           "5432",
			ConnectTimeout: 60 * time.Second,
		},
		Redis: RedisConfig{TTL: 10 * time.Minute},
		Connectors: ConnectorsConfig{
			Order: []string{"perplexity", "newsapi", "googlenews"},
			Perplexity: PerplexityConfig{
				BaseURL:        "https://api.perplexity.ai",
				Model:          "sonar",
				Timeout:        30 * time.Second,
				RequestsPerMin: 20,
			},
			NewsAPI: NewsAPIConfig{
				BaseURL:        "https://newsapi.org",
				Language:       "en",
				Timeout:        10 * time.Second,
				RequestsPerMin: 30,
			},
			GoogleNews: GoogleNewsConfig{
				BaseURL:        "https://news.google.com",
				Language:       "en-US",
				Country:        "US",
				Timeout:        10 * time.Second,
				RequestsPerMin: 30,
			},
		},
		Fetch: FetchConfig{
			Concurrency:         3,
			RetryBackoff:        500 * time.Millisecond,
			MaxBackoff:          5 * time.Second,
			CallTimeout:         15 * time.Second,
			SimilarityThreshold: 0.85,
			DefaultDays:         7,
			DefaultMaxResults:   20,
		},
		AI: AIConfig{
			Model:        "gemini-2.5-flash",
			Timeout:      30 * time.Second,
			SummaryWords: 50,
		},
		Analysis: AnalysisConfig{
			WindowDays:       30,
			VelocityBaseline: 1.0,
		},
		Auth:    AuthConfig{TokenLifetime: 24 * time.Hour},
		Logging: LoggingConfig{Level: "info"},
	}
}

// merge overlays every non-zero field of override onto base.
func merge(base, override Config) Config {
	setStr(&base.Server.Addr, override.Server.Addr)

	d, od := &base.Database, override.Database
	setStr(&d.Driver, od.Driver)
	setStr(&d.DSN, od.DSN)
	setStr(&d.User, od.User)
	setStr(&d.Password, od.Password)
	setStr(&d.Name, od.Name)
	setStr(&d.Host, od.Host)
	setStr(&d.Port, od.Port)
	setStr(&d.InstanceName, od.InstanceName)
	setDur(&d.ConnectTimeout, od.ConnectTimeout)
	d.RunMigrations = d.RunMigrations || od.RunMigrations

	r, or := &base.Redis, override.Redis
	setStr(&r.Host, or.Host)
	setStr(&r.Port, or.Port)
	setStr(&r.Password, or.Password)
	setDur(&r.TTL, or.TTL)

	cn, ocn := &base.Connectors, override.Connectors
	if len(ocn.Order) > 0 {
		cn.Order = ocn.Order
	}
	setStr(&cn.Perplexity.APIKey, ocn.Perplexity.APIKey)
	setStr(&cn.Perplexity.BaseURL, ocn.Perplexity.BaseURL)
	setStr(&cn.Perplexity.Model, ocn.Perplexity.Model)
	setDur(&cn.Perplexity.Timeout, ocn.Perplexity.Timeout)
	setInt(&cn.Perplexity.RequestsPerMin, ocn.Perplexity.RequestsPerMin)
	setStr(&cn.NewsAPI.APIKey, ocn.NewsAPI.APIKey)
	setStr(&cn.NewsAPI.BaseURL, ocn.NewsAPI.BaseURL)
	setStr(&cn.NewsAPI.Language, ocn.NewsAPI.Language)
	setDur(&cn.NewsAPI.Timeout, ocn.NewsAPI.Timeout)
	setInt(&cn.NewsAPI.RequestsPerMin, ocn.NewsAPI.RequestsPerMin)
	setStr(&cn.GoogleNews.BaseURL, ocn.GoogleNews.BaseURL)
	setStr(&cn.GoogleNews.Language, ocn.GoogleNews.Language)
	setStr(&cn.GoogleNews.Country, ocn.GoogleNews.Country)
	setDur(&cn.GoogleNews.Timeout, ocn.GoogleNews.Timeout)
	setInt(&cn.GoogleNews.RequestsPerMin, ocn.GoogleNews.RequestsPerMin)

	f, of := &base.Fetch, override.Fetch
	setInt(&f.Concurrency, of.Concurrency)
	setDur(&f.RetryBackoff, of.RetryBackoff)
	setDur(&f.MaxBackoff, of.MaxBackoff)
	setDur(&f.CallTimeout, of.CallTimeout)
	if of.SimilarityThreshold > 0 {
		f.SimilarityThreshold = of.SimilarityThreshold
	}
	setInt(&f.DefaultDays, of.DefaultDays)
	setInt(&f.DefaultMaxResults, of.DefaultMaxResults)

	a, oa := &base.AI, override.AI
	setStr(&a.GeminiAPIKey, oa.GeminiAPIKey)
	setStr(&a.Model, oa.Model)
	setDur(&a.Timeout, oa.Timeout)
	a.SentimentEnabled = a.SentimentEnabled || oa.SentimentEnabled
	a.SummaryEnabled = a.SummaryEnabled || oa.SummaryEnabled
	setInt(&a.SummaryWords, oa.SummaryWords)

	setInt(&base.Analysis.WindowDays, override.Analysis.WindowDays)
	if override.Analysis.VelocityBaseline > 0 {
		base.Analysis.VelocityBaseline = override.Analysis.VelocityBaseline
	}

	setStr(&base.Auth.JWTSecret, override.Auth.JWTSecret)
	setDur(&base.Auth.TokenLifetime, override.Auth.TokenLifetime)
	setStr(&base.Logging.Level, override.Logging.Level)
	return base
}

func (c *Config) applyEnvOverrides() {
	envStr(&c.Database.Driver, envDatabaseDriver)
	envStr(&c.Database.DSN, envDatabaseDSN)
	envStr(&c.Database.User, envDBUser)
	envStr(&c.Database.Password, envDBPassword)
	envStr(&c.Database.Name, envDBName)
	envStr(&c.Database.Host, envDBHost)
	envStr(&c.Database.Port, envDBPort)
	envStr(&c.Database.InstanceName, envDBInstance)
	if strings.EqualFold(os.Getenv(envRunMigrations), "true") {
		c.Database.RunMigrations = true
	}

	envStr(&c.Redis.Host, envRedisHost)
	envStr(&c.Redis.Port, envRedisPort)
	envStr(&c.Redis.Password, envRedisPassword)

	envStr(&c.Connectors.Perplexity.APIKey, envPerplexityAPIKey)
	envStr(&c.Connectors.NewsAPI.APIKey, envNewsAPIKey)
	envStr(&c.AI.GeminiAPIKey, envGeminiAPIKey)
	envStr(&c.AI.Model, envGeminiModel)
	envStr(&c.Auth.JWTSecret, envJWTSecret)
	envStr(&c.Logging.Level, envLogLevel)
	envStr(&c.Server.Addr, envServerAddr)

	if v := os.Getenv(envFetchConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Fetch.Concurrency = n
		} else {
			slog.Warn("config: ignoring invalid value", "env", envFetchConcurrency, "value", v)
		}
	}
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDur(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
