package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FISBENCH"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Redis      RedisConfig
	Log        LogConfig
	CORS       CORSConfig
	LLM        LLMConfig
	OCR        OCRConfig
	Accounting AccountingConfig
	Upload     UploadConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMProviderConfig holds settings for a single chat-completion provider.
type LLMProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	MaxRetries   int     `mapstructure:"max_retries"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// LLMConfig holds the normalization LLM settings. Fallback is optional.
type LLMConfig struct {
	Primary  LLMProviderConfig `mapstructure:"primary"`
	Fallback LLMProviderConfig `mapstructure:"fallback"`
}

// FallbackConfig returns the fallback provider config, or nil if not configured.
func (l *LLMConfig) FallbackConfig() *LLMProviderConfig {
	if l.Fallback.Provider != "" {
		return &l.Fallback
	}
	return nil
}

// OCRConfig holds OCR provider credentials and endpoints.
type OCRConfig struct {
	Enabled []string `mapstructure:"enabled"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	PaddleEndpoint string `mapstructure:"paddle_endpoint"`

	AWSRegion    string `mapstructure:"aws_region"`
	AWSAccessKey string `mapstructure:"aws_access_key"`
	AWSSecretKey string `mapstructure:"aws_secret_key"`

	DocAIProjectID       string `mapstructure:"docai_project_id"`
	DocAILocation        string `mapstructure:"docai_location"`
	DocAIProcessorID     string `mapstructure:"docai_processor_id"`
	DocAICredentialsFile string `mapstructure:"docai_credentials_file"`

	TimeoutSecs int           `mapstructure:"timeout_secs"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// AccountingConfig holds normalization pipeline settings.
type AccountingConfig struct {
	SchemaCutoff   int           `mapstructure:"schema_cutoff"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	PreviewLength  int           `mapstructure:"preview_length"`
}

// UploadConfig holds receipt upload limits.
type UploadConfig struct {
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxSizeMB * 1024 * 1024
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds receipt image storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// RedisConfig holds OCR cache connection settings. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.port":          ":8080",
	"server.read_timeout":  "30s",
	"server.write_timeout": "120s",
	"server.environment":   "development",

	"db.host":     "localhost",
	"db.port":     5432,
	"db.user":     "fisbench",
	"db.password": "fisbench_secret",
	"db.name":     "fisbench",
	"db.sslmode":  "disable",
	"db.max_open": 25,
	"db.max_idle": 10,

	"s3.region":         "eu-central-1",
	"s3.bucket":         "fisbench-receipts",
	"s3.endpoint":       "",
	"s3.access_key":     "",
	"s3.secret_key":     "",
	"s3.presign_expiry": 3600,

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "debug",
	"log.format": "console",

	"cors.allowed_origins": "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173",

	"llm.primary.provider":      "openai",
	"llm.primary.api_key":       "",
	"llm.primary.default_model": "gpt-4o-mini",
	"llm.primary.max_retries":   2,
	"llm.primary.timeout_secs":  60,
	"llm.primary.temperature":   0.1,
	"llm.primary.max_tokens":    3000,

	"llm.fallback.provider":      "",
	"llm.fallback.api_key":       "",
	"llm.fallback.default_model": "",
	"llm.fallback.max_retries":   2,
	"llm.fallback.timeout_secs":  60,
	"llm.fallback.temperature":   0.1,
	"llm.fallback.max_tokens":    3000,

	"ocr.enabled":                "openai_vision",
	"ocr.openai_api_key":         "",
	"ocr.openai_model":           "gpt-4o-mini",
	"ocr.paddle_endpoint":        "http://localhost:8001",
	"ocr.aws_region":             "eu-central-1",
	"ocr.aws_access_key":         "",
	"ocr.aws_secret_key":         "",
	"ocr.docai_project_id":       "",
	"ocr.docai_location":         "eu",
	"ocr.docai_processor_id":     "",
	"ocr.docai_credentials_file": "",
	"ocr.timeout_secs":           60,
	"ocr.cache_ttl":              "24h",

	"accounting.schema_cutoff":   23,
	"accounting.batch_timeout":   "60s",
	"accounting.max_concurrency": 4,
	"accounting.preview_length":  500,

	"upload.max_size_mb": 20,
}

// envName maps a config key to its environment variable, e.g.
// llm.primary.api_key -> FISBENCH_LLM_PRIMARY_API_KEY.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from environment variables with the FISBENCH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind environment variables explicitly so nested keys resolve
	for key, def := range defaults {
		v.SetDefault(key, def)
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it if FISBENCH_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.LLM = LLMConfig{
		Primary:  providerConfig(v, "llm.primary"),
		Fallback: providerConfig(v, "llm.fallback"),
	}
	cfg.OCR = OCRConfig{
		Enabled:              splitList(v.GetString("ocr.enabled")),
		OpenAIAPIKey:         v.GetString("ocr.openai_api_key"),
		OpenAIModel:          v.GetString("ocr.openai_model"),
		PaddleEndpoint:       v.GetString("ocr.paddle_endpoint"),
		AWSRegion:            v.GetString("ocr.aws_region"),
		AWSAccessKey:         v.GetString("ocr.aws_access_key"),
		AWSSecretKey:         v.GetString("ocr.aws_secret_key"),
		DocAIProjectID:       v.GetString("ocr.docai_project_id"),
		DocAILocation:        v.GetString("ocr.docai_location"),
		DocAIProcessorID:     v.GetString("ocr.docai_processor_id"),
		DocAICredentialsFile: v.GetString("ocr.docai_credentials_file"),
		TimeoutSecs:          v.GetInt("ocr.timeout_secs"),
		CacheTTL:             v.GetDuration("ocr.cache_ttl"),
	}
	cfg.Accounting = AccountingConfig{
		SchemaCutoff:   v.GetInt("accounting.schema_cutoff"),
		BatchTimeout:   v.GetDuration("accounting.batch_timeout"),
		MaxConcurrency: v.GetInt("accounting.max_concurrency"),
		PreviewLength:  v.GetInt("accounting.preview_length"),
	}
	cfg.Upload = UploadConfig{
		MaxSizeMB: v.GetInt64("upload.max_size_mb"),
	}

	if cfg.Accounting.SchemaCutoff < 1 {
		return nil, fmt.Errorf("accounting.schema_cutoff must be >= 1, got %d", cfg.Accounting.SchemaCutoff)
	}
	if cfg.Accounting.MaxConcurrency < 1 {
		cfg.Accounting.MaxConcurrency = 1
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) LLMProviderConfig {
	return LLMProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Temperature:  v.GetFloat64(prefix + ".temperature"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
