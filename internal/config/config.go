package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Log            LogConfig
	Extractor      ExtractorConfig
	Classification ClassificationConfig
	Intake         IntakeConfig
	S3             S3Config
	CORS           CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProxyConfig holds SOCKS5 proxy settings for outbound extractor traffic.
type ProxyConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Enabled reports whether a proxy host is configured.
func (p *ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// Address returns host:port of the proxy.
func (p *ProxyConfig) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ExtractorConfig holds settings for the structured-extraction provider.
type ExtractorConfig struct {
	Provider          string         `mapstructure:"provider"`
	APIKey            string         `mapstructure:"api_key"`
	Model             string         `mapstructure:"model"`
	Endpoint          string         `mapstructure:"endpoint"`
	TimeoutSecs       int            `mapstructure:"timeout_secs"`
	Temperature       float64        `mapstructure:"temperature"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second"`
	Burst             int            `mapstructure:"burst"`
	Proxy             ProxyConfig    `mapstructure:"proxy"`
	Fallback          FallbackConfig `mapstructure:"fallback"`
}

// FallbackConfig names a second provider tried when the primary one fails.
type FallbackConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// FallbackConfig returns the fallback provider settings, or nil if not configured.
// Timeout, temperature, rate and proxy settings are shared with the primary.
func (e *ExtractorConfig) FallbackConfig() *ExtractorConfig {
	if e.Fallback.Provider == "" {
		return nil
	}
	fb := *e
	fb.Provider = e.Fallback.Provider
	fb.APIKey = e.Fallback.APIKey
	fb.Model = e.Fallback.Model
	fb.Endpoint = e.Fallback.Endpoint
	fb.Fallback = FallbackConfig{}
	return &fb
}

// Timeout returns the per-call timeout, defaulting to 120s.
func (e *ExtractorConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// ClassificationConfig holds per-line classification settings.
type ClassificationConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// IntakeConfig holds settings for document discovery and report delivery.
type IntakeConfig struct {
	DocsDir      string `mapstructure:"docs_dir"`
	MessageLimit int    `mapstructure:"message_limit"`
}

// S3Config holds AWS S3 settings for report export.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	ReportPrefix  string `mapstructure:"report_prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the CUSTOMSDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CUSTOMSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 25)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Extractor defaults
	v.SetDefault("extractor.provider", "perplexity")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "sonar-pro")
	v.SetDefault("extractor.endpoint", "")
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.temperature", 0.2)
	v.SetDefault("extractor.requests_per_second", 0)
	v.SetDefault("extractor.burst", 4)
	v.SetDefault("extractor.proxy.host", "")
	v.SetDefault("extractor.proxy.port", 1080)
	v.SetDefault("extractor.proxy.user", "")
	v.SetDefault("extractor.proxy.password", "")
	v.SetDefault("extractor.fallback.provider", "")
	v.SetDefault("extractor.fallback.api_key", "")
	v.SetDefault("extractor.fallback.model", "")
	v.SetDefault("extractor.fallback.endpoint", "")

	// Classification defaults
	v.SetDefault("classification.concurrency", 4)

	// Intake defaults
	v.SetDefault("intake.docs_dir", "./docs")
	v.SetDefault("intake.message_limit", 4000)

	// S3 defaults (empty bucket disables report export)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.report_prefix", "reports")
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys. The unprefixed
	// names are accepted so existing .env files keep working.
	envBindings := map[string][]string{
		"server.port":                   {"CUSTOMSDESK_SERVER_PORT"},
		"server.read_timeout":           {"CUSTOMSDESK_SERVER_READ_TIMEOUT"},
		"server.write_timeout":          {"CUSTOMSDESK_SERVER_WRITE_TIMEOUT"},
		"server.environment":            {"CUSTOMSDESK_SERVER_ENVIRONMENT"},
		"server.max_upload_mb":          {"CUSTOMSDESK_SERVER_MAX_UPLOAD_MB"},
		"log.level":                     {"CUSTOMSDESK_LOG_LEVEL"},
		"log.format":                    {"CUSTOMSDESK_LOG_FORMAT"},
		"extractor.provider":            {"CUSTOMSDESK_EXTRACTOR_PROVIDER"},
		"extractor.api_key":             {"CUSTOMSDESK_EXTRACTOR_API_KEY", "PPLX_API_KEY"},
		"extractor.model":               {"CUSTOMSDESK_EXTRACTOR_MODEL"},
		"extractor.endpoint":            {"CUSTOMSDESK_EXTRACTOR_ENDPOINT"},
		"extractor.timeout_secs":        {"CUSTOMSDESK_EXTRACTOR_TIMEOUT_SECS"},
		"extractor.temperature":         {"CUSTOMSDESK_EXTRACTOR_TEMPERATURE"},
		"extractor.requests_per_second": {"CUSTOMSDESK_EXTRACTOR_REQUESTS_PER_SECOND"},
		"extractor.burst":               {"CUSTOMSDESK_EXTRACTOR_BURST"},
		"extractor.proxy.host":          {"CUSTOMSDESK_EXTRACTOR_PROXY_HOST", "PROXY_HOST"},
		"extractor.proxy.port":          {"CUSTOMSDESK_EXTRACTOR_PROXY_PORT", "PROXY_PORT"},
		"extractor.proxy.user":          {"CUSTOMSDESK_EXTRACTOR_PROXY_USER", "PROXY_USER"},
		"extractor.proxy.password":      {"CUSTOMSDESK_EXTRACTOR_PROXY_PASSWORD", "PROXY_PASSWORD"},
		"extractor.fallback.provider":   {"CUSTOMSDESK_EXTRACTOR_FALLBACK_PROVIDER"},
		"extractor.fallback.api_key":    {"CUSTOMSDESK_EXTRACTOR_FALLBACK_API_KEY", "GEMINI_API_KEY"},
		"extractor.fallback.model":      {"CUSTOMSDESK_EXTRACTOR_FALLBACK_MODEL"},
		"extractor.fallback.endpoint":   {"CUSTOMSDESK_EXTRACTOR_FALLBACK_ENDPOINT"},
		"classification.concurrency":    {"CUSTOMSDESK_CLASSIFICATION_CONCURRENCY"},
		"intake.docs_dir":               {"CUSTOMSDESK_INTAKE_DOCS_DIR"},
		"intake.message_limit":          {"CUSTOMSDESK_INTAKE_MESSAGE_LIMIT"},
		"s3.region":                     {"CUSTOMSDESK_S3_REGION"},
		"s3.bucket":                     {"CUSTOMSDESK_S3_BUCKET"},
		"s3.endpoint":                   {"CUSTOMSDESK_S3_ENDPOINT"},
		"s3.access_key":                 {"CUSTOMSDESK_S3_ACCESS_KEY"},
		"s3.secret_key":                 {"CUSTOMSDESK_S3_SECRET_KEY"},
		"s3.report_prefix":              {"CUSTOMSDESK_S3_REPORT_PREFIX"},
		"s3.presign_expiry":             {"CUSTOMSDESK_S3_PRESIGN_EXPIRY"},
		"cors.allowed_origins":          {"CUSTOMSDESK_CORS_ALLOWED_ORIGINS"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if CUSTOMSDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CUSTOMSDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:          v.GetString("extractor.provider"),
		APIKey:            v.GetString("extractor.api_key"),
		Model:             v.GetString("extractor.model"),
		Endpoint:          v.GetString("extractor.endpoint"),
		TimeoutSecs:       v.GetInt("extractor.timeout_secs"),
		Temperature:       v.GetFloat64("extractor.temperature"),
		RequestsPerSecond: v.GetFloat64("extractor.requests_per_second"),
		Burst:             v.GetInt("extractor.burst"),
		Proxy: ProxyConfig{
			Host:     v.GetString("extractor.proxy.host"),
			Port:     v.GetInt("extractor.proxy.port"),
			User:     v.GetString("extractor.proxy.user"),
			Password: v.GetString("extractor.proxy.password"),
		},
		Fallback: FallbackConfig{
			Provider: v.GetString("extractor.fallback.provider"),
			APIKey:   v.GetString("extractor.fallback.api_key"),
			Model:    v.GetString("extractor.fallback.model"),
			Endpoint: v.GetString("extractor.fallback.endpoint"),
		},
	}
	cfg.Classification = ClassificationConfig{
		Concurrency: v.GetInt("classification.concurrency"),
	}
	cfg.Intake = IntakeConfig{
		DocsDir:      v.GetString("intake.docs_dir"),
		MessageLimit: v.GetInt("intake.message_limit"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		ReportPrefix:  v.GetString("s3.report_prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
