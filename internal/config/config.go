package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "MONEY"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Upload     UploadConfig     `yaml:"upload" envconfig:"UPLOAD"`
	Extraction ExtractionConfig `yaml:"extraction" envconfig:"EXTRACTION"`
	Excel      ExcelConfig      `yaml:"excel" envconfig:"EXCEL"`
	CORS       CORSConfig       `yaml:"cors" envconfig:"CORS"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
	OTel       OTelConfig       `yaml:"otel" envconfig:"OTEL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	// RequestTimeout bounds a single conversion, extraction included.
	RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true"`
	Format   string `yaml:"format" split_words:"true"`
	Output   string `yaml:"output" split_words:"true"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// UploadConfig governs accepted documents and where they are staged.
type UploadConfig struct {
	Dir               string   `yaml:"dir" split_words:"true"`
	MaxBytes          int64    `yaml:"max_bytes" split_words:"true"`
	AllowedExtensions []string `yaml:"allowed_extensions" split_words:"true"`
	// MaxTextBytes caps the body of a direct text conversion.
	MaxTextBytes int64 `yaml:"max_text_bytes" split_words:"true"`
}

// ExtractionConfig configures the document-parsing and record-extraction providers.
type ExtractionConfig struct {
	Mode string `yaml:"mode" split_words:"true"`

	LlamaCloudAPIKey  string        `yaml:"llama_cloud_api_key" envconfig:"LLAMA_CLOUD_API_KEY"`
	LlamaParseBaseURL string        `yaml:"llama_parse_base_url" split_words:"true"`
	PremiumMode       bool          `yaml:"premium_mode" split_words:"true"`
	PollInterval      time.Duration `yaml:"poll_interval" split_words:"true"`
	ParseTimeout      time.Duration `yaml:"parse_timeout" split_words:"true"`

	GeminiAPIKey      string  `yaml:"gemini_api_key" envconfig:"GEMINI_API_KEY"`
	GeminiModel       string  `yaml:"gemini_model" split_words:"true"`
	GeminiTemperature float32 `yaml:"gemini_temperature" split_words:"true"`
}

// ExtractionMode returns the configured mode as a domain value.
func (e ExtractionConfig) ExtractionMode() domain.ExtractionMode {
	return domain.ExtractionMode(strings.ToLower(e.Mode))
}

// ExcelConfig controls workbook rendering.
type ExcelConfig struct {
	Styled bool `yaml:"styled" split_words:"true"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	FrontendOrigin string   `yaml:"frontend_origin" envconfig:"FRONTEND_ORIGIN"`
	ExtraOrigins   []string `yaml:"extra_origins" split_words:"true"`
}

// Origins returns the frontend origin followed by the extra origins, without duplicates.
func (c CORSConfig) Origins() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range append([]string{c.FrontendOrigin}, c.ExtraOrigins...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" split_words:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled         bool          `yaml:"enabled" split_words:"true"`
	ReadBufferSize  int           `yaml:"read_buffer_size" split_words:"true"`
	WriteBufferSize int           `yaml:"write_buffer_size" split_words:"true"`
	PingPeriod      time.Duration `yaml:"ping_period" split_words:"true"`
	PongWait        time.Duration `yaml:"pong_wait" split_words:"true"`
}

// OTelConfig selects tracing and metrics exporters.
type OTelConfig struct {
	ServiceName    string  `yaml:"service_name" split_words:"true"`
	Environment    string  `yaml:"environment" split_words:"true"`
	TraceExporter  string  `yaml:"trace_exporter" split_words:"true"`
	MetricExporter string  `yaml:"metric_exporter" split_words:"true"`
	EnableTracing  bool    `yaml:"enable_tracing" split_words:"true"`
	EnableMetrics  bool    `yaml:"enable_metrics" split_words:"true"`
	SampleRatio    float64 `yaml:"sample_ratio" split_words:"true"`
}

// Default returns the built-in configuration. Load layers files and
// environment variables on top of it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    6 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			Dir:               "uploads",
			MaxBytes:          20 << 20,
			AllowedExtensions: []string{".pdf"},
			MaxTextBytes:      5 << 20,
		},
		Extraction: ExtractionConfig{
			Mode:              string(domain.ExtractionModeAuto),
			LlamaParseBaseURL: "https://api.cloud.llamaindex.ai",
			PremiumMode:       true,
			PollInterval:      2 * time.Second,
			ParseTimeout:      4 * time.Minute,
			GeminiModel:       "gemini-2.5-flash",
			GeminiTemperature: 0.1,
		},
		Excel: ExcelConfig{Styled: true},
		CORS: CORSConfig{
			FrontendOrigin: "http://localhost:3000",
			ExtraOrigins:   []string{"http://127.0.0.1:3000"},
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		OTel: OTelConfig{
			ServiceName:    "money-stories-api",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			EnableTracing:  false,
			EnableMetrics:  true,
			SampleRatio:    1.0,
		},
	}
}

// Load builds the configuration from defaults, a .env file, an optional
// YAML file and MONEY_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFrom(".env", getConfigFilePath())
}

// LoadFrom is Load with explicit .env and YAML paths. Missing files are skipped.
func LoadFrom(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// No default tags: only variables that are present override.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the configuration file path
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// Validate checks the configuration for values the server cannot run with.
// Missing provider credentials are not an error here; they surface per request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "stderr", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}
	if c.Upload.MaxTextBytes <= 0 {
		return fmt.Errorf("text max bytes must be positive")
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload dir is required")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}

	if !c.Extraction.ExtractionMode().Valid() {
		return fmt.Errorf("invalid extraction mode: %s", c.Extraction.Mode)
	}
	if c.Extraction.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be within [0, 1]: %v", c.OTel.SampleRatio)
	}
	return nil
}
