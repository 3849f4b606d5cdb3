package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Batch directories
	InputDir   string   `yaml:"input_dir"`
	OutputDir  string   `yaml:"output_dir"`
	Extensions []string `yaml:"extensions"`

	// Worker pool
	WorkerCount  int  `yaml:"worker_count"`
	MaxQueueSize int  `yaml:"max_queue_size"`
	FailFast     bool `yaml:"fail_fast"`

	// Heading heuristic
	MaxHeadingWords int     `yaml:"max_heading_words"`
	SizeTolerance   float64 `yaml:"size_tolerance"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	// HTTP server
	Port           string        `yaml:"port"`
	APIKey         string        `yaml:"api_key"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	JobTTL         time.Duration `yaml:"job_ttl"`

	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from the environment. If CONFIG_FILE is set, the
// YAML file is applied first and environment variables override it.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load with an explicit YAML file path; an empty path skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.InputDir = envOr("INPUT_DIR", cfg.InputDir)
	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.Extensions = envList("EXTENSIONS", cfg.Extensions)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.FailFast = envBool("FAIL_FAST", cfg.FailFast)

	cfg.MaxHeadingWords = envInt("MAX_HEADING_WORDS", cfg.MaxHeadingWords)
	cfg.SizeTolerance = envFloat("SIZE_TOLERANCE", cfg.SizeTolerance)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("API_KEY", cfg.APIKey)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	cfg.clamp()
	return cfg, nil
}

func defaults() Config {
	return Config{
		InputDir:   "/app/input",
		OutputDir:  "/app/output",
		Extensions: []string{".pdf"},

		WorkerCount:  1,
		MaxQueueSize: 100,

		MaxHeadingWords: 15,

		PDFFallbackPdftotext: true,

		Port:           "8090",
		MaxUploadBytes: 52428800, // 50MB
		JobTTL:         1 * time.Hour,

		LogLevel: "info",
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) clamp() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 1
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxHeadingWords <= 0 {
		c.MaxHeadingWords = 15
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".pdf"}
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
}

// Validate checks the settings needed by the batch driver.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.SizeTolerance < 0 {
		return fmt.Errorf("SIZE_TOLERANCE must not be negative")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
