package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Pipeline   PipelineConfig
	Validation ValidationConfig
}

// ServerConfig holds HTTP intake configuration.
type ServerConfig struct {
	Addr            string
	MaxFileBytes    int64
	MaxFilesPerScan int
}

// OCRConfig holds text-acquisition configuration.
type OCRConfig struct {
	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
	Language    string
	DPI         int
	MaxPages    int
	TriggerMin  int // char count below which the OCR fallback kicks in
	TempDir     string
	ExecTimeout time.Duration
}

// LLMConfig holds language-model service configuration.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	RatePerSec  float64
	RateBurst   int
}

// PipelineConfig holds per-claim orchestration configuration.
type PipelineConfig struct {
	DocumentWorkers int
	ClaimTimeout    time.Duration
}

// ValidationConfig holds the tunable validation thresholds. These were
// undocumented constants in earlier iterations; keep them configurable.
type ValidationConfig struct {
	NameDistanceMax      int
	MultiSectionKeywords int
	AmountCeiling        string // decimal string, parsed at wiring time
	ServiceDateBufferDay int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			MaxFileBytes:    getEnvAsInt64("MAX_FILE_BYTES", 10<<20),
			MaxFilesPerScan: getEnvAsInt("MAX_FILES_PER_CLAIM", 10),
		},
		OCR: OCRConfig{
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Language:    getEnv("TESSERACT_LANG", "eng"),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 5),
			TriggerMin:  getEnvAsInt("OCR_TRIGGER_CHARS", 500),
			TempDir:     getEnv("OCR_TEMP_DIR", ""),
			ExecTimeout: getEnvAsDuration("OCR_EXEC_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries:  getEnvAsInt("LLM_MAX_RETRIES", 3),
			RatePerSec:  getEnvAsFloat64("LLM_RATE_PER_SEC", 5),
			RateBurst:   getEnvAsInt("LLM_RATE_BURST", 10),
		},
		Pipeline: PipelineConfig{
			DocumentWorkers: getEnvAsInt("DOCUMENT_WORKERS", 4),
			ClaimTimeout:    getEnvAsDuration("CLAIM_TIMEOUT", 120*time.Second),
		},
		Validation: ValidationConfig{
			NameDistanceMax:      getEnvAsInt("NAME_DISTANCE_MAX", 3),
			MultiSectionKeywords: getEnvAsInt("MULTI_SECTION_KEYWORDS", 3),
			AmountCeiling:        getEnv("AMOUNT_CEILING", "10000000"),
			ServiceDateBufferDay: getEnvAsInt("SERVICE_DATE_BUFFER_DAYS", 2),
		},
	}
}

// Validate checks the loaded configuration for required keys.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
