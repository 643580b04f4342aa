package common

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Pipeline PipelineConfig
	Scoring  ScoringConfig
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Log      LogConfig
}

// InputConfig locates the roster, the biography store and the documents root.
type InputConfig struct {
	RosterFile    string `validate:"required"`
	BiographyFile string
	DocsRoot      string `validate:"required"`
	RulesFile     string // empty -> embedded default rule tables
}

// OutputConfig controls the file exports.
type OutputConfig struct {
	Dir  string `validate:"required"`
	XLSX bool
}

// PipelineConfig holds batch behavior.
type PipelineConfig struct {
	Workers       int       `validate:"min=1,max=64"`
	ReferenceDate time.Time // projects "N años de experiencia" and computes ages
	TextCacheTTL  time.Duration
}

// ScoringConfig holds the truncation ceilings of the normalizer.
type ScoringConfig struct {
	MaxPropuestas    float64 `validate:"gt=0"`
	MaxExperiencia   float64 `validate:"gt=0"`
	MaxGestion       float64 `validate:"gt=0"`
	MaxImpactoSocial float64 `validate:"gt=0"`
}

// DatabaseConfig holds the optional results sink configuration
type DatabaseConfig struct {
	DSN             string // empty disables the SQL sink
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds daemon-related configuration
type ServerConfig struct {
	GRPCAddr string
	Debounce time.Duration
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	MinTextChars  int
	MinQuality    float64 `validate:"gte=0,lte=1"` // readings below are unusable
	Timeout       time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

// LoadConfig loads configuration from a .env file (when present) and environment variables
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Input: InputConfig{
			RosterFile:    getEnv("ROSTER_FILE", "config/roster.yaml"),
			BiographyFile: getEnv("BIOGRAPHY_FILE", "data/biografias.json"),
			DocsRoot:      getEnv("DOCS_ROOT", "public/pdfs"),
			RulesFile:     getEnv("RULES_FILE", ""),
		},
		Output: OutputConfig{
			Dir:  getEnv("OUTPUT_DIR", "public/data"),
			XLSX: getEnvAsBool("OUTPUT_XLSX", true),
		},
		Pipeline: PipelineConfig{
			Workers:       getEnvAsInt("WORKERS", 4),
			ReferenceDate: getEnvAsDate("REFERENCE_DATE", time.Now().UTC()),
			TextCacheTTL:  getEnvAsDuration("TEXT_CACHE_TTL", 30*time.Minute),
		},
		Scoring: ScoringConfig{
			MaxPropuestas:    getEnvAsFloat("MAX_PROPUESTAS", 50),
			MaxExperiencia:   getEnvAsFloat("MAX_EXPERIENCIA", 30),
			MaxGestion:       getEnvAsFloat("MAX_GESTION", 30),
			MaxImpactoSocial: getEnvAsFloat("MAX_IMPACTO_SOCIAL", 25),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "spa"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			MinTextChars:  getEnvAsInt("OCR_MIN_TEXT_CHARS", 200),
			MinQuality:    getEnvAsFloat("OCR_MIN_QUALITY", 0.25),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 2*time.Minute),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  getEnv("LOG_FILE", ""),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t
		}
	}
	return defaultValue
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", errors.Join(ErrInvalidInput, err))
	}
	if c.Pipeline.ReferenceDate.IsZero() {
		return NewAppError("CONFIG_ERROR", "REFERENCE_DATE is required", ErrInvalidInput)
	}
	return nil
}
