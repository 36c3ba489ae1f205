package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Web         WebConfig
	Database    DatabaseConfig
	FaceEngine  EngineConfig
	OCREngine   EngineConfig
	Recognition RecognitionConfig
	OpenAI      OpenAIConfig
	Speech      SpeechConfig
}

type WebConfig struct {
	Addr string // listen address (default :8080)
}

type DatabaseConfig struct {
	URL string // PostgreSQL connection URL; empty selects the in-memory store
}

type EngineConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

type RecognitionConfig struct {
	MinProbeImages int  // minimum images per recognition request (default 3)
	UseIndex       bool // shortlist candidates with the HNSW index
	ShortlistSize  int  // candidates fetched from the index (default 10)
}

type OpenAIConfig struct {
	Token string
}

type SpeechConfig struct {
	Enabled   bool
	OutputDir string // where greeting MP3 files land (default ./greetings)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration string.
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Addr: envString("WEB_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		FaceEngine: EngineConfig{
			URL:        envString("FACE_ENGINE_URL", "http://localhost:8001"),
			Timeout:    envDuration("FACE_ENGINE_TIMEOUT", 30*time.Second),
			MaxRetries: envInt("FACE_ENGINE_MAX_RETRIES", 3),
		},
		OCREngine: EngineConfig{
			URL:        envString("OCR_ENGINE_URL", "http://localhost:8002"),
			Timeout:    envDuration("OCR_ENGINE_TIMEOUT", 60*time.Second),
			MaxRetries: envInt("OCR_ENGINE_MAX_RETRIES", 3),
		},
		Recognition: RecognitionConfig{
			MinProbeImages: envInt("RECOGNITION_MIN_IMAGES", 3),
			UseIndex:       envBool("RECOGNITION_USE_INDEX", false),
			ShortlistSize:  envInt("RECOGNITION_SHORTLIST_SIZE", 10),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Speech: SpeechConfig{
			Enabled:   envBool("SPEECH_ENABLED", false),
			OutputDir: envString("SPEECH_OUTPUT_DIR", "greetings"),
		},
	}
}
