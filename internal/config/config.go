package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once per process from the environment and passed
// explicitly to every component that needs it.
type Config struct {
	Port        string
	BaseURL     string
	DatabaseURL string
	RedisAddr   string

	// Blob storage root for the filesystem store.
	BlobDir string

	// Speech-to-text service.
	TranscribeURL string
	TranscribeKey string
	Language      string

	// Text-generation service.
	LLMURL   string
	LLMKey   string
	LLMModel string

	// ChunkSizeBytes bounds peak memory per transcription call: chunks are
	// fetched and transcribed one at a time, never in parallel.
	ChunkSizeBytes int64

	// TargetWordsPerSegment caps transcript segment length.
	TargetWordsPerSegment int

	// TranscriptCharBudget bounds the transcript text fed to the analysis
	// prompt, leaving headroom for the fixed instructions.
	TranscriptCharBudget int

	// WeeklyWindow is the trailing window the weekly report covers;
	// WeeklyCacheTTL is how long a generated report is served from cache.
	WeeklyWindow   time.Duration
	WeeklyCacheTTL time.Duration
}

// Load reads the configuration from the environment. Only DATABASE_URL
// is mandatory; everything else has a workable default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getenv("PORT", "8080"),
		BaseURL:               os.Getenv("BASE_URL"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             getenv("REDIS_ADDR", "127.0.0.1:6379"),
		BlobDir:               getenv("BLOB_DIR", "blobs"),
		TranscribeURL:         os.Getenv("TRANSCRIBE_URL"),
		TranscribeKey:         os.Getenv("TRANSCRIBE_API_KEY"),
		Language:              getenv("TRANSCRIBE_LANGUAGE", "en"),
		LLMURL:                os.Getenv("LLM_GATEWAY_URL"),
		LLMKey:                os.Getenv("LLM_API_KEY"),
		LLMModel:              getenv("LLM_MODEL", "gpt-4o-mini"),
		ChunkSizeBytes:        8 << 20,
		TargetWordsPerSegment: 15,
		TranscriptCharBudget:  48000,
		WeeklyWindow:          7 * 24 * time.Hour,
		WeeklyCacheTTL:        24 * time.Hour,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	if v := os.Getenv("CHUNK_SIZE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid CHUNK_SIZE_BYTES %q", v)
		}
		cfg.ChunkSizeBytes = n
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
