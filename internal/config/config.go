package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
)

const (
	DefaultCookiesPath    = "/etc/secrets/cookies.txt"
	DefaultDatabaseURL    = "file:./dev.db"
	DefaultPort           = "8080"
	DefaultTargetLanguage = "Vietnamese"
)

// Config is everything the process reads from its environment.
type Config struct {
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	CookiesPath  string
	YtDlpBin     string
	YtDlpTimeout time.Duration
	TempDir      string

	DatabaseURL    string
	TursoAuthToken string

	Port           string
	TargetLanguage string

	LogLevel  string
	LogFormat string
}

// Load seeds the environment from the given .env files (missing files are
// skipped) and reads the configuration from it.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}

	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	c := Config{
		GeminiAPIKey:   env.Str("GEMINI_API_KEY", ""),
		GeminiBaseURL:  env.Str("GEMINI_BASE_URL", ""),
		GeminiTimeout:  env.Duration("GEMINI_TIMEOUT", 5*time.Minute),
		CookiesPath:    env.Str("COOKIES_PATH", DefaultCookiesPath),
		YtDlpBin:       env.Str("YTDLP_BIN", "yt-dlp"),
		YtDlpTimeout:   env.Duration("YTDLP_TIMEOUT", 10*time.Minute),
		TempDir:        env.Str("TEMP_DIR", os.TempDir()),
		DatabaseURL:    env.Str("DATABASE_URL", DefaultDatabaseURL),
		TursoAuthToken: env.Str("TURSO_AUTH_TOKEN", ""),
		Port:           env.Str("PORT", DefaultPort),
		TargetLanguage: env.Str("TRANSLATE_TARGET_LANGUAGE", DefaultTargetLanguage),
		LogLevel:       env.Str("LOG_LEVEL", "info"),
		LogFormat:      env.Str("LOG_FORMAT", "json"),
	}

	if c.GeminiTimeout <= 0 {
		return Config{}, fmt.Errorf("GEMINI_TIMEOUT must be positive, got %s", c.GeminiTimeout)
	}
	if c.YtDlpTimeout <= 0 {
		return Config{}, fmt.Errorf("YTDLP_TIMEOUT must be positive, got %s", c.YtDlpTimeout)
	}

	return c, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
