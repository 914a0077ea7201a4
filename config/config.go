package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the service.
//
// Catalog credentials are mandatory for search; everything else degrades:
// a missing Watchmode or Groq key turns that facet into an empty contribution,
// and TorrentsDisabled switches the torrent facet off entirely.
type Config struct {
	// BindAddr is the host:port the HTTP server listens on.
	BindAddr string

	// CatalogBearer is the TMDB API bearer token. Required for search.
	CatalogBearer string

	// AvailabilityAPIKey is the Watchmode API key. Optional.
	AvailabilityAPIKey string

	// AIAPIKey is the Groq API key. Optional.
	AIAPIKey string

	// TorrentsDisabled turns the torrent-source facet off. Defaults to on
	// unless TORRENTS_DISABLED=true; always disabled when GO_ENV=test.
	TorrentsDisabled bool

	// DatabasePath is the SQLite file for users, watchlists and billing.
	DatabasePath string

	// JWTSecret signs auth tokens. A development default is used if unset.
	JWTSecret string

	// LogPath is the rotating log file. Empty means stderr only.
	LogPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present (missing file is not an error).
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:           getEnv("BIND_ADDR", ":"+getEnv("PORT", "8787")),
		CatalogBearer:      strings.TrimSpace(os.Getenv("TMDB_BEARER")),
		AvailabilityAPIKey: strings.TrimSpace(os.Getenv("WATCHMODE_API_KEY")),
		AIAPIKey:           strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		DatabasePath:       getEnv("DATABASE_PATH", filepath.Join("data", "streamscout.db")),
		JWTSecret:          getEnv("JWT_SECRET", "development-secret"),
		LogPath:            os.Getenv("LOG_PATH"),
	}

	if boolEnv("TORRENTS_DISABLED") || os.Getenv("GO_ENV") == "test" {
		cfg.TorrentsDisabled = true
	}

	return cfg
}

// HasCatalog reports whether the mandatory catalog credential is present.
func (c Config) HasCatalog() bool { return c.CatalogBearer != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}
