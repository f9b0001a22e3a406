package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables read by LoadCredentials
const (
	EnvOpenRouterKey   = "OPENROUTER_API_KEY"
	EnvAIMLKey         = "AIML_API_KEY"
	EnvSupabaseURL     = "SUPABASE_URL"
	EnvSupabaseAnonKey = "SUPABASE_ANON_KEY"
)

// Credentials holds the secrets used to reach external services
type Credentials struct {
	OpenRouterAPIKey string
	AIMLAPIKey       string
	SupabaseURL      string
	SupabaseAnonKey  string
}

// LoadCredentials reads credentials from the environment after loading
// <dir>/.env and ./.env. Values already in the environment win, and a
// missing .env file is not an error.
func LoadCredentials(dir string, log zerolog.Logger) Credentials {
	for _, path := range []string{filepath.Join(dir, ".env"), ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load .env file")
			continue
		}
		log.Debug().Str("path", path).Msg("Loaded .env file")
	}

	return Credentials{
		OpenRouterAPIKey: getEnv(EnvOpenRouterKey, ""),
		AIMLAPIKey:       getEnv(EnvAIMLKey, ""),
		SupabaseURL:      strings.TrimRight(getEnv(EnvSupabaseURL, ""), "/"),
		SupabaseAnonKey:  getEnv(EnvSupabaseAnonKey, ""),
	}
}

// HasSupabase reports whether the hosted identity/storage service is configured
func (c Credentials) HasSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// Missing lists the environment variables needed by cfg that are unset
func (c Credentials) Missing(cfg Config) []string {
	var missing []string
	if c.OpenRouterAPIKey == "" {
		missing = append(missing, EnvOpenRouterKey)
	}
	if c.AIMLAPIKey == "" {
		missing = append(missing, EnvAIMLKey)
	}
	if cfg.AuthBackend == BackendSupabase || cfg.AttachmentBackend == BackendSupabase {
		if c.SupabaseURL == "" {
			missing = append(missing, EnvSupabaseURL)
		}
		if c.SupabaseAnonKey == "" {
			missing = append(missing, EnvSupabaseAnonKey)
		}
	}
	return missing
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
