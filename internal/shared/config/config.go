package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devAPIBaseURL = "http://localhost:8000"

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	PublicURL          string
	APIBaseURL         string
	CORSAllowOrigin    []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	SessionStore       string
	RedisURL           string
	SessionTTL         time.Duration
	OTLPEndpoint       string
	OTLPHeaders        string
	ServiceName        string
	ServiceVersion     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	env := normalizeEnv(getEnv("ENV", "dev"))
	if env != "production" {
		// Best-effort load of local env files for dev convenience.
		_ = godotenv.Load(existing(".env", "cmd/.env")...)
		env = normalizeEnv(getEnv("ENV", "dev"))
	}

	port := getEnv("PORT", "8080")
	publicURL := strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/")

	store := normalizeSessionStore(getEnv("SESSION_STORE", "memory"))
	redisURL := os.Getenv("REDIS_URL")
	if store == "redis" && redisURL == "" {
		log.Printf("REDIS_URL is required when SESSION_STORE=redis; falling back to memory")
		store = "memory"
	}

	return Config{
		Port:               port,
		Env:                env,
		PublicURL:          publicURL,
		APIBaseURL:         ResolveAPIBaseURL("", os.Getenv("API_URL"), env, publicURL),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", publicURL)),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		SessionStore:       store,
		RedisURL:           redisURL,
		SessionTTL:         getDuration("SESSION_TTL", 30*time.Minute),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPHeaders:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "resume-seo-web"),
		ServiceVersion:     getEnv("OTEL_SERVICE_VERSION", "dev"),
	}
}

// IsProduction reports whether the process runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolveAPIBaseURL picks the analysis backend origin. An explicit value
// wins, then API_URL. In production the backend is served from the same
// origin as this client; everywhere else it defaults to the local backend.
func ResolveAPIBaseURL(explicit, fromEnv, env, publicURL string) string {
	for _, v := range []string{explicit, fromEnv} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	if normalizeEnv(env) == "production" {
		return strings.TrimRight(publicURL, "/")
	}
	return devAPIBaseURL
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}
