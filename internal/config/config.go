package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// DBDisabled skips the remote Postgres store entirely.
	DBDisabled     bool
	LocalCachePath string
	RedisURL       string
	SessionTTL     time.Duration

	JWTSecret         string
	AdminPasswordHash string

	AnthropicAPIKey string
	AnthropicModel  string
	MockCoach       bool

	SyncSchedule   string
	QuestionTimers bool
	CORSOrigins    []string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[config] no .env file, using process environment")
	} else {
		log.Println("[config] loaded .env")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBDisabled:        getBool("DB_DISABLED", false),
		LocalCachePath:    getEnv("LOCAL_CACHE_PATH", "data/local-cache.db"),
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionTTL:        getDuration("SESSION_TTL", 6*time.Hour),
		JWTSecret:         getEnv("JWT_SECRET", "copilot-learning-dev-signing-key"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		MockCoach:         getBool("MOCK_COACH", false),
		SyncSchedule:      getEnv("SYNC_SCHEDULE", "@every 5m"),
		QuestionTimers:    getBool("QUESTION_TIMERS", true),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[config] JWT_SECRET not set, using development signing key")
	}
	if cfg.AdminPasswordHash == "" {
		log.Println("[config] ADMIN_PASSWORD_HASH not set, admin login disabled")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[config] %s=%q is not a boolean, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		log.Printf("[config] %s=%q is not a positive duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
