package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Assessment store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	DatabaseURL     string
	RedisURL        string
	AssessmentStore string
	AssessmentTTL   time.Duration

	LLMProvider           string
	LLMModel              string
	OpenAIAPIKey          string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string
	LLMTimeout            time.Duration

	ReferenceStore  string
	ReferenceDir    string
	AWSRegion       string
	ReferenceBucket string
	ReferencePrefix string

	ReportRatePerMin float64
	ReportRateBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	store := normalizeAssessmentStore(getEnv("ASSESSMENT_STORE", StoreMemory))

	if store == StorePostgres && dbURL == "" {
		log.Printf("ASSESSMENT_STORE=postgres requires DATABASE_URL")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),

		DatabaseURL:     dbURL,
		RedisURL:        getEnv("REDIS_URL", ""),
		AssessmentStore: store,
		AssessmentTTL:   getDuration("ASSESSMENT_TTL", 30*24*time.Hour),

		LLMProvider:           normalizeProvider(getEnv("LLM_PROVIDER", "none")),
		LLMModel:              getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", ""),
		LLMTimeout:            time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,

		ReferenceStore:  normalizeStoreType(getEnv("REFERENCE_STORE", "local")),
		ReferenceDir:    getEnv("REFERENCE_DIR", "./reference-docs"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		ReferenceBucket: getEnv("REFERENCE_S3_BUCKET", ""),
		ReferencePrefix: getEnv("REFERENCE_S3_PREFIX", ""),

		ReportRatePerMin: getFloat("REPORT_RATE_PER_MIN", 30),
		ReportRateBurst:  getInt("REPORT_RATE_BURST", 10),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		log.Printf("config %s invalid number %q, using %v", key, raw, def)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return v
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeAssessmentStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return StorePostgres
	case "redis":
		return StoreRedis
	default:
		return StoreMemory
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "azure", "azure-openai", "azure_openai":
		return "azure"
	default:
		return "none"
	}
}
