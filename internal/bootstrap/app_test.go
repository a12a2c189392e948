package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessments"
	"governance-backend/internal/llm"
	"governance-backend/internal/llm/openai"
	"governance-backend/internal/shared/config"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return config.Config{
		Env:              "dev",
		CORSAllowOrigin:  []string{"*"},
		AssessmentStore:  config.StoreMemory,
		ReferenceStore:   "local",
		ReferenceDir:     t.TempDir(),
		ReportRatePerMin: 30,
		ReportRateBurst:  10,
	}
}

func TestBuildMemoryDefaults(t *testing.T) {
	app, err := Build(context.Background(), baseConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if _, ok := app.AssessmentsRepo.(*assessments.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.AssessmentsRepo)
	}
	if llm.Configured(app.LLM) {
		t.Fatalf("no provider should mean placeholder client")
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
}

func TestBuildRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := baseConfig(t)
	cfg.AssessmentStore = config.StoreRedis
	cfg.RedisURL = "redis://" + srv.Addr()

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if _, ok := app.AssessmentsRepo.(*assessments.RedisRepo); !ok {
		t.Fatalf("expected redis repo, got %T", app.AssessmentsRepo)
	}
	if !app.Health.Status(context.Background()).OK {
		t.Fatalf("redis health check should pass")
	}
}

func TestBuildFallsBackInDev(t *testing.T) {
	cfg := baseConfig(t)
	cfg.AssessmentStore = config.StoreRedis
	cfg.RedisURL = "redis://127.0.0.1:1"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("dev build should fall back, got %v", err)
	}
	if _, ok := app.AssessmentsRepo.(*assessments.MemoryRepo); !ok {
		t.Fatalf("expected memory fallback, got %T", app.AssessmentsRepo)
	}

	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("production build should fail when the store is unreachable")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	cfg := baseConfig(t)
	cfg.ReferenceStore = "s3"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestBuildLLM(t *testing.T) {
	cfg := baseConfig(t)
	cfg.LLMProvider = openai.ProviderOpenAI
	if llm.Configured(BuildLLM(cfg)) {
		t.Fatalf("missing key should fall back to placeholder")
	}

	cfg.OpenAIAPIKey = "sk-test"
	cfg.LLMModel = "gpt-4o-mini"
	if _, ok := BuildLLM(cfg).(*openai.PromptClient); !ok {
		t.Fatalf("expected prompt client")
	}

	cfg.LLMProvider = openai.ProviderAzure
	cfg.AzureOpenAIAPIKey = "key"
	cfg.AzureOpenAIEndpoint = "https://example.openai.azure.com"
	cfg.AzureOpenAIDeployment = "gov"
	if _, ok := BuildLLM(cfg).(*openai.PromptClient); !ok {
		t.Fatalf("expected azure prompt client")
	}
}
