package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"governance-backend/internal/assessments"
	"governance-backend/internal/llm"
	"governance-backend/internal/llm/openai"
	"governance-backend/internal/reference"
	"governance-backend/internal/report"
	"governance-backend/internal/reports"
	"governance-backend/internal/services/health"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/server"
	"governance-backend/internal/shared/storage/db"
	"governance-backend/internal/shared/storage/kv"
	"governance-backend/internal/shared/storage/object"
	localstore "governance-backend/internal/shared/storage/object/local"
	s3store "governance-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Redis              *redis.Client
	ReferenceStore     object.ObjectStore
	References         *reference.Loader
	LLM                llm.Client
	Reports            *report.Generator
	AssessmentsRepo    assessments.Repo
	AssessmentsService *assessments.Service
	Health             *health.Service
}

// Build prepares dependencies from cfg and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg, Health: health.NewService()}

	if err := buildAssessmentStore(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	store, err := buildReferenceStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.ReferenceStore = store
	app.References = reference.NewLoader(store)

	app.LLM = BuildLLM(cfg)
	app.Reports = &report.Generator{LLM: app.LLM, Timeout: cfg.LLMTimeout}
	app.AssessmentsService = &assessments.Service{
		Repo:       app.AssessmentsRepo,
		Reports:    app.Reports,
		References: app.References,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Health:             app.Health,
		AssessmentsHandler: assessments.NewHandler(app.AssessmentsService),
		ReportsHandler:     reports.NewHandler(app.Reports, app.References),
	})
	return app, nil
}

// Close releases database and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildAssessmentStore(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.AssessmentStore {
	case config.StorePostgres:
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, dbOptions())
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
			if err != nil {
				sqlDB.Close()
			}
		}
		if err != nil {
			return fallbackToMemory(app, "postgres", err)
		}
		app.DB = sqlDB
		app.AssessmentsRepo = &assessments.PGRepo{DB: sqlDB, TTL: cfg.AssessmentTTL}
		app.Health.Register("postgres", sqlDB.PingContext)
	case config.StoreRedis:
		client, err := kv.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fallbackToMemory(app, "redis", err)
		}
		app.Redis = client
		app.AssessmentsRepo = assessments.NewRedisRepo(client, cfg.AssessmentTTL)
		app.Health.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		app.AssessmentsRepo = assessments.NewMemoryRepo()
	}
	return nil
}

func dbOptions() db.Options {
	if db.IsLambdaRuntime() {
		return db.OptionsFromEnv(db.DefaultLambdaOptions())
	}
	return db.OptionsFromEnv(db.DefaultServerOptions())
}

func fallbackToMemory(app *App, backend string, err error) error {
	if !isDevLike(app.Config.Env) {
		return fmt.Errorf("%s assessment store: %w", backend, err)
	}
	log.Printf("bootstrap: %s unavailable; using in-memory assessments: %v", backend, err)
	app.AssessmentsRepo = assessments.NewMemoryRepo()
	return nil
}

func buildReferenceStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ReferenceStore {
	case "s3":
		if strings.TrimSpace(cfg.ReferenceBucket) == "" {
			return nil, fmt.Errorf("REFERENCE_STORE=s3 requires REFERENCE_S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.ReferenceBucket, cfg.ReferencePrefix)
	default:
		return localstore.New(cfg.ReferenceDir), nil
	}
}

// BuildLLM returns the configured client, or the placeholder when the
// provider is unset or its credentials are incomplete.
func BuildLLM(cfg config.Config) llm.Client {
	var occ openai.Config
	switch cfg.LLMProvider {
	case openai.ProviderOpenAI:
		occ = openai.Config{
			Provider: openai.ProviderOpenAI,
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.LLMModel,
			Timeout:  cfg.LLMTimeout,
		}
	case openai.ProviderAzure:
		occ = openai.Config{
			Provider:   openai.ProviderAzure,
			APIKey:     cfg.AzureOpenAIAPIKey,
			Model:      cfg.LLMModel,
			Endpoint:   cfg.AzureOpenAIEndpoint,
			Deployment: cfg.AzureOpenAIDeployment,
			APIVersion: cfg.AzureOpenAIAPIVersion,
			Timeout:    cfg.LLMTimeout,
		}
	default:
		log.Printf("bootstrap: no LLM provider configured; reports use the template")
		return llm.PlaceholderClient{}
	}

	client, err := openai.NewPromptClient(occ)
	if err != nil {
		log.Printf("bootstrap: %s client unavailable; reports use the template: %v", cfg.LLMProvider, err)
		return llm.PlaceholderClient{}
	}
	return client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
