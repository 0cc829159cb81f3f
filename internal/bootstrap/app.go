package bootstrap

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resumelens-backend/internal/auth"
	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/llm/gemini"
	"resumelens-backend/internal/resumes"
	"resumelens-backend/internal/services/health"
	"resumelens-backend/internal/shared/config"
	"resumelens-backend/internal/shared/server"
	"resumelens-backend/internal/shared/storage/db"
	"resumelens-backend/internal/users"
)

// App holds the wired application dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	ResumesRepo   resumes.Repo
	UsersRepo     users.Repo
	ResumeService *resumes.Service
	UsersService  *users.Service
	GoogleAuth    *googleauth.GoogleService
}

// Build prepares the full dependency graph and router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var resumeRepo resumes.Repo
	var userRepo users.Repo
	if sqlDB != nil {
		resumeRepo = &resumes.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	resumeSvc := &resumes.Service{
		Repo:   resumeRepo,
		LLM:    llmClient,
		AppURL: cfg.AppURL,
	}
	userSvc := users.NewService(userRepo)
	googleAuth := googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)

	app := &App{
		Config:        cfg,
		DB:            sqlDB,
		ResumesRepo:   resumeRepo,
		UsersRepo:     userRepo,
		ResumeService: resumeSvc,
		UsersService:  userSvc,
		GoogleAuth:    googleAuth,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		ResumeHandler: resumes.NewHandler(resumeSvc),
		UsersHandler:  users.NewHandler(userSvc),
		GoogleAuth:    googleAuth,
		HealthSvc:     health.NewService(sqlDB),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analyze requests will fail")
			return unconfiguredLLM{}, nil
		}
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return gemini.NewClient(apiKey, cfg.GeminiModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

type unconfiguredLLM struct{}

func (unconfiguredLLM) Analyze(ctx context.Context, resumeText string) (json.RawMessage, error) {
	_ = ctx
	_ = resumeText
	return nil, &llm.Error{Kind: llm.KindUpstream, Err: fmt.Errorf("llm client not configured")}
}
