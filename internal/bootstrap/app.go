package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "bookstudio-backend/internal/auth"
	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/exports"
	"bookstudio-backend/internal/generation"
	"bookstudio-backend/internal/genlog"
	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/llm/anthropic"
	"bookstudio-backend/internal/queue"
	"bookstudio-backend/internal/shared/config"
	"bookstudio-backend/internal/shared/server"
	"bookstudio-backend/internal/shared/storage/db"
	"bookstudio-backend/internal/shared/storage/object"
	localstore "bookstudio-backend/internal/shared/storage/object/local"
	s3store "bookstudio-backend/internal/shared/storage/object/s3"
	"bookstudio-backend/internal/usage"
)

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	BooksRepo    books.Repo
	ChaptersRepo chapters.Repo
	GenlogRepo   genlog.Repo
	ExportsRepo  exports.Repo

	LLM               llm.Client
	GenlogService     *genlog.Service
	UsageService      *usage.Service
	BlueprintsService *blueprints.Service
	BooksService      *books.Service
	GenerationService *generation.Service
	ExportsService    *exports.Service

	BlueprintHandler  *blueprints.Handler
	BooksHandler      *books.Handler
	GenerationHandler *generation.Handler
	GenlogHandler     *genlog.Handler
	UsageHandler      *usage.Handler
	ExportsHandler    *exports.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		BlueprintHandler:  app.BlueprintHandler,
		BooksHandler:      app.BooksHandler,
		GenerationHandler: app.GenerationHandler,
		GenlogHandler:     app.GenlogHandler,
		UsageHandler:      app.UsageHandler,
		ExportsHandler:    app.ExportsHandler,
		GoogleAuth:        app.GoogleAuth,
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

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.ExportQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.ExportQueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var booksRepo books.Repo
	var chaptersRepo chapters.Repo
	var genlogRepo genlog.Repo
	var exportsRepo exports.Repo
	var usageSvc *usage.Service

	if app.DB != nil {
		booksRepo = &books.PGRepo{DB: app.DB}
		chaptersRepo = &chapters.PGRepo{DB: app.DB}
		genlogRepo = &genlog.PGRepo{DB: app.DB}
		exportsRepo = &exports.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		booksRepo = books.NewMemoryRepo()
		chaptersRepo = chapters.NewMemoryRepo()
		genlogRepo = genlog.NewMemoryRepo()
		exportsRepo = exports.NewMemoryRepo()
		usageSvc = usage.NewService()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if strings.TrimSpace(app.Config.AnthropicAPIKey) != "" {
		client, err := anthropic.NewClient(anthropic.Config{
			Model:   app.Config.LLMModel,
			APIKey:  app.Config.AnthropicAPIKey,
			BaseURL: app.Config.AnthropicBaseURL,
			Timeout: time.Duration(app.Config.AnthropicTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return err
		}
		llmClient = client
	}

	genlogSvc := genlog.NewService(genlogRepo)
	booksSvc := &books.Service{Repo: booksRepo, Chapters: chaptersRepo}
	blueprintSvc := &blueprints.Service{
		LLM:   llmClient,
		Model: app.Config.LLMModel,
		Logs:  genlogSvc,
	}
	generationSvc := &generation.Service{
		Books:    booksRepo,
		Chapters: chaptersRepo,
		LLM:      llmClient,
		Logs:     genlogSvc,
		Usage:    usageSvc,
		Leases:   generation.NewChapterLeases(),
	}
	exportsSvc := &exports.Service{
		Repo:     exportsRepo,
		Books:    booksSvc,
		Renderer: &exports.StubRenderer{Store: app.Store, BaseURL: app.Config.ExportBaseURL},
		Queue:    app.Queue,
	}

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	app.BooksRepo = booksRepo
	app.ChaptersRepo = chaptersRepo
	app.GenlogRepo = genlogRepo
	app.ExportsRepo = exportsRepo
	app.LLM = llmClient
	app.GenlogService = genlogSvc
	app.UsageService = usageSvc
	app.BlueprintsService = blueprintSvc
	app.BooksService = booksSvc
	app.GenerationService = generationSvc
	app.ExportsService = exportsSvc
	app.BlueprintHandler = blueprints.NewHandler(blueprintSvc)
	app.BooksHandler = books.NewHandler(booksSvc)
	app.GenerationHandler = generation.NewHandler(generationSvc)
	app.GenlogHandler = genlog.NewHandler(genlogSvc, func(ctx context.Context, userID, bookID string) error {
		if _, _, err := booksSvc.Get(ctx, userID, bookID); err != nil {
			if errors.Is(err, books.ErrNotFound) {
				return genlog.ErrBookNotFound
			}
			return err
		}
		return nil
	})
	app.UsageHandler = usage.NewHandler(usageSvc)
	exportsHandler := exports.NewHandler(exportsSvc)
	exportsHandler.Store = app.Store
	exportsHandler.BaseURL = app.Config.ExportBaseURL
	app.ExportsHandler = exportsHandler
	app.GoogleAuth = googleAuthSvc

	if app.BlueprintHandler == nil || app.BooksHandler == nil || app.GenerationHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
