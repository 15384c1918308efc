package server

import (
	"github.com/gin-gonic/gin"

	googleauth "bookstudio-backend/internal/auth"
	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/exports"
	"bookstudio-backend/internal/generation"
	"bookstudio-backend/internal/genlog"
	"bookstudio-backend/internal/services/health"
	"bookstudio-backend/internal/shared/config"
	"bookstudio-backend/internal/shared/metrics"
	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/shared/server/respond"
	"bookstudio-backend/internal/usage"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	BlueprintHandler  *blueprints.Handler
	BooksHandler      *books.Handler
	GenerationHandler *generation.Handler
	GenlogHandler     *genlog.Handler
	UsageHandler      *usage.Handler
	ExportsHandler    *exports.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Generation endpoints share one token bucket per identity; everything
// else passes through unlimited.
const generateGroup = "GENERATE"

func generateRateRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		generateGroup: {Rate: 0.5, Burst: 3},
	}
}

func generateGroupFor(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/ai/blueprint",
		"/api/v1/books/:bookId/chapters/:chapterId/generate":
		return generateGroup
	default:
		return ""
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    generateRateRules(),
			GroupFor: generateGroupFor,
		}),
	)

	healthSvc := health.NewService()

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.BlueprintHandler != nil {
		deps.BlueprintHandler.RegisterRoutes(api)
	}
	if deps.BooksHandler != nil {
		deps.BooksHandler.RegisterRoutes(api)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.GenlogHandler != nil {
		deps.GenlogHandler.RegisterRoutes(api)
	}
	if deps.ExportsHandler != nil {
		deps.ExportsHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
		if cfg.Env == "dev" {
			dev := api.Group("/dev")
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
