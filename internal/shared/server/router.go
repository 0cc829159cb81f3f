package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "resumelens-backend/internal/auth"
	"resumelens-backend/internal/resumes"
	"resumelens-backend/internal/services/health"
	"resumelens-backend/internal/shared/config"
	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
	"resumelens-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Tests build the same
// router with stubbed services.
type RouterDeps struct {
	Config        config.Config
	ResumeHandler *resumes.Handler
	UsersHandler  *users.Handler
	GoogleAuth    *googleauth.GoogleService
	HealthSvc     *health.Service
}

// analyzeRateRule throttles the analyze endpoint per user. Other routes are
// left unlimited.
var analyzeRateRule = middleware.RateLimitRule{Rate: 0.2, Burst: 3}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.HealthSvc.Status(c.Request.Context()))
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		analyzeGroup := api.Group("")
		analyzeGroup.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{"ANALYZE": analyzeRateRule},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/analyze" {
					return "ANALYZE"
				}
				return ""
			},
			DefaultGroup: "NONE",
		}))
		deps.ResumeHandler.RegisterRoutes(analyzeGroup)
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
