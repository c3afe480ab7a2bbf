package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/campuskit/campuskit-backend/internal/handlers"
	"github.com/campuskit/campuskit-backend/internal/middleware"
	"github.com/campuskit/campuskit-backend/internal/platform/envutil"
	"github.com/campuskit/campuskit-backend/internal/services"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type RouterConfig struct {
	Auth            services.AuthService
	AuthHandler     *handlers.AuthHandler
	RiskHandler     *handlers.RiskHandler
	AlertHandler    *handlers.AlertHandler
	RecHandler      *handlers.RecommendationHandler
	TrainingHandler *handlers.TrainingHandler
	JobHandler      *handlers.JobHandler
	Healthcheck     *handlers.HealthcheckHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if envutil.String("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("campuskit-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{envutil.String("CORS_ORIGIN", "*")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthcheck", cfg.Healthcheck.Healthcheck)

	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(cfg.Auth))
	{
		staff := []string{types.RoleProfessor, types.RoleAdmin}

		risk := protected.Group("/risk")
		{
			risk.GET("/me", cfg.RiskHandler.Me)
			risk.POST("/calculate", middleware.RequireRole(staff...), cfg.RiskHandler.Calculate)
			risk.POST("/recalculate-all", middleware.RequireRole(types.RoleAdmin), cfg.RiskHandler.RecalculateAll)
			risk.GET("/summary", middleware.RequireRole(staff...), cfg.RiskHandler.Summary)
		}

		alerts := protected.Group("/alerts")
		alerts.Use(middleware.RequireRole(staff...))
		{
			alerts.GET("", cfg.AlertHandler.List)
			alerts.POST("/:id/acknowledge", cfg.AlertHandler.Acknowledge)
		}

		recs := protected.Group("/recommendations")
		{
			recs.GET("/me", cfg.RecHandler.Me)
			recs.POST("/:id/complete", cfg.RecHandler.Complete)
		}

		training := protected.Group("/training")
		training.Use(middleware.RequireRole(types.RoleAdmin))
		{
			training.POST("/run", cfg.TrainingHandler.Run)
			training.GET("/sessions", cfg.TrainingHandler.Sessions)
		}

		protected.GET("/jobs/:id", cfg.JobHandler.GetByID)
	}

	return router
}
