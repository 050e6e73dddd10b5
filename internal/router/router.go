package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/handler"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/response"
	"github.com/studai/studai-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Quiz   *handler.QuizHandler
	Battle *handler.BattleHandler
	Admin  *handler.AdminHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// XLSX files are zip archives already.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper: func(c *gin.Context) bool {
			return strings.HasSuffix(c.Request.URL.Path, "/export")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		userSession := []gin.HandlerFunc{
			middleware.RequireUserJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
		}
		auth.POST("/logout", append(userSession, handlers.Auth.Logout)...)
		auth.GET("/me", append(userSession, handlers.Auth.Me)...)
		auth.GET("/admin/me",
			middleware.RequireAdminJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.AdminMe,
		)
	}

	// ─── 2. Player Group (JWT + Single Device) ─────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		api.POST("/quizzes", handlers.Quiz.CreateQuiz)
		api.GET("/quizzes", handlers.Quiz.ListQuizzes)
		api.GET("/quizzes/:id", handlers.Quiz.GetQuiz)
		api.GET("/quizzes/:id/questions", middleware.NoStore(), handlers.Quiz.GetQuestions)
		api.PUT("/quizzes/:id/questions", handlers.Quiz.ReplaceQuestions)
		api.DELETE("/quizzes/:id", handlers.Quiz.DeleteQuiz)
		api.POST("/quizzes/:id/submit", handlers.Quiz.SubmitQuiz)

		api.GET("/attempts", handlers.Quiz.ListAttempts)

		api.POST("/battles", handlers.Battle.CreateBattle)
		api.GET("/battles/:code", handlers.Battle.GetBattle)
	}

	// ─── 3. WebSocket Group (Player WS Auth) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireUserWSAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/battles/:code/stream", handlers.Battle.BattleStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		adminAPI.GET("/users",
			middleware.RequirePermission(model.PermissionUsersRead),
			handlers.Admin.ListUsers,
		)
		adminAPI.DELETE("/users/:id",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.Admin.DeleteUser,
		)
		adminAPI.POST("/users/:id/reset-session",
			middleware.RequirePermission(model.PermissionUsersResetSession),
			handlers.Admin.ResetUserSession,
		)

		adminAPI.GET("/quizzes",
			middleware.RequirePermission(model.PermissionQuizzesReadAll),
			handlers.Admin.ListQuizzes,
		)
		adminAPI.DELETE("/quizzes/:id",
			middleware.RequirePermission(model.PermissionQuizzesWriteAll),
			handlers.Admin.DeleteQuiz,
		)
		adminAPI.GET("/quizzes/:id/attempts/export",
			middleware.RequirePermission(model.PermissionAttemptsExport),
			handlers.Admin.ExportAttempts,
		)

		adminAPI.GET("/stats",
			middleware.RequireAnyPermission(model.PermissionUsersRead, model.PermissionQuizzesReadAll),
			handlers.Admin.GetStats,
		)
	}

	return router
}
