package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/database"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, verifier *auth.Verifier, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	validatorsOnce.Do(func() {
		if err := registerValidators(); err != nil {
			slog.Error("Failed to register validators", "error", err)
		}
	})

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())
	r.Use(corsMiddleware(corsOrigins))

	setupRoutes(r, handler, verifier)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, verifier *auth.Verifier) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/register", handler.Register)

	api := r.Group("/api")
	api.Use(authMiddleware(verifier, handler.users))
	{
		api.GET("/auth/me", handler.GetMe)
		api.PUT("/users/me/categories", handler.SetMyCategories)

		api.GET("/newsletters", handler.ListNewsletters)
		api.GET("/newsletters/:id/download", handler.DownloadNewsletter)

		api.GET("/notifications", handler.ListNotifications)
		api.PATCH("/notifications/read-all", handler.MarkAllNotificationsRead)
		api.PATCH("/notifications/:id/read", handler.MarkNotificationRead)

		api.GET("/categories", handler.ListCategories)

		admin := api.Group("", requireAdmin())
		{
			admin.GET("/articles", handler.ListArticles)
			admin.POST("/articles", handler.SaveArticles)
			admin.DELETE("/articles/:id", handler.DeleteArticle)

			admin.GET("/news", handler.GetNews)
			admin.POST("/news/summarize", handler.Summarize)

			admin.POST("/newsletters/generate-and-save", handler.GenerateNewsletter)
			admin.PATCH("/newsletters/:id/status", handler.UpdateNewsletterStatus)
			admin.POST("/newsletters/:id/send", handler.SendNewsletter)
			admin.POST("/newsletters/:id/send-to-self", handler.SendNewsletterToSelf)
			admin.DELETE("/newsletters/:id", handler.DeleteNewsletter)

			admin.GET("/subscribers", handler.ListSubscribers)
		}

		super := api.Group("", requireSuperadmin())
		{
			super.POST("/categories", handler.CreateCategory)
			super.DELETE("/categories/:id", handler.DeleteCategory)
			super.PUT("/categories/:id/admins", handler.SetCategoryAdmins)

			super.GET("/users", handler.ListUsers)
			super.POST("/users", handler.CreateUser)
			super.PATCH("/users/:id", handler.UpdateUser)
			super.DELETE("/users/:id", handler.DeleteUser)
		}
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "VS News",
			"version":     handler.version,
			"description": "Multi-tenant newsletter curation platform",
			"endpoints": map[string]string{
				"health":      "/health",
				"metrics":     "/metrics",
				"articles":    "/api/articles",
				"news":        "/api/news",
				"newsletters": "/api/newsletters",
			},
			"auth": map[string]string{
				"header": "Authorization",
				"scheme": "Bearer",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// corsMiddleware answers preflight requests and echoes allowed origins.
// An empty list allows any origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")

		switch {
		case len(origins) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Newsletter-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

var validatorsOnce sync.Once

// registerValidators adds the domain enum checks used in binding tags
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case database.UserTypeUser, database.UserTypeAdmin, database.UserTypeSuperadmin:
			return true
		}
		return false
	}); err != nil {
		return err
	}

	return v.RegisterValidation("userstatus", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case database.UserStatusActive, database.UserStatusInactive:
			return true
		}
		return false
	})
}
