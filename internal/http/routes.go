package http

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/polls/internal/config"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, cfg config.Config) error {
	tmpl, err := LoadTemplates()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// --- Middleware ---
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{cfg.CORSOrigin},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Admin-Token", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
	}))

	limiter := NewIPRateLimiter(rate.Limit(cfg.VoteRateLimit), cfg.VoteRateBurst)

	router.GET("/healthz", env.Health)

	// --- Pages ---
	router.GET("/", env.Index)
	router.GET("/:id/", env.Detail)
	router.GET("/:id/results/", env.Results)
	router.POST("/:id/vote/", RateLimitMiddleware(limiter), env.Vote)

	// --- API Routes ---
	api := router.Group("/api")
	{
		api.GET("/questions", env.ListQuestions)
		api.GET("/questions/:id", env.GetQuestion)
		api.GET("/questions/:id/results", env.GetResults)
		api.POST("/questions/:id/vote", RateLimitMiddleware(limiter), env.VoteOnQuestion)

		if cfg.AdminToken != "" {
			api.POST("/admin/questions", AdminAuthMiddleware(cfg.AdminToken), env.CreateQuestion)
		}
	}

	return nil
}
