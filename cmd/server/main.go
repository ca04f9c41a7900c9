package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/huddleup/huddle/backend/internal/config"
	"github.com/huddleup/huddle/backend/internal/handlers"
	"github.com/huddleup/huddle/backend/internal/middleware"
	"github.com/huddleup/huddle/backend/internal/models"
	"github.com/huddleup/huddle/backend/internal/services"
	"github.com/huddleup/huddle/backend/internal/utils"
	"github.com/huddleup/huddle/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Mode == "debug" {
		logger.Init("debug")
	} else {
		logger.Init("info")
	}

	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger())
	r.Use(logger.GinRecovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "huddle"})
	})

	db := models.GetDB()
	memberships := services.NewMembershipService(db)
	authHandler := handlers.NewAuthHandler(db, cfg)
	groupHandler := handlers.NewGroupHandler(db)

	joinLimiter := middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", authHandler.Me)

			groups := protected.Group("/groups")
			{
				groups.POST("", groupHandler.Create)
				groups.GET("/search", groupHandler.Search)
				groups.POST("/:id/join", joinLimiter, groupHandler.RequestJoin)
				groups.POST("/join-by-code", joinLimiter, groupHandler.JoinByCode)

				admin := groups.Group("")
				admin.Use(middleware.GroupAdminRequired(memberships))
				{
					admin.GET("/:id/members", groupHandler.Members)
					admin.PATCH("/members/:id/status", groupHandler.UpdateMemberStatus)
					admin.DELETE("/members/:id", groupHandler.RemoveMember)
				}
			}
		}
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("huddle listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
