package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/session"
	"github.com/playmatatu/billiards/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, sess *session.Session, hub *ws.Hub, shots handlers.ShotLog, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	setupRoutes(router, sess, sess, hub, shots, cfg)
}

func setupRoutes(router *gin.Engine, table handlers.Table, ctl ws.Controller, hub *ws.Hub, shots handlers.ShotLog, cfg *config.Config) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		t := v1.Group("/table")
		{
			t.GET("", handlers.GetTableState(table))
			t.GET("/shots", handlers.GetRecentShots(table, shots))
			t.GET("/ws", middleware.WebSocketCORSCheck(cfg), hub.Handler(ctl))
		}

		v1.POST("/admin/login", handlers.AdminLogin(cfg))

		adm := v1.Group("/admin", handlers.AdminAuthMiddleware(cfg))
		{
			adm.POST("/cue-ball/refresh", handlers.RefreshCueBall(table))
			adm.POST("/shot/force-aiming", handlers.ForceAiming(table))
			adm.POST("/shot/force-ready", handlers.ForceReady(table))
			adm.POST("/rerack", handlers.Rerack(table))

			adm.GET("/camera", handlers.GetCamera(table))
			adm.POST("/camera/reset", handlers.ResetCamera(table))
			adm.POST("/camera/manual", handlers.ToggleManualControl(table))
			adm.POST("/camera/switch/:camera", handlers.SwitchCamera(table))
		}
	}
}
