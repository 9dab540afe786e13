package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ytfeed/ytfeed-backend/internal/handlers"
	"github.com/ytfeed/ytfeed-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	DataHandler    *handlers.DataHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// The extension and the YouTube watch page are the only browsers of this
	// API; both need the credential cookie.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"chrome-extension://jmllmfhiphjnhjjibbhoaamcncenlmao",
			"https://www.youtube.com",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/", handlers.Home)
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/get-data-by-tag/:tag", cfg.DataHandler.GetDataByTag)
		api.GET("/get-cached-videos/:tag", cfg.DataHandler.GetCachedVideos)

		protected := api.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protected.POST("/store-data", cfg.DataHandler.StoreData)
		protected.GET("/user-contributions", cfg.DataHandler.UserContributions)
	}

	auth := router.Group("/auth")
	{
		auth.GET("/login", cfg.AuthHandler.Login)
		auth.GET("/google_auth", cfg.AuthHandler.GoogleAuth)
		auth.GET("/user", cfg.AuthHandler.GetUser)
		auth.GET("/logout", cfg.AuthHandler.Logout)
	}

	return router
}
