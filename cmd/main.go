package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ytfeed/ytfeed-backend/internal/db"
	"github.com/ytfeed/ytfeed-backend/internal/handlers"
	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/middleware"
	"github.com/ytfeed/ytfeed-backend/internal/repos"
	"github.com/ytfeed/ytfeed-backend/internal/scheduler"
	"github.com/ytfeed/ytfeed-backend/internal/server"
	"github.com/ytfeed/ytfeed-backend/internal/services"
	"github.com/ytfeed/ytfeed-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Env
	googleClientID := utils.GetEnv("GOOGLE_CLIENT_ID", "", log)
	googleClientSecret := utils.GetEnv("GOOGLE_CLIENT_SECRET", "", log)
	youtubeAPIKey := utils.GetEnv("YOUTUBE_API_KEY", "", log)
	oauthBaseURL := utils.GetEnv("OAUTH_BASE_URL", "http://localhost:8080", log)
	refreshHours := utils.GetEnvAsInt("REFRESH_INTERVAL_HOURS", 24, log)
	if youtubeAPIKey == "" {
		log.Warn("YOUTUBE_API_KEY not set, catalog enrichment will fail")
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userDataRepo := repos.NewUserDataRepo(thePG, log)
	videoDataRepo := repos.NewVideoDataRepo(thePG, log)
	cachedVideoRepo := repos.NewCachedVideoRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	catalogService, err := services.NewYouTubeService(ctx, youtubeAPIKey, log)
	if err != nil {
		log.Fatal("Could not init YouTubeService", "error", err)
	}
	authService := services.NewGoogleAuthService(thePG, log, userRepo, googleClientID, googleClientSecret, oauthBaseURL+"/auth/google_auth")
	contributionService := services.NewContributionService(thePG, log, userDataRepo, videoDataRepo, cachedVideoRepo)
	topVideosService := services.NewTopVideosService(thePG, log, videoDataRepo, cachedVideoRepo, catalogService)

	// Scheduler: one synchronous refresh at startup, then a fixed interval.
	refreshScheduler := scheduler.New(log, time.Duration(refreshHours)*time.Hour, topVideosService.Refresh)
	if err := refreshScheduler.Start(ctx); err != nil {
		log.Fatal("Could not start refresh scheduler", "error", err)
	}
	defer refreshScheduler.Stop()

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	dataHandler := handlers.NewDataHandler(log, contributionService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		DataHandler:    dataHandler,
		AuthMiddleware: authMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
}
