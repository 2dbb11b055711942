package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/orgtask-api/internal/config"
	"github.com/yukikurage/orgtask-api/internal/constants"
	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/handlers"
	"github.com/yukikurage/orgtask-api/internal/logging"
	"github.com/yukikurage/orgtask-api/internal/middleware"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/push"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	isProduction := cfg.GinMode == "release"
	logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Release: isProduction})
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logging.Logger.WithError(err).Fatal("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logging.Logger.WithError(err).Fatal("failed to run migrations")
	}

	repos := repository.NewRepositories(database.GetDB())

	if err := bootstrapRoot(context.Background(), cfg, repos); err != nil {
		logging.Logger.WithError(err).Fatal("failed to create root user")
	}

	// Push delivery runs in the background and is drained on shutdown
	var sender push.Sender = push.LogSender{}
	if cfg.PushEndpoint != "" {
		sender = push.NewHTTPSender(cfg.PushEndpoint, cfg.PushServerKey)
	}
	queue := push.NewQueue(repos.FcmTokens, sender, push.Options{
		Title:   constants.PushNotificationTitle,
		Workers: cfg.PushWorkers,
		Size:    cfg.PushQueueSize,
	})
	defer queue.Close()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logging.Logger.WithError(err).Fatal("failed to create redis store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Org Task API is running",
		})
	})

	handlers.RegisterRoutes(r.Group("/api"), repos, queue)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Logger.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.WithError(err).Error("graceful shutdown failed")
	}
}

// bootstrapRoot creates the ADMIN root from ADMIN_EMAIL and ADMIN_PASSWORD
// when no user exists yet.
func bootstrapRoot(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	count, err := repos.Users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user, err := services.NewHierarchyService(repos.Users, repos.Teams).CreateUser(ctx, services.CreateUserInput{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Roles:    []models.Role{models.RoleAdmin},
	})
	if err != nil {
		return err
	}
	logging.Logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("created root user")
	return nil
}
