// Package main runs the learning platform quiz and certification HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corelearn/backend/config"
	"github.com/corelearn/backend/internal/auth"
	"github.com/corelearn/backend/internal/certificates"
	"github.com/corelearn/backend/internal/middleware"
	"github.com/corelearn/backend/internal/models"
	"github.com/corelearn/backend/internal/quizzes"
	"github.com/corelearn/backend/pkg/database"
	"github.com/corelearn/backend/pkg/queue"
	"github.com/corelearn/backend/pkg/redis"
	"github.com/corelearn/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis powers the question cache and the certificate event queue; the
	// server degrades to uncached, eventless operation without it.
	var questionCache *quizzes.QuestionCache
	var events quizzes.EventPublisher
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		questionCache = quizzes.NewQuestionCache(rdb.Client, time.Duration(cfg.Quiz.QuestionCacheTTLSec)*time.Second, logger)
		events = queue.NewQueue(rdb.Client, logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret)

	// Quiz attempt engine
	quizRepo := quizzes.NewRepository(pool)
	quizEngine := quizzes.NewEngine(quizRepo, questionCache, events, cfg.Quiz, logger)
	quizHandler := quizzes.NewHandler(quizEngine, logger)

	// Certificates
	certRepo := certificates.NewRepository(pool)
	certHandler := certificates.NewHandler(certRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Protected API (JWT required; tokens come from the identity service)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		adminOnly := middleware.RequireRole(string(models.RoleAdmin))

		// Quiz authoring (admin)
		api.POST("/quizzes", adminOnly, quizHandler.Create)
		api.POST("/quizzes/:quizId/questions", adminOnly, quizHandler.AddQuestion)
		api.DELETE("/questions/:questionId", adminOnly, quizHandler.DeleteQuestion)

		// Quiz taking
		api.GET("/quizzes/:quizId/questions", quizHandler.ListQuestions)
		api.GET("/materials/:materialId/quiz", quizHandler.Status)
		api.POST("/quizzes/submit", quizHandler.Submit)

		// Certificates
		api.GET("/certificates/:userId/:quizId", certHandler.Get)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
