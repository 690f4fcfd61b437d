package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/config"
	"github.com/beerbuddy/beerbuddy/internal/handlers"
	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/cache"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BeerBuddy API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	eventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents)
	defer eventsProducer.Close()

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create token manager")
	}
	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		Memory:      cfg.Password.Memory,
		Iterations:  cfg.Password.Iterations,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(redisClient, cfg.Notification.MaxItems, cfg.Notification.TTL)

	aggregator := services.NewAggregator(postRepo, likeRepo, followRepo)
	feedOptions := services.FeedOptions{
		DefaultLimit: cfg.Feed.DefaultLimit,
		MaxLimit:     cfg.Feed.MaxLimit,
		MinBeers:     cfg.Post.MinBeers,
		MaxBeers:     cfg.Post.MaxBeers,
	}

	userService := services.NewUserService(userRepo, aggregator, hasher, tokens, eventsProducer, logger)
	followService := services.NewFollowService(followRepo, userRepo, aggregator, eventsProducer, logger)
	feedService := services.NewFeedService(postRepo, followRepo, aggregator, feedOptions, eventsProducer, logger)
	likeService := services.NewLikeService(postRepo, likeRepo, aggregator, eventsProducer, logger)
	commentService := services.NewCommentService(postRepo, commentRepo, aggregator, eventsProducer, logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Users:         handlers.NewUserHandler(userService, followService, logger),
		Feed:          handlers.NewFeedHandler(feedService, likeService, commentService, logger),
		Notifications: handlers.NewNotificationHandler(notificationService, logger),
		Viewers:       tokens,
		Metrics:       middleware.NewMetrics(),
		RateLimit: handlers.RateLimitOptions{
			Counter:  redisClient,
			Requests: int64(cfg.RateLimit.AuthRequests),
			Window:   cfg.RateLimit.AuthWindow,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("addr", cfg.Server.Addr()).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
