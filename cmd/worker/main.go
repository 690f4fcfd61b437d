package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beerbuddy/beerbuddy/internal/config"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/internal/workers"
	"github.com/beerbuddy/beerbuddy/pkg/cache"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BeerBuddy notification worker...")

	// Only used to resolve actor names.
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents, cfg.Kafka.GroupID, logger.Logger)

	userRepo := repository.NewUserRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(redisClient, cfg.Notification.MaxItems, cfg.Notification.TTL)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger)

	worker := workers.NewNotificationWorker(consumer, notificationService, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Start(ctx); err != nil {
			logger.WithError(err).Error("Notification worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	<-done

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop notification worker")
	}

	logger.Info("Worker exited")
}
