package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/meridianbank/core/internal/accounts/handler"
	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/accounts/service"
	"github.com/meridianbank/core/internal/shared/auth"
	"github.com/meridianbank/core/internal/shared/config"
	"github.com/meridianbank/core/internal/shared/database"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/middleware"
	redisClient "github.com/meridianbank/core/internal/shared/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(true)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	if err := accountRepo.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cardRepo := repository.NewCardRepository(db)

	// Redis connection (balance read model)
	redis, err := redisClient.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// The service must not come up without a working event channel.
	bus, err := events.Connect(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("Failed to connect to event bus: %v", err)
	}
	defer bus.Close()

	issuer := &auth.Issuer{Secret: []byte(cfg.JWTSecret)}
	publisher := events.NewPublisher(bus)

	readRepo := repository.NewAccountReadRepository(db, redis.Client)

	accountSvc := service.NewAccountService(accountRepo, readRepo, publisher)
	cardSvc := service.NewCardService(accountRepo, cardRepo, publisher)

	accountHandler := handler.NewAccountHandler(accountSvc, cardSvc)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", middleware.AuthMiddleware(issuer))
	{
		v1.POST("/accounts", accountHandler.OpenAccount)
		v1.GET("/accounts", accountHandler.ListAccounts)
		v1.GET("/accounts/:accountId/balance", accountHandler.GetBalance)
		v1.GET("/accounts/:accountId/cards", accountHandler.ListCards)
		v1.POST("/accounts/:accountId/cards", accountHandler.IssueCard)
		v1.DELETE("/cards/:cardId", accountHandler.DeleteCard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(bus, events.UserRegisteredQueue, events.UserRegistered, accountSvc.HandleUserRegistered)
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Accounts service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
