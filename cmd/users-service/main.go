package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/meridianbank/core/internal/shared/auth"
	"github.com/meridianbank/core/internal/shared/config"
	"github.com/meridianbank/core/internal/shared/database"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/middleware"
	"github.com/meridianbank/core/internal/users/handler"
	"github.com/meridianbank/core/internal/users/repository"
	"github.com/meridianbank/core/internal/users/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	if err := userRepo.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The service must not come up without a working event channel.
	bus, err := events.Connect(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("Failed to connect to event bus: %v", err)
	}
	defer bus.Close()

	issuer := &auth.Issuer{Secret: []byte(cfg.JWTSecret)}

	userSvc := service.NewUserService(userRepo, events.NewPublisher(bus), issuer)
	userHandler := handler.NewUserHandler(userSvc)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/auth/register", userHandler.Register)
		v1.POST("/auth/login", userHandler.Login)

		me := v1.Group("/users/me", middleware.AuthMiddleware(issuer))
		{
			me.GET("", userHandler.Me)
			me.PATCH("", userHandler.UpdateMe)
		}
	}

	log.Printf("Users service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
