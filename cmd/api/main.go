package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ummah-chat/config"
	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/domain/user"
	"ummah-chat/internal/handler"
	"ummah-chat/internal/middleware"
	appredis "ummah-chat/internal/redis"
	"ummah-chat/internal/repository"
	"ummah-chat/internal/services"
	"ummah-chat/internal/websocket"
	"ummah-chat/pkg/database"
	"ummah-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := logger.New(mode)
	defer appLogger.Logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&chat.Room{},
		&chat.Participant{},
		&chat.Message{},
		&chat.MessageReaction{},
		&chat.MessageRead{},
		&chat.Comment{},
		&chat.Reply{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	// Raw migrations carry what AutoMigrate cannot express, notably the
	// partial unique index keeping the active room a singleton. They run
	// after AutoMigrate so the tables they index already exist.
	if err := database.ApplyRawMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher := appredis.NewPublisher(redisClient)
	subscriber := appredis.NewSubscriber(redisClient)
	presence := appredis.NewPresenceStore(redisClient, 5*time.Minute)

	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := services.NewAuthService(cfg)
	chatService := services.NewChatService(cfg.RoomName, roomRepo, userRepo, publisher, appLogger)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(subscriber, hub)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			appLogger.Errorf("redis bridge stopped: %v", err)
		}
	}()

	wsHandler := websocket.NewHandler(authService, chatService, hub, presence, appLogger)
	chatHandler := handler.NewChatHandler(chatService, presence, appLogger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.ErrorHandler(appLogger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/ws/chat", wsHandler.Connect)

	api := r.Group("/api/chat")
	api.Use(middleware.AuthMiddleware(authService))
	{
		api.GET("/history", chatHandler.History)
		api.GET("/presence", chatHandler.Presence)
		api.GET("/message/:id", chatHandler.GetMessage)
		api.DELETE("/message/:id", chatHandler.DeleteMessage)
		api.POST("/read", chatHandler.MarkRead)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AppPort),
		Handler: r,
	}

	go func() {
		appLogger.Infof("starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("server shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		appLogger.Errorf("redis close: %v", err)
	}
}
