package main

import (
	"context"
	"time"

	"nebula-chat/config"
	"nebula-chat/internal/ai"
	"nebula-chat/internal/handler"
	"nebula-chat/internal/redis"
	"nebula-chat/internal/repository"
	"nebula-chat/internal/server"
	"nebula-chat/internal/services"
	"nebula-chat/internal/storage"
	"nebula-chat/internal/ws"
	"nebula-chat/pkg/database"
	"nebula-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	defer l.Logger.Sync()
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	if err := database.Migrate(database.DB); err != nil {
		l.Errorf("Failed to apply migrations: %v", err)
		return
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})

	presence := redis.NewPresenceStore(redis.GetClient(), 0)
	limiter := redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())

	var uploadService *services.UploadService
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			l.Errorf("Failed to initialize object storage: %v", err)
			return
		}
		uploadService = services.NewUploadService(s3Client)
	} else {
		l.Warnf("S3_BUCKET not set, uploads are disabled")
		uploadService = services.NewUploadService(nil)
	}

	userRepo := repository.NewUserRepository(database.DB)
	channelRepo := repository.NewChannelRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	hub := ws.NewHub(l)
	go hub.Run(hubCtx)

	runner := ai.NewProcessRunner(cfg.AIPythonBin, cfg.AIScriptDir, l)
	aiTimeout := time.Duration(cfg.AITimeoutMs) * time.Millisecond
	indexTimeout := time.Duration(cfg.IndexTimeout) * time.Millisecond
	dispatcher := ai.NewDispatcher(runner, channelRepo, aiTimeout, l)
	indexer := ai.NewIndexer(runner, messageRepo, channelRepo, userRepo, indexTimeout, l)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, presence, hub, l)
	channelService := services.NewChannelService(channelRepo, userRepo)
	chatService := services.NewChatService(messageRepo, channelRepo, userRepo, hub, dispatcher, indexer, l)

	handlers := &server.Handlers{
		Auth:    handler.NewAuthHandler(authService, userService),
		User:    handler.NewUserHandler(userService),
		Channel: handler.NewChannelHandler(channelService, chatService),
		Message: handler.NewMessageHandler(chatService, indexer),
		Upload:  handler.NewUploadHandler(uploadService),
		WS:      ws.NewHandler(authService, chatService, hub, presence, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %v", err)
	}
}
