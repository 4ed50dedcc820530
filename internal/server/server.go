package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nebula-chat/config"
	"nebula-chat/internal/handler"
	"nebula-chat/internal/middleware"
	"nebula-chat/internal/redis"
	"nebula-chat/internal/services"
	"nebula-chat/internal/transport/httpdto"
	"nebula-chat/internal/ws"
	"nebula-chat/pkg/database"
	"nebula-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Channel *handler.ChannelHandler
	Message *handler.MessageHandler
	Upload  *handler.UploadHandler
	WS      *ws.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authRequired := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Register)
		auth.POST("/login", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Login)
		auth.GET("/me", authRequired, handlers.Auth.Me)
	}

	users := s.engine.Group("/v1/users", authRequired)
	{
		users.GET("", handlers.User.List)
		users.GET("/:id", handlers.User.GetByID)
		users.PUT("/status", handlers.User.UpdateStatus)
	}

	channels := s.engine.Group("/v1/channels", authRequired)
	{
		channels.POST("", handlers.Channel.Create)
		channels.GET("", handlers.Channel.List)
		channels.GET("/:id", handlers.Channel.GetByID)
		channels.GET("/:id/messages", handlers.Channel.Messages)
	}

	messages := s.engine.Group("/v1/messages", authRequired)
	{
		messages.POST("/:id/reactions", handlers.Message.ToggleReaction)
		messages.POST("/:id/replies", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.CreateThreadReply)
		messages.GET("/:id/replies", handlers.Message.ListThreadReplies)
	}

	uploads := s.engine.Group("/v1/uploads", authRequired)
	{
		uploads.POST("", handlers.Upload.Upload)
		uploads.GET("/url", handlers.Upload.RefreshURL)
	}

	admin := s.engine.Group("/v1/admin", authRequired)
	{
		admin.POST("/reindex", handlers.Message.ReindexAll)
	}

	s.engine.GET("/ws", handlers.WS.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
