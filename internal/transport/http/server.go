package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "mockchat/internal/app"
	"mockchat/internal/bootstrap"
	"mockchat/internal/cache"
	"mockchat/internal/model"
	"mockchat/internal/platform/rabbitmq"
	"mockchat/internal/presence"
	"mockchat/internal/repository"
	"mockchat/internal/transport/http/handler"
	"mockchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	inviteRepo := repository.NewInviteTokenRepository(app.MySQL)
	conversationRepo := repository.NewConversationRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	readRepo := repository.NewReadReceiptRepository(app.MySQL)

	messagePublisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	transcriptCache := cache.NewTranscriptCache(
		app.Redis,
		time.Duration(app.Config.Redis.TranscriptTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.TranscriptDirtyTTLSeconds)*time.Second,
	)
	typingStore := presence.NewTypingStore(app.Redis, app.Config.TypingTTL())

	authService := appsvc.NewAuthService(
		userRepo,
		inviteRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		time.Duration(app.Config.Auth.InviteExpireHours)*time.Hour,
	)
	conversationService := appsvc.NewConversationService(conversationRepo)
	messageService := appsvc.NewMessageService(conversationRepo, messageRepo, readRepo, messagePublisher, transcriptCache)
	reportService := appsvc.NewReportService(conversationRepo)

	authHandler := handler.NewAuthHandler(authService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	messageHandler := handler.NewMessageHandler(messageService)
	typingHandler := handler.NewTypingHandler(typingStore)
	reportHandler := handler.NewReportHandler(reportService)
	streamHandler := handler.NewStreamHandler(
		app.StreamRegistry,
		messageRepo,
		typingStore,
		app.Config.PollInterval(),
		app.Config.KeepAliveInterval(),
	)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.PATCH("/password", authHandler.SetPassword)
	authGroup.GET("/me", authJWT, authHandler.Me)
	authGroup.POST("/users", authJWT, middleware.RequireRole(model.RoleAdmin), authHandler.Invite)

	convGroup := v1.Group("/conversations")
	convGroup.Use(authJWT)
	convGroup.POST("", middleware.RequireRole(model.RoleTrainer, model.RoleAdmin), conversationHandler.Create)
	convGroup.GET("", conversationHandler.List)
	convGroup.GET("/:key", conversationHandler.Get)
	convGroup.POST("/:key/end", conversationHandler.End)

	// Agents join by conversation key alone, so everything on the live chat
	// path stays token-free.
	v1.POST("/agent/login", conversationHandler.AgentLogin)
	v1.POST("/messages", messageHandler.Send)
	v1.GET("/messages", messageHandler.List)
	v1.POST("/typing", typingHandler.Update)
	v1.POST("/reads", messageHandler.MarkRead)
	v1.GET("/reads", messageHandler.ListReads)
	v1.GET("/stream", streamHandler.Subscribe)

	v1.GET("/reports", authJWT, middleware.RequireRole(model.RoleTrainer, model.RoleAdmin), reportHandler.Generate)

	return router
}
