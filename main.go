package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-service/internal/config"
	"social-service/internal/enrich"
	"social-service/internal/firebase"
	"social-service/internal/handlers"
	"social-service/internal/middleware"
	"social-service/internal/notify"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
	"social-service/internal/storage"
	"social-service/internal/sync"
	"social-service/internal/telemetry"
	"social-service/internal/ws"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "social-service")
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	clients, err := firebase.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to firebase: %v", err)
	}
	defer clients.Close()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, "audit")
	defer auditPublisher.Close()
	if mode := rabbitmq.PublisherMode(auditPublisher); mode != "amqp" {
		log.Printf("audit publisher mode=%s reason=%q", mode, rabbitmq.PublisherNoopReason(auditPublisher))
	}
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.social", "social-service", cfg.Environment)

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, "social-events"); err != nil {
		log.Printf("domain events disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	userRepo := repositories.NewUserRepo(clients.Firestore)
	postRepo := repositories.NewPostRepo(clients.Firestore)
	commentRepo := repositories.NewCommentRepo(clients.Firestore)
	chatRepo := repositories.NewChatRepo(clients.Firestore)
	messageRepo := repositories.NewMessageRepo(clients.Firestore)
	notificationRepo := repositories.NewNotificationRepo(clients.Firestore)

	store := sync.NewPostStore()
	joiner := enrich.NewJoiner(userRepo)
	media := storage.NewMediaStore(clients.Bucket, cfg.StorageBucket)
	notifier := notify.NewNotifier(notificationRepo, userRepo, notify.NewExpoSender())
	accounts := firebase.NewAccounts(clients.Auth)
	verifier := middleware.NewFirebaseVerifier(clients.Auth)

	hub := ws.NewHub()

	userHandler := handlers.NewUserHandler(userRepo, postRepo, accounts, media, notifier, audit)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, store, media, notifier, audit)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, store, joiner, notifier)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, joiner, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, joiner)

	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, verifier)
	feedWS := ws.NewFeedWebSocketHandler(postRepo, store, verifier)
	commentWS := ws.NewCommentWebSocketHandler(commentRepo, verifier)
	notificationWS := ws.NewNotificationWebSocketHandler(notificationRepo, verifier)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("social-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/auth/register", userHandler.Register)

	router.GET("/feed", authMiddleware, postHandler.GetFeed)
	router.POST("/posts", authMiddleware, postHandler.CreatePost)
	router.DELETE("/posts/:post_id", authMiddleware, postHandler.DeletePost)
	router.POST("/posts/:post_id/like", authMiddleware, postHandler.ToggleLike)
	router.GET("/posts/:post_id/comments", authMiddleware, commentHandler.ListComments)
	router.POST("/posts/:post_id/comments", authMiddleware, commentHandler.AddComment)
	router.DELETE("/posts/:post_id/comments/:comment_id", authMiddleware, commentHandler.DeleteComment)

	router.GET("/users/search", authMiddleware, userHandler.SearchUsers)
	router.GET("/users/:uid", authMiddleware, userHandler.GetProfile)
	router.POST("/users/:uid/follow", authMiddleware, userHandler.Follow)
	router.DELETE("/users/:uid/follow", authMiddleware, userHandler.Unfollow)
	router.PUT("/me/profile", authMiddleware, userHandler.UpdateProfile)
	router.POST("/me/push-token", authMiddleware, userHandler.RegisterPushToken)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats/start", authMiddleware, chatHandler.StartChat)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetChatMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostChatMessage)

	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)

	router.GET("/ws/feed", feedWS.Handle)
	router.GET("/ws/posts/:post_id/comments", commentWS.Handle)
	router.GET("/ws/chats/:chat_id", chatWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
