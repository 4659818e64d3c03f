package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"communication-service/internal/config"
	"communication-service/internal/db"
	"communication-service/internal/directory"
	"communication-service/internal/handlers"
	"communication-service/internal/logging"
	"communication-service/internal/middleware"
	"communication-service/internal/notifications"
	"communication-service/internal/observability"
	"communication-service/internal/rabbitmq"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
	"communication-service/internal/telemetry"
	"communication-service/internal/ws"
)

const serviceName = "communication-service"

func main() {
	cfg := config.Load()
	logging.Init(cfg.Env)

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
	defer publisher.Close()
	log.Info().Str("mode", rabbitmq.PublisherMode(publisher)).Msg("event publisher ready")

	if cfg.AMQPURL != "" {
		if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange); err == nil {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		} else {
			log.Warn().Err(err).Msg("websocket event publisher disabled")
		}
	}

	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Env)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	users := directory.NewUserDir(database)
	courses := directory.NewCourseDir(database)

	sink := notifications.NewStoreSink(notificationRepo, publisher, cfg.NotificationRoutingKey)
	fanout := service.NewNotificationFanout(users, sink, cfg.FanoutParallelism, cfg.DeliveryTimeout)
	registry := service.NewRegistry(roomRepo, users, courses)
	appender := service.NewAppender(roomRepo, messageRepo, fanout, cfg.FanoutBudget)
	projector := service.NewProjector(roomRepo, messageRepo, users, courses)
	guard := service.NewGuard(roomRepo)

	hub := ws.NewHub()
	chatHandler := handlers.NewChatHandler(registry, appender, projector, guard, hub, audit)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	roomWS := ws.NewRoomWebSocketHandler(hub, guard, cfg.JWTSecret)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.POST("/chats", authMiddleware, chatHandler.CreateChat)
	router.GET("/chats", authMiddleware, chatHandler.ListMyChats)
	router.GET("/chats/:chat_id", authMiddleware, chatHandler.GetChatHistory)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostChatMessage)

	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	router.POST("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkNotificationRead)

	router.GET("/ws/chats/:chat_id", roomWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	log.Info().Str("port", cfg.Port).Msg("communication service listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
