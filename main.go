package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"grwcomm/internal/cache"
	"grwcomm/internal/config"
	"grwcomm/internal/db"
	"grwcomm/internal/handlers"
	"grwcomm/internal/middleware"
	"grwcomm/internal/observability"
	"grwcomm/internal/rabbitmq"
	"grwcomm/internal/repositories"
	"grwcomm/internal/telemetry"
	"grwcomm/internal/ws"
)

const serviceName = "grwcomm"

func main() {
	cfg := config.Load()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(context.Background(), serviceName, cfg.Environment, cfg.OTLPEndpoint)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	rdb := cache.NewRedisClient(cfg.RedisURL)
	unreadCache := cache.NewUnreadCache(rdb, 30*time.Second)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	if cfg.AMQPURL != "" {
		if eventPub, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange+".events"); err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPub)
			defer eventPub.Close()
		}
	}

	audit := telemetry.NewAuditEmitter(publisher, "audit.events", serviceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	categoryRepo := repositories.NewCategoryRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	bookingRepo := repositories.NewBookingRepo(database)
	creditRepo := repositories.NewCreditRepo(database)
	revelationRepo := repositories.NewRevelationRepo(database)
	reportRepo := repositories.NewReportRepo(database)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	profileHandler := handlers.NewProfileHandler(userRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, bookingRepo, reportRepo, revelationRepo, userRepo, audit, hub, unreadCache)
	slotHandler := handlers.NewSlotHandler(bookingRepo, reportRepo, userRepo)
	creditHandler := handlers.NewCreditHandler(creditRepo)
	revealHandler := handlers.NewRevealHandler(revelationRepo, userRepo)
	reportHandler := handlers.NewReportHandler(reportRepo, userRepo, audit)
	adminHandler := handlers.NewAdminHandler(reportRepo, creditRepo, bookingRepo, userRepo, audit)

	conversationWS := ws.NewConversationWebSocketHandler(hub, reportRepo, cfg.JWTSecret)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(observability.HTTPMetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth", rateLimiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	api := router.Group("/", rateLimiter.Middleware(), middleware.AuthMiddleware(cfg.JWTSecret))

	api.GET("/me", profileHandler.Me)
	api.PATCH("/me/profile", profileHandler.Update)

	api.GET("/categories", categoryHandler.List)
	api.POST("/categories", categoryHandler.Create)
	api.PATCH("/categories/:category_id", categoryHandler.Update)
	api.DELETE("/categories/:category_id", categoryHandler.Delete)

	api.POST("/messages", messageHandler.Send)
	api.POST("/messages/:message_id/read", messageHandler.MarkMessageRead)
	api.GET("/conversations", messageHandler.ListConversations)
	api.GET("/conversations/:peer_id", messageHandler.GetConversation)
	api.POST("/conversations/:peer_id/read", messageHandler.MarkConversationRead)
	api.GET("/unread-count", messageHandler.UnreadCount)

	api.GET("/users/:user_id/slots", slotHandler.GetAvailability)
	api.GET("/users/:user_id/can-send", slotHandler.CanSend)

	api.GET("/credits", creditHandler.GetAccount)
	api.GET("/credits/transactions", creditHandler.ListTransactions)

	api.POST("/reveal", revealHandler.Reveal)
	api.GET("/reveal/:user_id", revealHandler.Status)

	api.POST("/reports", reportHandler.Create)
	api.GET("/blocks", reportHandler.ListBlocks)

	admin := api.Group("/admin", middleware.StaffOnly())
	admin.GET("/blocks", adminHandler.ListBlocks)
	admin.POST("/blocks/:block_id/review", adminHandler.ReviewBlock)
	admin.POST("/credits/grant", adminHandler.GrantCredits)
	admin.POST("/maintenance/cleanup-bookings", adminHandler.CleanupBookings)
	admin.POST("/maintenance/sweep-credit-resets", adminHandler.SweepWeeklyResets)

	router.GET("/ws/conversations/:user_id", conversationWS.Handle)

	log.Printf("listening on :%s environment=%s", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
