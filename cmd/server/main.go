package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkup-service/internal/adapters/kafka"
	"linkup-service/internal/adapters/mail"
	"linkup-service/internal/adapters/storage"
	"linkup-service/internal/api/handlers"
	"linkup-service/internal/api/routes"
	"linkup-service/internal/config"
	"linkup-service/internal/database"
	"linkup-service/internal/repository"
	"linkup-service/internal/service"
	"linkup-service/internal/ws"
	"linkup-service/pkg/logger"
)

// @title           LinkUp Service API
// @version         1.0
// @description     Social messaging backend: chats, presence, follows and push notifications.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoDB, err := database.NewMongoConnection(&cfg.Mongo)
	if err != nil {
		appLog.Fatal("connect mongo", "error", err)
	}
	defer mongoDB.Close(context.Background())

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		appLog.Fatal("connect redis", "error", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(mongoDB.DB)
	chatRepo := repository.NewChatRepository(mongoDB.DB)
	messageRepo := repository.NewMessageRepository(mongoDB.DB)
	followRepo := repository.NewFollowRepository(mongoDB.DB)
	notificationRepo := repository.NewNotificationRepository(mongoDB.DB)
	codeRepo := repository.NewCodeRepository(redisClient)

	var dispatcher service.PushDispatcher = service.NoopPushDispatcher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.InitProducer(cfg.Kafka.Brokers)
		if err != nil {
			appLog.Fatal("init kafka producer", "error", err)
		}
		defer producer.Close()
		dispatcher = service.NewKafkaPushDispatcher(producer, cfg.Kafka.Topic, appLog)
	}

	avatarStore, err := storage.NewAvatarStore(&cfg.Minio)
	if err != nil {
		appLog.Fatal("init avatar store", "error", err)
	}

	mailer := mail.NewSMTPMailer(&cfg.SMTP)

	presence := ws.NewPresence()
	messageSvc := service.NewMessageService(messageRepo, chatRepo, userRepo, dispatcher, appLog)
	hub := ws.NewHub(presence, messageSvc, appLog)
	go hub.Run(ctx)

	authSvc := service.NewAuthService(userRepo, codeRepo, mailer, &cfg.JWT, appLog)
	go authSvc.RunCleanup(ctx, time.Hour)

	chatSvc := service.NewChatService(chatRepo, messageRepo, userRepo, hub, appLog)
	groupSvc := service.NewGroupService(chatRepo, messageRepo, userRepo, hub, appLog)
	followSvc := service.NewFollowService(followRepo, userRepo, notificationRepo, hub, appLog)
	userSvc := service.NewUserService(userRepo, followRepo, hub, appLog)
	notificationSvc := service.NewNotificationService(notificationRepo)

	engine := routes.Setup(cfg, appLog, codeRepo, authSvc, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authSvc),
		User:         handlers.NewUserHandler(userSvc, avatarStore, appLog),
		Chat:         handlers.NewChatHandler(chatSvc, groupSvc),
		Message:      handlers.NewMessageHandler(messageSvc),
		Follow:       handlers.NewFollowHandler(followSvc),
		Notification: handlers.NewNotificationHandler(notificationSvc),
		WebSocket:    handlers.NewWebSocketHandler(hub, cfg.Server.FrontendURL, appLog),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown", "error", err)
	}
}
