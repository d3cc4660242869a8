package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"linkup-service/internal/api/handlers"
	"linkup-service/internal/api/middleware"
	"linkup-service/internal/config"
	"linkup-service/internal/repository"
	"linkup-service/internal/service"
	"linkup-service/pkg/logger"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Chat         *handlers.ChatHandler
	Message      *handlers.MessageHandler
	Follow       *handlers.FollowHandler
	Notification *handlers.NotificationHandler
	WebSocket    *handlers.WebSocketHandler
}

// Setup builds the gin engine with middleware and all routes mounted.
func Setup(
	cfg *config.Config,
	log *logger.Logger,
	codes repository.CodeRepository,
	auth service.AuthService,
	h Handlers,
) *gin.Engine {
	if cfg.Env != "local" && cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LogAPI(log))
	r.Use(middleware.CORS(cfg.Server.FrontendURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/ws", h.WebSocket.Serve)

	api := r.Group("/api")

	// Auth endpoints carry a tighter rate limit since they send email.
	authLimit := middleware.RateLimit(codes, 10, time.Minute, log)
	authGroup := api.Group("/auth", authLimit)
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/verify", h.Auth.Verify)
		authGroup.POST("/resend-code", h.Auth.ResendCode)
		authGroup.POST("/username", h.Auth.SetUsername)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/verify-reset-code", h.Auth.VerifyResetCode)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
	}

	protected := api.Group("", middleware.Auth(auth), middleware.RateLimit(codes, 300, time.Minute, log))
	{
		users := protected.Group("/users")
		{
			users.GET("/search", h.User.Search)
			users.GET("/me", h.User.MyInfo)
			users.POST("/subscribe", h.User.Subscribe)
			users.POST("/avatar", h.User.UploadAvatar)
			users.GET("/:username", h.User.Profile)
		}
		protected.GET("/avatars/*object", h.User.ServeAvatar)

		follows := protected.Group("/follows")
		{
			follows.POST("", h.Follow.Follow)
			follows.DELETE("/:userId", h.Follow.Unfollow)
			follows.GET("/status/:userId", h.Follow.Status)
			follows.GET("/followers/:userId", h.Follow.Followers)
			follows.GET("/following/:userId", h.Follow.Following)
			follows.GET("/mutuals", h.Follow.Mutuals)
		}

		chats := protected.Group("/chats")
		{
			chats.GET("", h.Chat.List)
			chats.POST("", h.Chat.Start)
			chats.GET("/:chatId", h.Chat.Get)
			chats.GET("/:chatId/messages", h.Message.History)
			chats.POST("/:chatId/read", h.Message.MarkRead)
		}

		groups := protected.Group("/groups")
		{
			groups.POST("", h.Chat.CreateGroup)
			groups.POST("/members", h.Chat.AddGroupMembers)
			groups.PATCH("/:chatId/name", h.Chat.RenameGroup)
			groups.POST("/:chatId/leave", h.Chat.LeaveGroup)
		}

		messages := protected.Group("/messages")
		{
			messages.POST("", h.Message.Send)
			messages.POST("/seen", h.Message.MarkSeen)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.POST("/read", h.Notification.MarkAllRead)
		}
	}

	return r
}
