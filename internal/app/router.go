package app

import (
	"context"
	"time"

	"communityapp/internal/config"
	"communityapp/internal/logger"
	"communityapp/internal/middleware"
	"communityapp/internal/repository"
	"communityapp/internal/service"
	"communityapp/internal/util"
	"communityapp/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the infrastructure clients the routes are built on. Redis and
// Broker may be nil.
type Deps struct {
	DB      *gorm.DB
	Redis   *util.RedisClient
	Broker  *util.RabbitMQClient
	Hub     *websocket.Hub
	Storage service.FileStorage
}

// Server bundles the engine with what main needs after startup.
type Server struct {
	Engine *gin.Engine
	Hub    *websocket.Hub
	Broker *util.RabbitMQClient
	Redis  *util.RedisClient
}

// NewRouter connects the database, cache, broker and file storage, seeds the
// admin account, starts background workers and returns the HTTP engine.
func NewRouter(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	db, err := repository.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}

	var redisClient *util.RedisClient
	if cfg.RedisEnabled {
		redisClient = initRedisWithRetry(cfg)
	}

	var rabbitMQ *util.RabbitMQClient
	if cfg.RabbitMQEnabled {
		rabbitMQ = initRabbitMQWithRetry(cfg)
	}

	storage, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	deps := Deps{DB: db, Redis: redisClient, Broker: rabbitMQ, Hub: wsHub, Storage: storage}
	engine, authService := buildRouter(cfg, deps)

	if cfg.RateLimitEnabled {
		logger.Info("rate limiting enabled", zap.Int("rps", cfg.RateLimitRPS), zap.Int("burst", cfg.RateLimitBurst))
	}

	admin, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Warn("failed to seed admin account", zap.Error(err))
	}

	if rabbitMQ != nil {
		worker := service.NewNotificationWorker(rabbitMQ, wsHub)
		if err := worker.Start(ctx); err != nil {
			logger.Warn("failed to start notification worker", zap.Error(err))
		} else {
			logger.Info("notification worker started")
		}
	} else {
		logger.Info("notification worker not started, notifications are pushed directly")
	}

	if cfg.ContentJobEnabled && admin != nil {
		job := service.NewContentJob(repository.NewPostRepository(db), admin.ID, cfg.DailyQuoteURL)
		go job.Run(ctx)
	}

	return &Server{Engine: engine, Hub: wsHub, Broker: rabbitMQ, Redis: redisClient}, nil
}

// buildRouter wires repositories, services and handlers onto a new engine.
func buildRouter(cfg *config.Config, deps Deps) (*gin.Engine, service.AuthService) {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(middleware.RequestLogger(), middleware.Recovery())
	r.Use(corsMiddleware(cfg.ClientURL))

	if cfg.RateLimitEnabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}

	db := deps.DB

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	postRepo := repository.NewPostRepository(db)
	productRepo := repository.NewProductRepository(db)
	commentRepo := repository.NewCommentRepository(db, deps.Redis)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, deps.Redis)
	bannerRepo := repository.NewBannerRepository(db, deps.Redis)
	announcementRepo := repository.NewAnnouncementRepository(db, deps.Redis)

	// A nil *RabbitMQClient must not become a non-nil Publisher.
	var publisher service.Publisher
	if deps.Broker != nil {
		publisher = deps.Broker
	}

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiresIn)
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	followService := service.NewFollowService(followRepo, userRepo, notificationService)
	likeService := service.NewLikeService(likeRepo, userRepo, postRepo, commentRepo, notificationService)
	favoriteService := service.NewFavoriteService(favoriteRepo, postRepo)
	commentService := service.NewCommentService(commentRepo, userRepo, postRepo, productRepo, notificationService)
	uploadService := service.NewUploadService(deps.Storage, cfg.BaseURL)
	postService := service.NewPostService(postRepo, favoriteRepo, uploadService)
	productService := service.NewProductService(productRepo, uploadService)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationService)
	bannerService := service.NewBannerService(bannerRepo)
	announcementService := service.NewAnnouncementService(announcementRepo)

	if deps.Hub != nil {
		notificationService.SetRealtime(deps.Hub)
		messageService.SetRealtime(deps.Hub)
	}

	// Handlers
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	followHandler := NewFollowHandler(followService)
	likeHandler := NewLikeHandler(likeService)
	favoriteHandler := NewFavoriteHandler(favoriteService)
	commentHandler := NewCommentHandler(commentService)
	postHandler := NewPostHandler(postService)
	productHandler := NewProductHandler(productService)
	messageHandler := NewMessageHandler(messageService)
	notificationHandler := NewNotificationHandler(notificationService)
	bannerHandler := NewBannerHandler(bannerService)
	announcementHandler := NewAnnouncementHandler(announcementService)
	uploadHandler := NewUploadHandler(uploadService)

	requireAuth := middleware.Auth(authService)
	optionalAuth := middleware.OptionalAuth(authService)
	adminOnly := middleware.Admin()

	if _, ok := deps.Storage.(*service.LocalStorage); ok {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.POST("/login", authHandler.Login)
			users.GET("/profile", requireAuth, userHandler.GetProfile)
			users.PUT("/profile", requireAuth, userHandler.UpdateProfile)
			users.PUT("/password", requireAuth, authHandler.ChangePassword)
			users.GET("/:id", userHandler.GetUser)
		}

		follows := api.Group("/follows")
		{
			follows.GET("/followers/:id", followHandler.GetFollowers)
			follows.GET("/following/:id", followHandler.GetFollowing)
			follows.GET("/check/:id", requireAuth, followHandler.CheckFollowing)
			follows.POST("", requireAuth, followHandler.Follow)
			follows.DELETE("/:id", requireAuth, followHandler.Unfollow)
		}

		likes := api.Group("/likes")
		likes.Use(requireAuth)
		{
			likes.POST("", likeHandler.Like)
			likes.DELETE("", likeHandler.Unlike)
			likes.GET("/check", likeHandler.CheckLike)
		}

		favorites := api.Group("/favorites")
		favorites.Use(requireAuth)
		{
			favorites.GET("", favoriteHandler.GetFavorites)
			favorites.POST("/:postId", favoriteHandler.AddFavorite)
			favorites.DELETE("/:postId", favoriteHandler.RemoveFavorite)
		}

		comments := api.Group("/comments")
		{
			comments.GET("/post/:postId", commentHandler.GetPostComments)
			comments.GET("/product/:productId", commentHandler.GetProductComments)
			comments.POST("", requireAuth, commentHandler.CreateComment)
			comments.DELETE("/:id", requireAuth, commentHandler.DeleteComment)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", optionalAuth, postHandler.GetPosts)
			posts.GET("/categories/list", postHandler.GetCategories)
			posts.GET("/user/:userId", postHandler.GetUserPosts)
			posts.GET("/:id", optionalAuth, postHandler.GetPost)
			posts.POST("", requireAuth, postHandler.CreatePost)
			posts.PUT("/:id", requireAuth, postHandler.UpdatePost)
			posts.DELETE("/:id", requireAuth, postHandler.DeletePost)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/categories/list", productHandler.GetCategories)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", requireAuth, productHandler.CreateProduct)
			products.PUT("/:id", requireAuth, productHandler.UpdateProduct)
			products.DELETE("/:id", requireAuth, productHandler.DeleteProduct)
		}

		messages := api.Group("/messages")
		messages.Use(requireAuth)
		{
			messages.POST("", messageHandler.SendMessage)
			messages.GET("/chat/:userId", messageHandler.GetConversation)
			messages.GET("/list", messageHandler.GetConversations)
			messages.GET("/unread/count", messageHandler.GetUnreadCount)
			messages.PUT("/:messageId/read", messageHandler.MarkAsRead)
			messages.DELETE("/:messageId", messageHandler.DeleteMessage)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
		}

		banners := api.Group("/banners")
		{
			banners.GET("", bannerHandler.GetBanners)
			banners.POST("", requireAuth, adminOnly, bannerHandler.CreateBanner)
			banners.PUT("/:id", requireAuth, adminOnly, bannerHandler.UpdateBanner)
			banners.DELETE("/:id", requireAuth, adminOnly, bannerHandler.DeleteBanner)
		}

		announcements := api.Group("/announcements")
		{
			announcements.GET("", announcementHandler.GetAnnouncements)
			announcements.POST("", requireAuth, adminOnly, announcementHandler.CreateAnnouncement)
			announcements.PUT("/:id", requireAuth, adminOnly, announcementHandler.UpdateAnnouncement)
			announcements.DELETE("/:id", requireAuth, adminOnly, announcementHandler.DeleteAnnouncement)
		}

		uploads := api.Group("/uploads")
		uploads.Use(requireAuth)
		{
			uploads.POST("/single", uploadHandler.UploadSingle)
			uploads.POST("/multiple", uploadHandler.UploadMultiple)
		}
	}

	// WebSocket route
	if deps.Hub != nil {
		onReadReceipt := func(userID, notificationID uint) {
			if err := notificationService.MarkAsRead(context.Background(), notificationID, userID); err != nil {
				logger.Debug("read receipt ignored", zap.Uint("user_id", userID), zap.Uint("notification_id", notificationID), zap.Error(err))
			}
		}
		r.GET("/ws", gin.WrapF(websocket.ServeWS(deps.Hub, cfg.JWTSecret, cfg.ClientURL, onReadReceipt)))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	r.GET("/", func(c *gin.Context) {
		util.SuccessResponse(c, 200, "Community API is running", gin.H{"version": "v1"})
	})

	r.NoRoute(func(c *gin.Context) {
		util.NotFound(c, "Route not found")
	})

	return r, authService
}

// initStorage picks Cloudinary when credentials are configured, local disk
// otherwise.
func initStorage(cfg *config.Config) (service.FileStorage, error) {
	if cfg.CloudinaryConfigured() {
		client, err := util.NewCloudinaryClient(cfg)
		if err == nil {
			logger.Info("cloudinary initialized")
			return service.NewCloudinaryStorage(client), nil
		}
		logger.Warn("failed to initialize cloudinary, falling back to local uploads", zap.Error(err))
	}

	storage, err := service.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("local uploads enabled", zap.String("dir", cfg.UploadDir))
	return storage, nil
}

const (
	connectRetries  = 5
	connectDelay    = 2 * time.Second
	connectMaxDelay = 30 * time.Second
)

// backoff returns the delay before the given retry attempt.
func backoff(attempt int) time.Duration {
	delay := connectDelay * time.Duration(1<<uint(attempt-1))
	if delay > connectMaxDelay {
		delay = connectMaxDelay
	}
	return delay
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	for attempt := 1; attempt <= connectRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			logger.Info("rabbitmq connected", zap.Int("attempt", attempt))
			return rabbitMQ
		}

		if attempt < connectRetries {
			delay := backoff(attempt)
			logger.Warn("failed to connect to rabbitmq, retrying",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
			time.Sleep(delay)
		} else {
			logger.Warn("rabbitmq unavailable, notifications will be pushed directly", zap.Error(err))
		}
	}
	return nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	for attempt := 1; attempt <= connectRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			logger.Info("redis connected", zap.Int("attempt", attempt))
			return redisClient
		}

		if attempt < connectRetries {
			delay := backoff(attempt)
			logger.Warn("failed to connect to redis, retrying",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
			time.Sleep(delay)
		} else {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		}
	}
	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	allowedOrigins := []string{
		clientURL,
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
