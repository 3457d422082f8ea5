package main

import (
	"log"
	"strconv"
	"time"

	"ecolens/config"
	"ecolens/controllers"
	"ecolens/db"
	"ecolens/middlewares"
	"ecolens/routes"
	"ecolens/services"
	"ecolens/storage"
	"ecolens/utils"
	"ecolens/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTConfig(cfg.JWT.Secret, cfg.JWT.ExpiryMinutes)
	services.InitVisionService(cfg)

	store := buildStore(cfg)
	limiter := buildLimiter(cfg)
	controllers.Init(store, cfg, limiter)

	// Set up the Gin router and configure routes
	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildStore connects the MongoDB store when a URI is configured, otherwise
// falls back to the in-memory store seeded with demo users.
func buildStore(cfg *config.Config) storage.Store {
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Println("Connected to MongoDB")
		return storage.NewMongoStore(db.MongoDatabase)
	}

	log.Println("No database URI configured, using in-memory store")
	memStore := storage.NewMemoryStore()
	utils.SeedDemoUsers(memStore)
	return memStore
}

// buildLimiter uses Redis-backed scan limits when configured, otherwise
// in-process counters.
func buildLimiter(cfg *config.Config) services.ScanLimiter {
	limiterConfig := services.LimiterConfig{
		DailyLimit:  cfg.Rewards.DailyDetectionLimit,
		MinInterval: time.Duration(cfg.Rewards.MinScanIntervalSeconds) * time.Second,
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Printf("Using Redis scan limiter at %s", cfg.Redis.Addr)
		return services.NewRedisScanLimiter(rdb, limiterConfig)
	}

	return services.NewMemoryScanLimiter(limiterConfig)
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Configure CORS for the frontend dev server
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/api/auth/signup", routes.SignUpRouteHandler)
	router.POST("/api/auth/login", routes.LoginRouteHandler)
	router.POST("/api/auth/verify", routes.VerifyTokenRouteHandler)

	// Live reward feed (authenticates via token query parameter or header)
	router.GET("/ws/rewards", websocket.RewardFeedHandler)

	// Protected routes (JWT auth)
	api := router.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/detect", routes.DetectRouteHandler)
		api.POST("/detections", routes.CreateDetectionRouteHandler)
		api.GET("/detections", routes.GetDetectionsRouteHandler)
		api.POST("/detections/:id/verify", routes.VerifyDetectionRouteHandler)

		api.GET("/user", routes.GetUserRouteHandler)
		api.GET("/wallet", routes.GetWalletRouteHandler)
		api.GET("/transactions", routes.GetTransactionsRouteHandler)
		api.POST("/transactions/qr", routes.CreateQRRedemptionRouteHandler)

		api.GET("/stats", routes.GetStatsRouteHandler)
		api.GET("/achievements", routes.GetAchievementsRouteHandler)
		api.GET("/habits", routes.GetHabitAnalyticsRouteHandler)

		api.POST("/goals", routes.CreateGoalRouteHandler)
		api.GET("/goals", routes.GetGoalsRouteHandler)
		api.PUT("/goals/:id", routes.UpdateGoalRouteHandler)
		api.GET("/impact", routes.GetImpactRouteHandler)
		api.PUT("/impact", routes.UpdateImpactRouteHandler)

		api.POST("/reminders", routes.CreateReminderRouteHandler)
		api.GET("/reminders", routes.GetRemindersRouteHandler)
		api.PUT("/reminders/:id", routes.UpdateReminderRouteHandler)
		api.DELETE("/reminders/:id", routes.DeleteReminderRouteHandler)

		admin := api.Group("/admin")
		admin.Use(middlewares.AdminMiddleware(cfg.Admin.Usernames))
		{
			admin.GET("/users", routes.ListUsersRouteHandler)
			admin.GET("/detections", routes.ListDetectionsRouteHandler)
			admin.GET("/transactions", routes.ListTransactionsRouteHandler)
		}
	}

	return router
}
