package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/colexalia/colexalia-backend/internal/database"
	"github.com/colexalia/colexalia-backend/internal/handler"
	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/colexalia/colexalia-backend/internal/migration"
	"github.com/colexalia/colexalia-backend/internal/pricing"
	"github.com/colexalia/colexalia-backend/internal/repository"
	"github.com/colexalia/colexalia-backend/internal/routes"
	"github.com/colexalia/colexalia-backend/internal/workspace"
	pkgcache "github.com/colexalia/colexalia-backend/pkg/cache"
	"github.com/colexalia/colexalia-backend/pkg/jwt"
	pkglogger "github.com/colexalia/colexalia-backend/pkg/logger"
	pkgredis "github.com/colexalia/colexalia-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Colexalia API
// @version         1.0
// @description     Retro game price lookup, wishlist and collection tracking
// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		pkglogger.Fatal("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// DB 연결
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		pkglogger.Fatal("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)
	if err := migration.Run(db); err != nil {
		pkglogger.Fatal("Migration failed: %v", err)
	}
	go reportDBStats(context.Background(), db, 15*time.Second)

	// Redis 연결 (선택)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(context.Background(), pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}

	// Cache Service (Redis 없으면 no-op)
	cacheService := pkgcache.NewService(redisClient)

	// Price lookup
	var priceClient pricing.Client = pricing.New(cfg.Pricing)
	if redisClient != nil && cfg.Pricing.CacheTTL > 0 {
		priceClient = pricing.NewCachedClient(priceClient, cacheService, cfg.Pricing.CacheTTL)
	}

	// Identity
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	var federated *jwt.FederatedManager
	if cfg.OAuth.Google.Secret != "" {
		federated = jwt.NewFederatedManager(cfg.OAuth.Google.Secret, cfg.OAuth.Google.Issuer)
	}
	identityService := identity.NewService(repository.NewUserRepository(db), jwtManager, federated, cacheService)

	// Repositories + workspaces
	wishlistRepo := repository.NewWishlistRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	factory := workspace.NewFactory(identityService, wishlistRepo, collectionRepo)

	if err := handler.RegisterValidators(); err != nil {
		pkglogger.Fatal("Failed to register validators: %v", err)
	}

	handlers := routes.Handlers{
		Product:    handler.NewProductHandler(priceClient, cfg.Pricing.AffiliateID),
		Auth:       handler.NewAuthHandler(!cfg.IsDevelopment()),
		Account:    handler.NewAccountHandler(),
		Wishlist:   handler.NewWishlistHandler(priceClient),
		Collection: handler.NewCollectionHandler(priceClient),
		Dashboard:  handler.NewDashboardHandler(),
		Premium:    handler.NewPremiumHandler(),
	}

	router := gin.Default()

	// CORS
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Rate limit (Redis 필요, 개발 환경 제외)
	var userLimit gin.HandlerFunc
	if redisClient != nil && cfg.RateLimit.Enabled && !cfg.IsDevelopment() {
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		router.Use(middleware.RateLimit(redisClient, rateCfg))
		userLimit = routes.UserRateLimit(redisClient, rateCfg)
		pkglogger.Info("Rate limiting enabled: %d req/min", rateCfg.RequestsPerMinute)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		status, dbStatus := "ok", "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, dbStatus = "degraded", "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   status,
			"service":  "colexalia-backend",
			"database": dbStatus,
			"redis":    redisClient != nil,
			"pricing":  pricingMode(cfg.Pricing),
			"time":     time.Now().UTC(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, factory, handlers, userLimit)

	router.NoRoute(func(c *gin.Context) {
		common.V2ErrorResponse(c, http.StatusNotFound, "Not found", nil)
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		pkglogger.Fatal("Failed to start server: %v", err)
	}
}

func pricingMode(cfg config.PricingConfig) string {
	if cfg.APIToken == "" {
		return "simulated"
	}
	return "live"
}

// reportDBStats publishes the in-use connection count until ctx is done
func reportDBStats(ctx context.Context, db *gorm.DB, every time.Duration) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		middleware.SetDBConnectionsInUse(sqlDB.Stats().InUse)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s, delimiter string) []string {
	var out []string
	for _, part := range strings.Split(s, delimiter) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
