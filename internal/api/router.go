package api

import (
	"context"
	"time"

	"fridge-inventory/internal/api/handlers"
	"fridge-inventory/internal/api/handlers/health"
	inventoryHandler "fridge-inventory/internal/api/handlers/inventory"
	recipeHandler "fridge-inventory/internal/api/handlers/recipe"
	scanHandler "fridge-inventory/internal/api/handlers/scan"
	"fridge-inventory/internal/api/middleware"
	"fridge-inventory/internal/core/fridge"
	"fridge-inventory/internal/core/image"
	"fridge-inventory/internal/core/queue"
	recipeService "fridge-inventory/internal/core/recipe"
	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/infrastructure/metrics"
	"fridge-inventory/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小限制的額外空間（multipart 標頭等）
const bodyOverhead = 1 << 20

// Dependencies 路由所需的服務
type Dependencies struct {
	Fridge  *fridge.Service
	Recipes *recipeService.Service
	Images  *image.Service
	Queue   *queue.Manager
	Metrics *metrics.Metrics
	// Ready 就緒檢查（通常為資料庫 ping）
	Ready func(ctx context.Context) error
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidation()

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger(deps.Metrics))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxBodySize := cfg.Image.MaxSizeBytes + bodyOverhead
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	healthHandler := health.NewHandler(cfg.App.Version, deps.Ready, deps.Queue)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Handler())
	}
	{
		scan := scanHandler.NewHandler(deps.Fridge, deps.Images)
		scanGroup := api.Group("/scan")
		{
			scanGroup.POST("/fridge", scan.HandleFridge)
			scanGroup.POST("/receipt", scan.HandleReceipt)
			scanGroup.POST("/receipt/text", scan.HandleReceiptText)
		}

		inv := inventoryHandler.NewHandler(deps.Fridge)
		invGroup := api.Group("/inventory")
		{
			invGroup.GET("", inv.HandleList)
			invGroup.GET("/export", inv.HandleExport)
			invGroup.POST("", inv.HandleCreate)
			invGroup.GET("/:id", inv.HandleGet)
			invGroup.PATCH("/:id", inv.HandleUpdate)
			invGroup.POST("/:id/status", inv.HandleStatus)
			invGroup.DELETE("/:id", inv.HandleDelete)
		}

		recipes := recipeHandler.NewHandler(deps.Recipes)
		api.POST("/recipes/recommend", recipes.HandleRecommend)
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
