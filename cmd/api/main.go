package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge-inventory/internal/api"
	"fridge-inventory/internal/core/ai/cache"
	"fridge-inventory/internal/core/ai/openrouter"
	aiservice "fridge-inventory/internal/core/ai/service"
	"fridge-inventory/internal/core/catalog"
	"fridge-inventory/internal/core/detect"
	"fridge-inventory/internal/core/fridge"
	"fridge-inventory/internal/core/image"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/core/queue"
	"fridge-inventory/internal/core/recipe"
	"fridge-inventory/internal/core/reconcile"
	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/infrastructure/database"
	"fridge-inventory/internal/infrastructure/lock"
	"fridge-inventory/internal/infrastructure/metrics"
	"fridge-inventory/internal/pkg/common"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 載入設定（內含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("vision_provider", cfg.Vision.Provider),
		zap.String("ocr_provider", cfg.OCR.Provider),
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
	)

	ctx := context.Background()

	// 資料庫
	store, db, err := openStore(ctx, cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open inventory store", zap.Error(err))
	}
	if db != nil {
		defer database.Close(db)
	}

	// Redis（快取或鎖使用時才連線）
	var rdb *redis.Client
	if (cfg.Cache.Enabled && cfg.Cache.Driver == "redis") || cfg.Lock.Driver == "redis" {
		rdb, err = database.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			common.LogFatal("Failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Lock.Driver == "redis" {
		locker = lock.NewRedis(rdb, cfg.Lock.Key, cfg.Lock.TTL)
	}

	m := metrics.New()

	detector, recognizer, closeDetectors, err := openDetectors(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize detectors", zap.Error(err))
	}
	defer closeDetectors()

	cat := catalog.Default().WithTargets(cfg.Vision.TargetClasses)
	images := image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.MaxDimension, cfg.Image.BaseDir)
	engine := reconcile.NewEngine(store, cat, reconcile.WithLocker(locker), reconcile.WithMetrics(m))

	q := queue.NewManager(cfg.Queue.MaxSize)
	q.Start()
	defer q.Close()

	fridgeSvc := fridge.NewService(fridge.Deps{
		Store:      store,
		Catalog:    cat,
		Engine:     engine,
		Detector:   detector,
		Recognizer: recognizer,
		Images:     images,
		Queue:      q,
		Locker:     locker,
		Metrics:    m,
	}, fridge.Options{
		ConfidenceThreshold: cfg.Vision.ConfidenceThreshold,
		OCRMinConfidence:    cfg.OCR.MinConfidence,
		PreprocessReceipt:   cfg.OCR.Preprocess,
	})

	gen, closeAI := openGenerator(cfg, rdb)
	defer closeAI()
	recipeSvc := recipe.NewService(store, gen)

	router := api.SetupRouter(cfg, api.Dependencies{
		Fridge:  fridgeSvc,
		Recipes: recipeSvc,
		Images:  images,
		Queue:   q,
		Metrics: m,
		Ready: func(ctx context.Context) error {
			if db != nil {
				if err := database.Ping(ctx, db); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// openStore 依設定建立庫存儲存層；memory 模式不使用資料庫
func openStore(ctx context.Context, cfg config.DatabaseConfig) (inventory.Store, *gorm.DB, error) {
	if cfg.Driver == "memory" {
		common.LogWarn("使用記憶體庫存，重啟後資料會遺失")
		return inventory.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := inventory.NewGormStore(db)
	if err := store.Migrate(ctx); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return store, db, nil
}

// openDetectors 建立影像偵測與文字辨識；兩者皆為 gcp 時共用同一個用戶端
func openDetectors(ctx context.Context, cfg *config.Config) (detect.Detector, detect.TextRecognizer, func(), error) {
	var (
		gcp     *detect.GCPVision
		closers []func()
	)
	gcpClient := func() (*detect.GCPVision, error) {
		if gcp != nil {
			return gcp, nil
		}
		g, err := detect.NewGCPVision(ctx)
		if err != nil {
			return nil, err
		}
		gcp = g
		closers = append(closers, func() { g.Close() })
		return g, nil
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var detector detect.Detector
	switch cfg.Vision.Provider {
	case "gcp":
		g, err := gcpClient()
		if err != nil {
			return nil, nil, closeAll, err
		}
		detector = g
	case "http":
		detector = detect.NewHTTPDetector(cfg.Vision.Endpoint, cfg.Vision.Timeout)
	default:
		detector = detect.Unavailable{Reason: "vision provider disabled"}
	}

	var recognizer detect.TextRecognizer
	switch cfg.OCR.Provider {
	case "gcp":
		g, err := gcpClient()
		if err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		recognizer = g
	default:
		recognizer = detect.Unavailable{Reason: "ocr provider disabled"}
	}

	common.LogInfo("偵測服務初始化完成",
		zap.String("vision", cfg.Vision.Provider),
		zap.String("ocr", cfg.OCR.Provider),
	)
	return detector, recognizer, closeAll, nil
}

// openGenerator 建立食譜模型呼叫；未啟用時回傳 nil
func openGenerator(cfg *config.Config, rdb *redis.Client) (recipe.Generator, func()) {
	if !cfg.OpenRouter.Enabled || cfg.OpenRouter.APIKey == "" {
		common.LogWarn("OpenRouter 未啟用，食譜推薦不可用")
		return nil, func() {}
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		switch cfg.Cache.Driver {
		case "redis":
			c = cache.NewRedisCache(rdb, cfg.Cache.TTL)
		default:
			c = cache.NewManager(cfg.Cache)
		}
	}
	closeFn := func() {
		if c != nil {
			c.Close()
		}
	}

	client := openrouter.NewClient(cfg.OpenRouter)
	return aiservice.NewService(client, c, cfg.RateLimit.AIWindow, cfg.OpenRouter.MaxTokens), closeFn
}
