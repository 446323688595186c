package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Vision      VisionConfig     `mapstructure:"vision"`
	OCR         OCRConfig        `mapstructure:"ocr"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Lock        LockConfig       `mapstructure:"lock"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	Metrics     MetricsConfig    `mapstructure:"metrics"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres | memory
	Path   string `mapstructure:"path"`   // sqlite 檔案路徑
	DSN    string `mapstructure:"dsn"`    // postgres 連線字串
}

// VisionConfig 冰箱影像偵測設定
type VisionConfig struct {
	Provider            string        `mapstructure:"provider"` // gcp | http | none
	Endpoint            string        `mapstructure:"endpoint"` // http 偵測服務位址
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	TargetClasses       []string      `mapstructure:"target_classes"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// OCRConfig 收據文字辨識設定
type OCRConfig struct {
	Provider      string  `mapstructure:"provider"` // gcp | none
	MinConfidence float64 `mapstructure:"min_confidence"`
	Preprocess    bool    `mapstructure:"preprocess"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LockConfig 對帳鎖設定
type LockConfig struct {
	Driver string        `mapstructure:"driver"` // local | redis
	Key    string        `mapstructure:"key"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// QueueConfig 對帳佇列設定
type QueueConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	AIWindow time.Duration `mapstructure:"ai_window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
	MaxDimension int    `mapstructure:"max_dimension"`
	BaseDir      string `mapstructure:"base_dir"` // JSON path 輸入僅限此目錄，空值停用
}

// MetricsConfig 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時略過）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("database.driver", "DB_DRIVER")
	viper.BindEnv("database.path", "DB_PATH")
	viper.BindEnv("database.dsn", "DATABASE_URL")
	viper.BindEnv("vision.provider", "VISION_PROVIDER")
	viper.BindEnv("vision.endpoint", "VISION_ENDPOINT")
	viper.BindEnv("vision.confidence_threshold", "VISION_CONFIDENCE_THRESHOLD")
	viper.BindEnv("ocr.provider", "OCR_PROVIDER")
	viper.BindEnv("ocr.min_confidence", "OCR_CONFIDENCE_THRESHOLD")
	viper.BindEnv("redis.addr", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("lock.driver", "LOCK_DRIVER")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.driver", "CACHE_DRIVER")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("metrics.enabled", "METRICS_ENABLED")
	viper.BindEnv("image.base_dir", "IMAGE_BASE_DIR")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"database_driver:", viper.GetString("database.driver"),
		"vision_provider:", viper.GetString("vision.provider"),
		"openrouter_api_key:", MaskAPIKey(viper.GetString("openrouter.api_key")),
	)

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "fridge-inventory")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "120s")

	// 資料庫設定
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "data/fridge_inventory.db")

	// 影像偵測設定
	viper.SetDefault("vision.provider", "gcp")
	viper.SetDefault("vision.confidence_threshold", 0.5)
	viper.SetDefault("vision.timeout", "60s")

	// 收據辨識設定
	viper.SetDefault("ocr.provider", "gcp")
	viper.SetDefault("ocr.min_confidence", 0.7)
	viper.SetDefault("ocr.preprocess", true)

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", true)
	viper.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	viper.SetDefault("openrouter.max_tokens", 2000)
	viper.SetDefault("openrouter.timeout", "60s")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.driver", "memory")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 對帳鎖設定
	viper.SetDefault("lock.driver", "local")
	viper.SetDefault("lock.key", "lock:fridge-inventory:reconcile")
	viper.SetDefault("lock.ttl", "30s")

	// 佇列設定
	viper.SetDefault("queue.max_size", 100)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.ai_window", "2s")

	// 圖片設定
	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	viper.SetDefault("image.max_dimension", 2048)
	viper.SetDefault("image.base_dir", "")

	// 指標設定
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// 驗證資料庫設定
	switch config.Database.Driver {
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case "postgres":
		if config.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver: %q", config.Database.Driver)
	}

	// 驗證偵測設定
	switch config.Vision.Provider {
	case "gcp", "none":
	case "http":
		if config.Vision.Endpoint == "" {
			return fmt.Errorf("vision endpoint is required for http provider")
		}
	default:
		return fmt.Errorf("unsupported vision provider: %q", config.Vision.Provider)
	}
	if config.Vision.ConfidenceThreshold < 0 || config.Vision.ConfidenceThreshold > 1 {
		return fmt.Errorf("vision confidence threshold must be within [0,1]")
	}
	switch config.OCR.Provider {
	case "gcp", "none":
	default:
		return fmt.Errorf("unsupported ocr provider: %q", config.OCR.Provider)
	}
	if config.OCR.MinConfidence < 0 || config.OCR.MinConfidence > 1 {
		return fmt.Errorf("ocr min confidence must be within [0,1]")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Driver != "memory" && config.Cache.Driver != "redis" {
			return fmt.Errorf("unsupported cache driver: %q", config.Cache.Driver)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證對帳鎖設定
	if config.Lock.Driver != "local" && config.Lock.Driver != "redis" {
		return fmt.Errorf("unsupported lock driver: %q", config.Lock.Driver)
	}
	if config.Lock.Driver == "redis" && config.Lock.TTL <= 0 {
		return fmt.Errorf("invalid lock ttl")
	}

	// 驗證隊列設定
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
