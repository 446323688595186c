package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "sqlite", Path: "data/test.db"},
		Vision:   VisionConfig{Provider: "gcp", ConfidenceThreshold: 0.5},
		OCR:      OCRConfig{Provider: "gcp", MinConfidence: 0.7},
		Cache: CacheConfig{
			Enabled:         true,
			Driver:          "memory",
			MaxSize:         10,
			TTL:             time.Hour,
			CleanupInterval: time.Minute,
		},
		Lock:  LockConfig{Driver: "local"},
		Queue: QueueConfig{MaxSize: 10},
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("validateConfig: %v", err)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "database driver"},
		{"postgres dsn", func(c *Config) { c.Database.Driver = "postgres" }, "dsn"},
		{"vision threshold", func(c *Config) { c.Vision.ConfidenceThreshold = 1.5 }, "vision confidence"},
		{"http endpoint", func(c *Config) { c.Vision.Provider = "http" }, "vision endpoint"},
		{"ocr confidence", func(c *Config) { c.OCR.MinConfidence = -0.1 }, "ocr min confidence"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache driver"},
		{"lock driver", func(c *Config) { c.Lock.Driver = "zookeeper" }, "lock driver"},
		{"queue", func(c *Config) { c.Queue.MaxSize = 0 }, "queue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("validateConfig error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestValidateConfigSkipsDisabledCache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache = CacheConfig{Enabled: false}
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("disabled cache should not be validated: %v", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("short"); got != "****" {
		t.Fatalf("MaskAPIKey(short) = %q", got)
	}
	if got := MaskAPIKey("sk-or-1234567890"); got != "sk-o...7890" {
		t.Fatalf("MaskAPIKey = %q", got)
	}
}
