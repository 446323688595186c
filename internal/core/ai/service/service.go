package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fridge-inventory/internal/core/ai/cache"
	"fridge-inventory/internal/core/ai/provider"
	"fridge-inventory/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應
type Response struct {
	Content  string `json:"content"`
	CacheHit bool   `json:"cache_hit"`
}

// Service AI 服務：頻率限制、快取、呼叫提供者；不重試
type Service struct {
	provider    provider.Provider
	cache       cache.Cache
	minGap      time.Duration
	maxTokens   int
	now         func() time.Time
	mu          sync.Mutex
	lastRequest time.Time
}

// NewService 創建 AI 服務；cache 可為 nil，minGap 為兩次呼叫的最小間隔
func NewService(p provider.Provider, c cache.Cache, minGap time.Duration, maxTokens int) *Service {
	return &Service{
		provider:  p,
		cache:     c,
		minGap:    minGap,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// Accept 檢查模型回應內容；回傳錯誤時該回應不寫入快取
type Accept func(content string) error

// ProcessRequest 送出 JSON 模式的單輪請求
func (s *Service) ProcessRequest(ctx context.Context, prompt string, requestID string) (*Response, error) {
	return s.ProcessRequestWith(ctx, prompt, requestID, nil)
}

// ProcessRequestWith 同 ProcessRequest，只有通過 accept 的回應才會被快取
func (s *Service) ProcessRequestWith(ctx context.Context, prompt string, requestID string, accept Accept) (*Response, error) {
	prompt = strings.TrimSpace(prompt)
	key := cache.Key(s.provider.GetModel(), prompt)

	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil && val != "":
			if accept == nil || accept(val) == nil {
				return &Response{Content: val, CacheHit: true}, nil
			}
			common.LogWarn("快取內容無法使用，重新呼叫模型", zap.String("request_id", requestID))
		case err != nil && !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
	}

	if err := s.checkRequestRate(); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &provider.Request{
		Messages:  []provider.Message{{Role: "user", Content: prompt}},
		MaxTokens: s.maxTokens,
		JSONMode:  true,
	})
	common.LogAICall(time.Since(start), err, requestID)
	if err != nil {
		return nil, err
	}

	if accept != nil {
		if err := accept(resp.Content); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}
	return &Response{Content: resp.Content}, nil
}

// checkRequestRate 檢查請求頻率
func (s *Service) checkRequestRate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.minGap > 0 && !s.lastRequest.IsZero() && now.Sub(s.lastRequest) < s.minGap {
		return common.ErrAIRateLimited
	}
	s.lastRequest = now
	return nil
}
