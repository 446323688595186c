package recipe

import (
	"context"
	"errors"

	aiservice "fridge-inventory/internal/core/ai/service"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/pkg/common"

	"go.uber.org/zap"
)

// Generator 模型呼叫介面
type Generator interface {
	ProcessRequestWith(ctx context.Context, prompt string, requestID string, accept aiservice.Accept) (*aiservice.Response, error)
}

// Service 食譜推薦服務
type Service struct {
	store inventory.Store
	ai    Generator
}

// NewService 創建食譜推薦服務；ai 為 nil 時推薦功能回傳 ServiceUnavailable
func NewService(store inventory.Store, ai Generator) *Service {
	return &Service{store: store, ai: ai}
}

// ConfirmedItemNames 取出 detected_by=both 的 active 食材名稱（去重，保持順序）
func ConfirmedItemNames(records []inventory.Record) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r.DetectedBy != inventory.DetectedByBoth || !r.IsActive() {
			continue
		}
		if _, dup := seen[r.StandardName]; dup {
			continue
		}
		seen[r.StandardName] = struct{}{}
		names = append(names, r.StandardName)
	}
	return names
}

// Recommend 以影像與收據皆確認的食材請求食譜
func (s *Service) Recommend(ctx context.Context, requestID string) (*Recommendation, error) {
	records, err := s.store.List(ctx, string(inventory.StatusActive))
	if err != nil {
		return nil, err
	}

	names := ConfirmedItemNames(records)
	if len(names) == 0 {
		return &Recommendation{
			Ingredients: []string{},
			Recipes:     []Recipe{},
			Hint:        "影像與收據皆確認的食材不存在，請先掃描冰箱再處理收據",
		}, nil
	}
	if s.ai == nil {
		return nil, common.ErrServiceUnavailable.WithMessage("未設定 OpenRouter，無法推薦食譜")
	}

	// 解析失敗的回應不快取，下次請求會重新呼叫模型
	var recipes []Recipe
	resp, err := s.ai.ProcessRequestWith(ctx, BuildRecipeRequest(names), requestID, func(content string) error {
		var perr error
		recipes, perr = ParseRecipeResponse(content)
		return perr
	})
	if err != nil {
		if errors.Is(err, common.ErrUnparsableModelOutput) {
			common.LogWarn("無法解析食譜回應",
				zap.String("request_id", requestID),
				zap.Int("raw_length", len(common.AsCustomError(err).Raw)),
			)
		}
		return nil, err
	}

	return &Recommendation{
		Ingredients: names,
		Recipes:     recipes,
		CacheHit:    resp.CacheHit,
	}, nil
}
