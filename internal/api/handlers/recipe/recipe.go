package recipe

import (
	"net/http"

	"fridge-inventory/internal/api/handlers"
	recipeService "fridge-inventory/internal/core/recipe"
	"fridge-inventory/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜處理程序
type Handler struct {
	recipes *recipeService.Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipes *recipeService.Service) *Handler {
	return &Handler{recipes: recipes}
}

// HandleRecommend 以確認過的庫存食材推薦食譜
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := handlers.RequestID(c)
	common.LogInfo("開始處理食譜推薦請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	rec, err := h.recipes.Recommend(c.Request.Context(), requestID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食譜推薦完成",
		zap.String("request_id", requestID),
		zap.Int("ingredients", len(rec.Ingredients)),
		zap.Int("recipes", len(rec.Recipes)),
		zap.Bool("cache_hit", rec.CacheHit),
	)
	c.JSON(http.StatusOK, rec)
}
