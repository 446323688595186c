package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"fridge-inventory/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// RegisterValidation 讓驗證錯誤使用 json 欄位名稱
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// RequestID 取得請求 ID，沒有時產生一個
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// BindJSON 解析並驗證 JSON 請求體
func BindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return common.ErrInvalidRequest.WithMessage(FormatValidationErrors(verrs))
		}
		return common.ErrInvalidRequest.Wrap(err)
	}
	return nil
}

// FormatValidationErrors 轉為 "field: tag" 格式
func FormatValidationErrors(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "欄位驗證失敗 (" + strings.Join(parts, ", ") + ")"
}

// RespondError 依錯誤代碼輸出 JSON 錯誤
func RespondError(c *gin.Context, err error) {
	var ce *common.CustomError
	if !errors.As(err, &ce) && errors.Is(err, context.DeadlineExceeded) {
		ce = common.ErrRequestTimeout.Wrap(err)
	} else {
		ce = common.AsCustomError(err)
	}

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if ce.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, common.NewErrorResponse(ce, gin.Mode() == gin.DebugMode))
}
