package common

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout 庫存日期欄位格式
const DateLayout = "2006-01-02"

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// FormatDate 轉為庫存日期字串
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsValidDate 檢查日期字串格式
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// StringPtr 回傳字串指標
func StringPtr(s string) *string {
	return &s
}

// DerefString 取出字串指標的值，nil 時回傳預設值
func DerefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
