package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// 欄位名稱（與資料表欄位一致）
const (
	FieldStandardName   = "standard_name"
	FieldDetectionClass = "detection_class"
	FieldUnit           = "unit"
	FieldPurchaseDate   = "purchase_date"
	FieldExpiryDate     = "expiry_date"
	FieldNotes          = "notes"
	FieldLastSeenDate   = "last_seen_date"
)

// updatableFields UpdateFields 可寫入的欄位
var updatableFields = map[string]struct{}{
	FieldStandardName:   {},
	FieldDetectionClass: {},
	FieldUnit:           {},
	FieldPurchaseDate:   {},
	FieldExpiryDate:     {},
	FieldNotes:          {},
	FieldLastSeenDate:   {},
}

// IsUpdatableField 檢查欄位是否可由 UpdateFields 更新
func IsUpdatableField(name string) bool {
	_, ok := updatableFields[name]
	return ok
}

// Store 庫存持久化介面，不含業務邏輯
type Store interface {
	Create(ctx context.Context, rec *Record) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, detectedBy *DetectedBy) error
	List(ctx context.Context, status string) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	MarkStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error

	// Transaction 在同一交易中執行 fn；fn 回傳錯誤時回滾
	Transaction(ctx context.Context, fn func(Store) error) error
}
