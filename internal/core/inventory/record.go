package inventory

import (
	"github.com/shopspring/decimal"
)

// DetectedBy 紀錄來源
type DetectedBy string

const (
	DetectedByVision DetectedBy = "vision"
	DetectedByText   DetectedBy = "text"
	DetectedByManual DetectedBy = "manual"
	DetectedByBoth   DetectedBy = "both"
)

// Valid 檢查來源值
func (d DetectedBy) Valid() bool {
	switch d {
	case DetectedByVision, DetectedByText, DetectedByManual, DetectedByBoth:
		return true
	}
	return false
}

// Status 紀錄生命週期狀態
type Status string

const (
	StatusActive    Status = "active"
	StatusConsumed  Status = "consumed"
	StatusDiscarded Status = "discarded"
)

// StatusAll 列表查詢時不篩選狀態
const StatusAll = "all"

// Valid 檢查狀態值
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusConsumed, StatusDiscarded:
		return true
	}
	return false
}

// Terminal 是否為可手動標記的終止狀態
func (s Status) Terminal() bool {
	return s == StatusConsumed || s == StatusDiscarded
}

// Record 冰箱庫存紀錄，一筆代表一批實體食材
type Record struct {
	ID             string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	StandardName   string          `gorm:"column:standard_name;type:text;not null;index" json:"standard_name"`
	DetectionClass string          `gorm:"column:detection_class;type:text;not null" json:"detection_class"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null" json:"quantity"`
	Unit           *string         `gorm:"column:unit;type:text" json:"unit,omitempty"`
	PurchaseDate   *string         `gorm:"column:purchase_date;type:text" json:"purchase_date,omitempty"`
	ExpiryDate     *string         `gorm:"column:expiry_date;type:text" json:"expiry_date,omitempty"`
	DetectedBy     DetectedBy      `gorm:"column:detected_by;type:text;not null" json:"detected_by"`
	LastSeenDate   string          `gorm:"column:last_seen_date;type:text;not null" json:"last_seen_date"`
	Status         Status          `gorm:"column:status;type:text;not null;default:active;index" json:"status"`
	Notes          *string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

// TableName 對應既有資料表名稱
func (Record) TableName() string {
	return "food_items"
}

// IsGeneric 名稱仍等於視覺類別，尚未被收據細化
func (r *Record) IsGeneric() bool {
	return r.StandardName == r.DetectionClass
}

// IsActive 是否仍在冰箱中
func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}
