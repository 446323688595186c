package inventory

import (
	"context"
	"errors"
	"fmt"

	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore 以 gorm 實作的庫存儲存
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 創建 gorm 庫存儲存
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate 建立或更新資料表
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate inventory table: %w", err)
	}
	return nil
}

// Create 新增紀錄；未指定 id 時自動產生
func (s *GormStore) Create(ctx context.Context, rec *Record) error {
	if rec == nil {
		return common.ErrInvalidRequest.WithMessage("紀錄不可為空")
	}
	if rec.ID == "" {
		rec.ID = common.GenerateUUID()
	}
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	if !rec.DetectedBy.Valid() {
		return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的來源: %q", rec.DetectedBy))
	}
	if !rec.Status.Valid() {
		return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的狀態: %q", rec.Status))
	}
	if rec.Quantity.IsNegative() {
		return common.ErrInvalidRequest.WithMessage("數量不可為負數")
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create inventory record: %w", err)
	}
	common.LogDebug("新增庫存紀錄",
		zap.String("id", rec.ID),
		zap.String("standard_name", rec.StandardName),
		zap.String("detected_by", string(rec.DetectedBy)),
	)
	return nil
}

// UpdateFields 更新白名單內的欄位
func (s *GormStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	for name := range fields {
		if !IsUpdatableField(name) {
			return common.ErrUnknownField.WithMessage(fmt.Sprintf("不可更新的欄位: %s", name))
		}
	}

	res := s.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update inventory record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

// UpdateQuantity 設定數量，detectedBy 不為 nil 時一併更新來源
func (s *GormStore) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, detectedBy *DetectedBy) error {
	if quantity.IsNegative() {
		return common.ErrInvalidRequest.WithMessage("數量不可為負數")
	}
	updates := map[string]any{"quantity": quantity}
	if detectedBy != nil {
		if !detectedBy.Valid() {
			return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的來源: %q", *detectedBy))
		}
		updates["detected_by"] = *detectedBy
	}

	res := s.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update quantity of %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

// List 依狀態列出紀錄，依標準名稱排序；status 為 "all" 時不篩選
func (s *GormStore) List(ctx context.Context, status string) ([]Record, error) {
	q := s.db.WithContext(ctx).Model(&Record{})
	switch {
	case status == StatusAll:
	case Status(status).Valid():
		q = q.Where("status = ?", status)
	default:
		return nil, common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的狀態篩選: %q", status))
	}

	var records []Record
	if err := q.Order("standard_name ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return records, nil
}

// Get 依 id 取得紀錄
func (s *GormStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record %s: %w", id, err)
	}
	return &rec, nil
}

// MarkStatus 將 active 紀錄標記為 consumed 或 discarded
func (s *GormStore) MarkStatus(ctx context.Context, id string, status Status) error {
	if !status.Terminal() {
		return common.ErrInvalidStatusTransition.WithMessage(fmt.Sprintf("狀態必須為 consumed 或 discarded: %q", status))
	}

	res := s.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to mark %s as %s: %w", id, status, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// 區分不存在與非 active
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return common.ErrInvalidStatusTransition.WithMessage(fmt.Sprintf("紀錄狀態為 %s，無法變更為 %s", rec.Status, status))
}

// Delete 刪除紀錄
func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete inventory record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

// Transaction 在資料庫交易中執行 fn
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
