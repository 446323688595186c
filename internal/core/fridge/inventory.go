package fridge

import (
	"context"
	"fmt"

	"fridge-inventory/internal/core/catalog"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ManualInput 手動新增的內容
type ManualInput struct {
	StandardName   string
	DetectionClass string
	Quantity       decimal.Decimal
	Unit           *string
	PurchaseDate   *string
	ExpiryDate     *string
	Notes          *string
}

// DetailsInput 手動修改的欄位，nil 表示不變更
type DetailsInput struct {
	StandardName   *string
	DetectionClass *string
	Unit           *string
	PurchaseDate   *string
	ExpiryDate     *string
	Notes          *string
	LastSeenDate   *string
}

// List 依狀態列出庫存；空字串視為 active
func (s *Service) List(ctx context.Context, status string) ([]inventory.Record, error) {
	if status == "" {
		status = string(inventory.StatusActive)
	}
	return s.store.List(ctx, status)
}

// Get 取得單筆紀錄
func (s *Service) Get(ctx context.Context, id string) (*inventory.Record, error) {
	return s.store.Get(ctx, id)
}

// CreateManual 手動新增紀錄（detected_by=manual）
func (s *Service) CreateManual(ctx context.Context, in ManualInput) (*inventory.Record, error) {
	if in.StandardName == "" {
		return nil, common.ErrInvalidRequest.WithMessage("standard_name 不可為空")
	}
	if in.Quantity.IsNegative() {
		return nil, common.ErrInvalidRequest.WithMessage("數量不可為負數")
	}
	if in.Quantity.IsZero() {
		in.Quantity = decimal.NewFromInt(1)
	}
	if err := validateDates(in.PurchaseDate, in.ExpiryDate); err != nil {
		return nil, err
	}

	today := common.FormatDate(s.now())
	class := in.DetectionClass
	if class == "" {
		var ok bool
		if class, ok = s.catalog.ClassFor(in.StandardName); !ok {
			class = catalog.UnknownClass
		}
	}
	if in.PurchaseDate == nil {
		in.PurchaseDate = common.StringPtr(today)
	}

	rec := &inventory.Record{
		StandardName:   in.StandardName,
		DetectionClass: class,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		PurchaseDate:   in.PurchaseDate,
		ExpiryDate:     in.ExpiryDate,
		DetectedBy:     inventory.DetectedByManual,
		LastSeenDate:   today,
		Status:         inventory.StatusActive,
		Notes:          in.Notes,
	}

	err := s.withLock(ctx, func(tx inventory.Store) error {
		if err := ensureNameFree(ctx, tx, in.StandardName, ""); err != nil {
			return err
		}
		return tx.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	common.LogInfo("手動新增庫存", zap.String("id", rec.ID), zap.String("standard_name", rec.StandardName))
	return rec, nil
}

// UpdateDetails 手動修改紀錄欄位
func (s *Service) UpdateDetails(ctx context.Context, id string, in DetailsInput) (*inventory.Record, error) {
	if in.StandardName != nil && *in.StandardName == "" {
		return nil, common.ErrInvalidRequest.WithMessage("standard_name 不可為空")
	}
	if in.LastSeenDate != nil && !common.IsValidDate(*in.LastSeenDate) {
		return nil, common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的日期: %s", *in.LastSeenDate))
	}
	if err := validateDates(in.PurchaseDate, in.ExpiryDate); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.StandardName != nil {
		fields[inventory.FieldStandardName] = *in.StandardName
	}
	if in.DetectionClass != nil {
		fields[inventory.FieldDetectionClass] = *in.DetectionClass
	}
	if in.Unit != nil {
		fields[inventory.FieldUnit] = *in.Unit
	}
	if in.PurchaseDate != nil {
		fields[inventory.FieldPurchaseDate] = *in.PurchaseDate
	}
	if in.ExpiryDate != nil {
		fields[inventory.FieldExpiryDate] = *in.ExpiryDate
	}
	if in.Notes != nil {
		fields[inventory.FieldNotes] = *in.Notes
	}
	if in.LastSeenDate != nil {
		fields[inventory.FieldLastSeenDate] = *in.LastSeenDate
	}

	var updated *inventory.Record
	err := s.withLock(ctx, func(tx inventory.Store) error {
		rec, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if in.StandardName != nil && *in.StandardName != rec.StandardName && rec.IsActive() {
			if err := ensureNameFree(ctx, tx, *in.StandardName, id); err != nil {
				return err
			}
		}
		if err := tx.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkStatus 標記為 consumed 或 discarded
func (s *Service) MarkStatus(ctx context.Context, id string, status inventory.Status) error {
	err := s.withLock(ctx, func(tx inventory.Store) error {
		return tx.MarkStatus(ctx, id, status)
	})
	if err != nil {
		return err
	}
	common.LogInfo("庫存狀態變更", zap.String("id", id), zap.String("status", string(status)))
	return nil
}

// Delete 刪除紀錄
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.withLock(ctx, func(tx inventory.Store) error {
		return tx.Delete(ctx, id)
	})
}

// withLock 手動寫入與對帳共用同一把鎖
func (s *Service) withLock(ctx context.Context, fn func(inventory.Store) error) error {
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.store.Transaction(ctx, fn)
}

// ensureNameFree 同一 standard_name 只能有一筆 active 紀錄
func ensureNameFree(ctx context.Context, tx inventory.Store, name, selfID string) error {
	active, err := tx.List(ctx, string(inventory.StatusActive))
	if err != nil {
		return err
	}
	for _, r := range active {
		if r.StandardName == name && r.ID != selfID {
			return common.ErrConflict.WithMessage(fmt.Sprintf("已有相同名稱的庫存: %s (%s)", name, r.ID))
		}
	}
	return nil
}

func validateDates(dates ...*string) error {
	for _, d := range dates {
		if d != nil && *d != "" && !common.IsValidDate(*d) {
			return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的日期: %s", *d))
		}
	}
	return nil
}
