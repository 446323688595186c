package inventory

import (
	"context"
	"errors"
	"testing"

	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreMatchesGormSemantics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := newRecord("egg", "egg", 1, DetectedByVision)
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 修改回傳的複本不影響儲存內容
	got, _ := s.Get(ctx, rec.ID)
	*got.PurchaseDate = "1999-01-01"
	again, _ := s.Get(ctx, rec.ID)
	if common.DerefString(again.PurchaseDate, "") != "2024-05-01" {
		t.Fatalf("store leaked internal pointer")
	}

	if err := s.UpdateFields(ctx, rec.ID, map[string]any{FieldNotes: "冷蔵", FieldUnit: nil}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := s.UpdateFields(ctx, rec.ID, map[string]any{"quantity": 1}); !errors.Is(err, common.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := s.MarkStatus(ctx, rec.ID, StatusActive); !errors.Is(err, common.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if err := s.MarkStatus(ctx, rec.ID, StatusConsumed); err != nil {
		t.Fatalf("MarkStatus: %v", err)
	}
	active, _ := s.List(ctx, string(StatusActive))
	all, _ := s.List(ctx, StatusAll)
	if len(active) != 0 || len(all) != 1 || all[0].Status != StatusConsumed {
		t.Fatalf("unexpected listing: active=%d all=%+v", len(active), all)
	}
}

func TestMemoryStoreTransactionRollback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	rec := newRecord("egg", "egg", 1, DetectedByVision)
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.UpdateQuantity(ctx, rec.ID, decimal.NewFromInt(9), nil); err != nil {
			return err
		}
		if err := tx.Create(ctx, newRecord("milk", "milk", 1, DetectedByVision)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("quantity not rolled back: %s", got.Quantity)
	}
	all, _ := s.List(ctx, StatusAll)
	if len(all) != 1 {
		t.Fatalf("create not rolled back: %d records", len(all))
	}
}
