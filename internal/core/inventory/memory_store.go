package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
)

// MemoryStore 記憶體內的庫存儲存，重啟後資料消失（database.driver=memory）
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore 創建記憶體庫存儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.Create(ctx, rec)
}

func (s *MemoryStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.UpdateFields(ctx, id, fields)
}

func (s *MemoryStore) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, detectedBy *DetectedBy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.UpdateQuantity(ctx, id, quantity, detectedBy)
}

func (s *MemoryStore) List(ctx context.Context, status string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.List(ctx, status)
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.Get(ctx, id)
}

func (s *MemoryStore) MarkStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.MarkStatus(ctx, id, status)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.Delete(ctx, id)
}

// Transaction fn 回傳錯誤時還原為執行前的快照
func (s *MemoryStore) Transaction(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]Record, len(s.records))
	for id, rec := range s.records {
		snapshot[id] = rec
	}
	if err := fn(memTx{s}); err != nil {
		s.records = snapshot
		return err
	}
	return nil
}

// memTx 已持有鎖時的操作
type memTx struct {
	s *MemoryStore
}

func (t memTx) Create(_ context.Context, rec *Record) error {
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
	if _, exists := t.s.records[rec.ID]; exists {
		return common.ErrConflict.WithMessage(fmt.Sprintf("紀錄已存在: %s", rec.ID))
	}
	t.s.records[rec.ID] = cloneRecord(*rec)
	return nil
}

func (t memTx) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	for name := range fields {
		if !IsUpdatableField(name) {
			return common.ErrUnknownField.WithMessage(fmt.Sprintf("不可更新的欄位: %s", name))
		}
	}
	rec, ok := t.s.records[id]
	if !ok {
		return common.ErrRecordNotFound
	}
	for name, v := range fields {
		if err := setField(&rec, name, v); err != nil {
			return err
		}
	}
	t.s.records[id] = rec
	return nil
}

func (t memTx) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal, detectedBy *DetectedBy) error {
	if quantity.IsNegative() {
		return common.ErrInvalidRequest.WithMessage("數量不可為負數")
	}
	if detectedBy != nil && !detectedBy.Valid() {
		return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的來源: %q", *detectedBy))
	}
	rec, ok := t.s.records[id]
	if !ok {
		return common.ErrRecordNotFound
	}
	rec.Quantity = quantity
	if detectedBy != nil {
		rec.DetectedBy = *detectedBy
	}
	t.s.records[id] = rec
	return nil
}

func (t memTx) List(_ context.Context, status string) ([]Record, error) {
	if status != StatusAll && !Status(status).Valid() {
		return nil, common.ErrInvalidRequest.WithMessage(fmt.Sprintf("無效的狀態篩選: %q", status))
	}
	out := make([]Record, 0, len(t.s.records))
	for _, rec := range t.s.records {
		if status == StatusAll || string(rec.Status) == status {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StandardName != out[j].StandardName {
			return out[i].StandardName < out[j].StandardName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t memTx) Get(_ context.Context, id string) (*Record, error) {
	rec, ok := t.s.records[id]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	cp := cloneRecord(rec)
	return &cp, nil
}

func (t memTx) MarkStatus(_ context.Context, id string, status Status) error {
	if !status.Terminal() {
		return common.ErrInvalidStatusTransition.WithMessage(fmt.Sprintf("狀態必須為 consumed 或 discarded: %q", status))
	}
	rec, ok := t.s.records[id]
	if !ok {
		return common.ErrRecordNotFound
	}
	if rec.Status != StatusActive {
		return common.ErrInvalidStatusTransition.WithMessage(fmt.Sprintf("紀錄狀態為 %s，無法變更為 %s", rec.Status, status))
	}
	rec.Status = status
	t.s.records[id] = rec
	return nil
}

func (t memTx) Delete(_ context.Context, id string) error {
	if _, ok := t.s.records[id]; !ok {
		return common.ErrRecordNotFound
	}
	delete(t.s.records, id)
	return nil
}

func (t memTx) Transaction(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func setField(rec *Record, name string, v any) error {
	switch name {
	case FieldStandardName, FieldDetectionClass, FieldLastSeenDate:
		s, ok := v.(string)
		if !ok {
			return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("欄位 %s 必須為字串", name))
		}
		switch name {
		case FieldStandardName:
			rec.StandardName = s
		case FieldDetectionClass:
			rec.DetectionClass = s
		default:
			rec.LastSeenDate = s
		}
	case FieldUnit, FieldPurchaseDate, FieldExpiryDate, FieldNotes:
		var p *string
		switch val := v.(type) {
		case nil:
		case string:
			p = &val
		case *string:
			if val != nil {
				s := *val
				p = &s
			}
		default:
			return common.ErrInvalidRequest.WithMessage(fmt.Sprintf("欄位 %s 必須為字串", name))
		}
		switch name {
		case FieldUnit:
			rec.Unit = p
		case FieldPurchaseDate:
			rec.PurchaseDate = p
		case FieldExpiryDate:
			rec.ExpiryDate = p
		default:
			rec.Notes = p
		}
	}
	return nil
}

func cloneRecord(r Record) Record {
	cp := r
	cp.Unit = clonePtr(r.Unit)
	cp.PurchaseDate = clonePtr(r.PurchaseDate)
	cp.ExpiryDate = clonePtr(r.ExpiryDate)
	cp.Notes = clonePtr(r.Notes)
	return cp
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
