package reconcile

import (
	"context"
	"time"

	"fridge-inventory/internal/core/catalog"
	"fridge-inventory/internal/core/detect"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/core/receipt"
	"fridge-inventory/internal/infrastructure/lock"
	"fridge-inventory/internal/infrastructure/metrics"
	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ChannelVision = "vision"
	ChannelText   = "text"
)

// Report 一次對帳作業的結果摘要（僅供參考，不影響庫存）
type Report struct {
	Channel string `json:"channel"`
	Date    string `json:"date"`
	// Created 新建立的紀錄
	Created []string `json:"created"`
	// Refreshed 僅更新最後看到日期（影像）
	Refreshed []string `json:"refreshed"`
	// Merged 名稱完全相符並累加數量（收據）
	Merged []string `json:"merged"`
	// Refined 由泛用類別細化為具體名稱（收據）
	Refined []string `json:"refined"`
}

// Engine 對帳引擎，庫存 standard_name/quantity/detected_by 的唯一寫入者
type Engine struct {
	store   inventory.Store
	catalog *catalog.Catalog
	locker  lock.Locker
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option 引擎選項
type Option func(*Engine)

// WithClock 指定時間來源
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocker 指定對帳鎖
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithMetrics 指定指標
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine 創建對帳引擎
func NewEngine(store inventory.Store, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: cat,
		locker:  lock.NewLocal(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReconcileVisionDetections 以已正規化的偵測類別更新庫存
//
// 有相同 standard_name 的 active 紀錄時只更新 last_seen_date，否則建立數量 1 的新紀錄。
// 同一批偵測不排除已比對過的紀錄。
func (e *Engine) ReconcileVisionDetections(ctx context.Context, detections []detect.Detection) (*Report, error) {
	return e.run(ctx, ChannelVision, func(tx inventory.Store, rep *Report) error {
		active, err := tx.List(ctx, string(inventory.StatusActive))
		if err != nil {
			return err
		}

		for _, d := range detections {
			class := d.ClassLabel
			if class == "" {
				continue
			}

			if idx := findByName(active, class, nil); idx >= 0 {
				rec := &active[idx]
				if err := tx.UpdateFields(ctx, rec.ID, map[string]any{
					inventory.FieldLastSeenDate: rep.Date,
				}); err != nil {
					return err
				}
				rec.LastSeenDate = rep.Date
				rep.Refreshed = appendUnique(rep.Refreshed, rec.ID)
				continue
			}

			rec := &inventory.Record{
				StandardName:   class,
				DetectionClass: class,
				Quantity:       decimal.NewFromInt(1),
				PurchaseDate:   common.StringPtr(rep.Date),
				DetectedBy:     inventory.DetectedByVision,
				LastSeenDate:   rep.Date,
				Status:         inventory.StatusActive,
			}
			if err := tx.Create(ctx, rec); err != nil {
				return err
			}
			// 加入工作集合，同批次相同類別不會重複建立
			active = append(active, *rec)
			rep.Created = append(rep.Created, rec.ID)
		}
		return nil
	})
}

// ReconcileReceiptItems 以收據品項更新庫存
//
// 依序嘗試：1. standard_name 完全相符 2. 尚未細化且類別相符的泛用紀錄。
// 比對到的紀錄改為具體名稱、detected_by=both 並累加數量；
// 每筆紀錄在同一張收據中只會被比對一次。
func (e *Engine) ReconcileReceiptItems(ctx context.Context, items []receipt.Item) (*Report, error) {
	merged := mergeItems(items)

	return e.run(ctx, ChannelText, func(tx inventory.Store, rep *Report) error {
		active, err := tx.List(ctx, string(inventory.StatusActive))
		if err != nil {
			return err
		}
		consumed := make(map[string]struct{}, len(merged))

		for _, item := range merged {
			qty := decimal.NewFromInt(int64(item.Quantity))

			idx := findByName(active, item.ItemName, consumed)
			refined := false
			if idx < 0 {
				idx = e.findGeneric(active, item.ItemName, consumed)
				refined = idx >= 0
			}

			if idx >= 0 {
				rec := &active[idx]
				if err := e.confirm(ctx, tx, rec, item.ItemName, qty, rep.Date); err != nil {
					return err
				}
				consumed[rec.ID] = struct{}{}
				if refined {
					rep.Refined = append(rep.Refined, rec.ID)
				} else {
					rep.Merged = append(rep.Merged, rec.ID)
				}
				common.LogDebug("收據品項比對成功",
					zap.String("item", item.ItemName),
					zap.String("record_id", rec.ID),
					zap.Bool("refined", refined),
				)
				continue
			}

			class, ok := e.catalog.ClassFor(item.ItemName)
			if !ok {
				class = catalog.UnknownClass
			}
			rec := &inventory.Record{
				StandardName:   item.ItemName,
				DetectionClass: class,
				Quantity:       qty,
				PurchaseDate:   common.StringPtr(rep.Date),
				DetectedBy:     inventory.DetectedByText,
				LastSeenDate:   rep.Date,
				Status:         inventory.StatusActive,
			}
			if err := tx.Create(ctx, rec); err != nil {
				return err
			}
			active = append(active, *rec)
			consumed[rec.ID] = struct{}{}
			rep.Created = append(rep.Created, rec.ID)
		}
		return nil
	})
}

// confirm 套用收據確認：具體名稱、both、累加數量、最後看到日期
func (e *Engine) confirm(ctx context.Context, tx inventory.Store, rec *inventory.Record, name string, qty decimal.Decimal, today string) error {
	if err := tx.UpdateFields(ctx, rec.ID, map[string]any{
		inventory.FieldStandardName: name,
		inventory.FieldLastSeenDate: today,
	}); err != nil {
		return err
	}
	total := rec.Quantity.Add(qty)
	both := inventory.DetectedByBoth
	if err := tx.UpdateQuantity(ctx, rec.ID, total, &both); err != nil {
		return err
	}
	rec.StandardName = name
	rec.LastSeenDate = today
	rec.Quantity = total
	rec.DetectedBy = both
	return nil
}

// findGeneric 尋找類別在候選集合內、仍為泛用名稱的紀錄
func (e *Engine) findGeneric(active []inventory.Record, name string, consumed map[string]struct{}) int {
	candidates := e.catalog.CandidateClasses(name)
	for i := range active {
		rec := &active[i]
		if _, used := consumed[rec.ID]; used {
			continue
		}
		if !rec.IsGeneric() || rec.StandardName == name {
			continue
		}
		for _, c := range candidates {
			if rec.DetectionClass == c {
				return i
			}
		}
	}
	return -1
}

// run 在對帳鎖與交易中執行一次作業
func (e *Engine) run(ctx context.Context, channel string, fn func(inventory.Store, *Report) error) (*Report, error) {
	start := time.Now()

	release, err := e.locker.Acquire(ctx)
	if err != nil {
		e.metrics.ObservePass(channel, time.Since(start), err)
		return nil, err
	}
	defer release()

	rep := &Report{Channel: channel, Date: common.FormatDate(e.now())}
	if err := e.store.Transaction(ctx, func(tx inventory.Store) error {
		return fn(tx, rep)
	}); err != nil {
		e.metrics.ObservePass(channel, time.Since(start), err)
		common.LogError("對帳失敗", zap.String("channel", channel), zap.Error(err))
		return nil, err
	}

	e.metrics.ObservePass(channel, time.Since(start), nil)
	e.metrics.AddRecords(channel, "created", len(rep.Created))
	e.metrics.AddRecords(channel, "refreshed", len(rep.Refreshed))
	e.metrics.AddRecords(channel, "merged", len(rep.Merged))
	e.metrics.AddRecords(channel, "refined", len(rep.Refined))

	common.LogInfo("對帳完成",
		zap.String("channel", channel),
		zap.Int("created", len(rep.Created)),
		zap.Int("refreshed", len(rep.Refreshed)),
		zap.Int("merged", len(rep.Merged)),
		zap.Int("refined", len(rep.Refined)),
		zap.Duration("duration", time.Since(start)),
	)
	return rep, nil
}

func findByName(active []inventory.Record, name string, consumed map[string]struct{}) int {
	for i := range active {
		if active[i].StandardName != name {
			continue
		}
		if _, used := consumed[active[i].ID]; used {
			continue
		}
		return i
	}
	return -1
}

// mergeItems 合併同名品項（數量相加），保留首次出現的順序
func mergeItems(items []receipt.Item) []receipt.Item {
	out := make([]receipt.Item, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if it.ItemName == "" {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if i, ok := pos[it.ItemName]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ItemName] = len(out)
		out = append(out, it)
	}
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
