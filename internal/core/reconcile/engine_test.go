package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridge-inventory/internal/core/catalog"
	"fridge-inventory/internal/core/detect"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/core/receipt"
	"fridge-inventory/internal/infrastructure/lock"
	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
)

var day1 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newEngine(store inventory.Store, now time.Time) *Engine {
	return NewEngine(store, catalog.Default(), WithClock(func() time.Time { return now }))
}

func seed(t *testing.T, s inventory.Store, rec *inventory.Record) *inventory.Record {
	t.Helper()
	if rec.LastSeenDate == "" {
		rec.LastSeenDate = "2024-04-01"
	}
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rec
}

func get(t *testing.T, s inventory.Store, id string) *inventory.Record {
	t.Helper()
	rec, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get %s: %v", id, err)
	}
	return rec
}

func active(t *testing.T, s inventory.Store) []inventory.Record {
	t.Helper()
	recs, err := s.List(context.Background(), string(inventory.StatusActive))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return recs
}

func vision(classes ...string) []detect.Detection {
	out := make([]detect.Detection, len(classes))
	for i, c := range classes {
		out[i] = detect.Detection{ClassLabel: c, Confidence: 0.9}
	}
	return out
}

func TestVisionCreatesGenericRecord(t *testing.T) {
	s := inventory.NewMemoryStore()
	rep, err := newEngine(s, day1).ReconcileVisionDetections(context.Background(), vision("leafy_green"))
	if err != nil {
		t.Fatalf("ReconcileVisionDetections: %v", err)
	}
	if len(rep.Created) != 1 {
		t.Fatalf("expected 1 created, got %+v", rep)
	}

	rec := get(t, s, rep.Created[0])
	if rec.StandardName != "leafy_green" || rec.DetectionClass != "leafy_green" {
		t.Errorf("unexpected names: %+v", rec)
	}
	if !rec.Quantity.Equal(decimal.NewFromInt(1)) || rec.DetectedBy != inventory.DetectedByVision {
		t.Errorf("unexpected quantity/provenance: %s %s", rec.Quantity, rec.DetectedBy)
	}
	if common.DerefString(rec.PurchaseDate, "") != "2024-05-01" || rec.LastSeenDate != "2024-05-01" {
		t.Errorf("unexpected dates: purchase=%v last_seen=%s", rec.PurchaseDate, rec.LastSeenDate)
	}
	if !rec.IsActive() {
		t.Errorf("expected active record")
	}
}

func TestVisionRefreshKeepsQuantity(t *testing.T) {
	s := inventory.NewMemoryStore()
	milk := seed(t, s, &inventory.Record{
		StandardName: "milk", DetectionClass: "milk",
		Quantity: decimal.NewFromInt(3), DetectedBy: inventory.DetectedByBoth,
	})

	rep, err := newEngine(s, day1).ReconcileVisionDetections(context.Background(), vision("milk"))
	if err != nil {
		t.Fatalf("ReconcileVisionDetections: %v", err)
	}
	if len(rep.Created) != 0 || len(rep.Refreshed) != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	got := get(t, s, milk.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("quantity changed to %s", got.Quantity)
	}
	if got.LastSeenDate != "2024-05-01" {
		t.Errorf("last_seen_date = %s", got.LastSeenDate)
	}
	if got.DetectedBy != inventory.DetectedByBoth {
		t.Errorf("detected_by regressed to %s", got.DetectedBy)
	}
}

func TestVisionSameClassTwiceInBatch(t *testing.T) {
	s := inventory.NewMemoryStore()
	rep, err := newEngine(s, day1).ReconcileVisionDetections(context.Background(), vision("egg", "egg", "milk"))
	if err != nil {
		t.Fatalf("ReconcileVisionDetections: %v", err)
	}
	if len(rep.Created) != 2 || len(rep.Refreshed) != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if recs := active(t, s); len(recs) != 2 {
		t.Fatalf("expected one record per class, got %d", len(recs))
	}
}

func TestVisionIgnoresConsumedRecords(t *testing.T) {
	s := inventory.NewMemoryStore()
	old := seed(t, s, &inventory.Record{
		StandardName: "leafy_green", DetectionClass: "leafy_green",
		Quantity: decimal.NewFromInt(1), DetectedBy: inventory.DetectedByVision,
	})
	if err := s.MarkStatus(context.Background(), old.ID, inventory.StatusConsumed); err != nil {
		t.Fatalf("MarkStatus: %v", err)
	}

	rep, err := newEngine(s, day1).ReconcileVisionDetections(context.Background(), vision("leafy_green"))
	if err != nil {
		t.Fatalf("ReconcileVisionDetections: %v", err)
	}
	if len(rep.Created) != 1 || rep.Created[0] == old.ID {
		t.Fatalf("expected a new record, got %+v", rep)
	}
}

func TestReceiptRefinesGenericRecord(t *testing.T) {
	s := inventory.NewMemoryStore()
	e := newEngine(s, day1)
	ctx := context.Background()

	rep, err := e.ReconcileVisionDetections(ctx, vision("leafy_green"))
	if err != nil {
		t.Fatalf("ReconcileVisionDetections: %v", err)
	}
	id := rep.Created[0]

	items := receipt.NewMatcher(catalog.Default()).Parse([]string{"レタス"})
	if len(items) != 1 || items[0].ItemName != "レタス" || items[0].Quantity != 1 {
		t.Fatalf("unexpected parse: %+v", items)
	}

	later := newEngine(s, day1.AddDate(0, 0, 2))
	rep, err = later.ReconcileReceiptItems(ctx, items)
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	if len(rep.Refined) != 1 || rep.Refined[0] != id || len(rep.Created) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	got := get(t, s, id)
	if got.StandardName != "レタス" || got.DetectionClass != "leafy_green" {
		t.Errorf("unexpected names: %+v", got)
	}
	if got.DetectedBy != inventory.DetectedByBoth {
		t.Errorf("detected_by = %s", got.DetectedBy)
	}
	if !got.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("quantity = %s, want prior 1 + parsed 1", got.Quantity)
	}
	if got.LastSeenDate != "2024-05-03" {
		t.Errorf("last_seen_date = %s", got.LastSeenDate)
	}
	if got.IsGeneric() {
		t.Errorf("record should no longer be generic")
	}
}

func TestReceiptRecordMatchedOncePerRun(t *testing.T) {
	s := inventory.NewMemoryStore()
	generic := seed(t, s, &inventory.Record{
		StandardName: "leafy_green", DetectionClass: "leafy_green",
		Quantity: decimal.NewFromInt(1), DetectedBy: inventory.DetectedByVision,
	})

	items := []receipt.Item{
		{ItemName: "レタス", Quantity: 1},
		{ItemName: "ほうれん草", Quantity: 1},
	}
	rep, err := newEngine(s, day1).ReconcileReceiptItems(context.Background(), items)
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	if len(rep.Refined) != 1 || len(rep.Created) != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	if got := get(t, s, generic.ID); got.StandardName != "レタス" {
		t.Errorf("first line should claim the generic record, got %s", got.StandardName)
	}
	created := get(t, s, rep.Created[0])
	if created.StandardName != "ほうれん草" || created.DetectionClass != "leafy_green" || created.DetectedBy != inventory.DetectedByText {
		t.Errorf("unexpected created record: %+v", created)
	}
}

func TestReceiptExactMatchBeforeGeneric(t *testing.T) {
	s := inventory.NewMemoryStore()
	specific := seed(t, s, &inventory.Record{
		StandardName: "卵", DetectionClass: "egg",
		Quantity: decimal.NewFromInt(10), DetectedBy: inventory.DetectedByText,
	})
	generic := seed(t, s, &inventory.Record{
		StandardName: "egg", DetectionClass: "egg",
		Quantity: decimal.NewFromInt(1), DetectedBy: inventory.DetectedByVision,
	})

	rep, err := newEngine(s, day1).ReconcileReceiptItems(context.Background(), []receipt.Item{{ItemName: "卵", Quantity: 6}})
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	if len(rep.Merged) != 1 || rep.Merged[0] != specific.ID {
		t.Fatalf("unexpected report: %+v", rep)
	}

	got := get(t, s, specific.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(16)) || got.DetectedBy != inventory.DetectedByBoth {
		t.Errorf("unexpected specific record: qty=%s by=%s", got.Quantity, got.DetectedBy)
	}
	if g := get(t, s, generic.ID); g.StandardName != "egg" || !g.Quantity.Equal(decimal.NewFromInt(1)) {
		t.Errorf("generic record should be untouched: %+v", g)
	}
}

func TestReceiptSkipsRefinedRecords(t *testing.T) {
	s := inventory.NewMemoryStore()
	refined := seed(t, s, &inventory.Record{
		StandardName: "ほうれん草", DetectionClass: "leafy_green",
		Quantity: decimal.NewFromInt(1), DetectedBy: inventory.DetectedByBoth,
	})

	rep, err := newEngine(s, day1).ReconcileReceiptItems(context.Background(), []receipt.Item{{ItemName: "小松菜", Quantity: 1}})
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	if len(rep.Created) != 1 {
		t.Fatalf("expected a new record, got %+v", rep)
	}
	if got := get(t, s, refined.ID); got.StandardName != "ほうれん草" {
		t.Errorf("refined record must not be renamed, got %s", got.StandardName)
	}
}

func TestReceiptUnmappedItemUsesUnknownClass(t *testing.T) {
	s := inventory.NewMemoryStore()
	rep, err := newEngine(s, day1).ReconcileReceiptItems(context.Background(), []receipt.Item{{ItemName: "ロイヤルブレッド", Quantity: 1}})
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	got := get(t, s, rep.Created[0])
	if got.DetectionClass != catalog.UnknownClass || got.DetectedBy != inventory.DetectedByText {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestReceiptDuplicateLinesMerged(t *testing.T) {
	s := inventory.NewMemoryStore()
	items := []receipt.Item{
		{ItemName: "トマト", Quantity: 2, RawLine: "トマト 2個"},
		{ItemName: "牛乳", Quantity: 1},
		{ItemName: "トマト", Quantity: 1, RawLine: "トマト"},
	}
	rep, err := newEngine(s, day1).ReconcileReceiptItems(context.Background(), items)
	if err != nil {
		t.Fatalf("ReconcileReceiptItems: %v", err)
	}
	if len(rep.Created) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	recs := active(t, s)
	if len(recs) != 2 {
		t.Fatalf("expected 2 active records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.StandardName == "トマト" && !r.Quantity.Equal(decimal.NewFromInt(3)) {
			t.Errorf("tomato quantity = %s, want 3", r.Quantity)
		}
	}
}

// failingStore UpdateQuantity 一律失敗，用於確認交易回滾
type failingStore struct {
	*inventory.MemoryStore
}

type failingTx struct {
	inventory.Store
}

func (failingTx) UpdateQuantity(context.Context, string, decimal.Decimal, *inventory.DetectedBy) error {
	return errors.New("disk full")
}

func (f failingStore) Transaction(ctx context.Context, fn func(inventory.Store) error) error {
	return f.MemoryStore.Transaction(ctx, func(tx inventory.Store) error {
		return fn(failingTx{tx})
	})
}

func TestReceiptFailureRollsBack(t *testing.T) {
	mem := inventory.NewMemoryStore()
	generic := seed(t, mem, &inventory.Record{
		StandardName: "leafy_green", DetectionClass: "leafy_green",
		Quantity: decimal.NewFromInt(1), DetectedBy: inventory.DetectedByVision,
	})

	_, err := newEngine(failingStore{mem}, day1).ReconcileReceiptItems(context.Background(), []receipt.Item{{ItemName: "レタス", Quantity: 1}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := get(t, mem, generic.ID); got.StandardName != "leafy_green" || got.LastSeenDate != "2024-04-01" {
		t.Fatalf("partial update not rolled back: %+v", got)
	}
}

func TestPassLockTimeout(t *testing.T) {
	l := lock.NewLocal()
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	e := NewEngine(inventory.NewMemoryStore(), catalog.Default(), WithLocker(l))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := e.ReconcileVisionDetections(ctx, vision("egg")); !errors.Is(err, common.ErrLockNotObtained) {
		t.Fatalf("expected ErrLockNotObtained, got %v", err)
	}
}

func TestMergeItems(t *testing.T) {
	got := mergeItems([]receipt.Item{
		{ItemName: "卵", Quantity: 10},
		{ItemName: "", Quantity: 3},
		{ItemName: "牛乳", Quantity: 0},
		{ItemName: "卵", Quantity: 6},
	})
	if len(got) != 2 {
		t.Fatalf("unexpected merge: %+v", got)
	}
	if got[0].ItemName != "卵" || got[0].Quantity != 16 {
		t.Errorf("unexpected first item: %+v", got[0])
	}
	if got[1].ItemName != "牛乳" || got[1].Quantity != 1 {
		t.Errorf("unexpected second item: %+v", got[1])
	}
}
