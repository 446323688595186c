package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	aiservice "fridge-inventory/internal/core/ai/service"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/pkg/common"

	"github.com/shopspring/decimal"
)

func TestBuildRecipeRequest(t *testing.T) {
	prompt := BuildRecipeRequest([]string{"レタス", "卵"})
	if !strings.Contains(prompt, "食材リスト: レタス, 卵") {
		t.Fatalf("prompt missing ingredient list: %s", prompt)
	}
	if !strings.Contains(prompt, "白米や麺類") {
		t.Fatalf("prompt missing staple assumption")
	}
}

func TestParseRecipeResponseOrdersMeals(t *testing.T) {
	raw := "```json\n" + `{"recipes":[
		{"meal_type":"夕食","name":"鶏肉のトマト煮込み","description":"d","ingredients":["鶏むね肉","トマト"]},
		{"meal_type":"おやつ","name":"フルーツ","ingredients":"りんご、バナナ"},
		{"meal_type":"朝食","name":"スクランブルエッグ","ingredients":["卵"]},
		{"meal_type":"lunch","name":"うどん","ingredients":["豚ロース肉"]}
	]}` + "\n```"

	got, err := ParseRecipeResponse(raw)
	if err != nil {
		t.Fatalf("ParseRecipeResponse: %v", err)
	}
	want := []struct {
		meal MealType
		name string
	}{
		{MealBreakfast, "スクランブルエッグ"},
		{MealLunch, "うどん"},
		{MealDinner, "鶏肉のトマト煮込み"},
		{MealType("おやつ"), "フルーツ"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d recipes, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].MealType != w.meal || got[i].Name != w.name {
			t.Errorf("recipe %d = %s/%s, want %s/%s", i, got[i].MealType, got[i].Name, w.meal, w.name)
		}
	}
	if len(got[3].Ingredients) != 2 || got[3].Ingredients[1] != "バナナ" {
		t.Errorf("string ingredients not split: %v", got[3].Ingredients)
	}
}

func TestParseRecipeResponseArray(t *testing.T) {
	got, err := ParseRecipeResponse(`以下です: [{"meal_type":"dinner","name":"カレー"}]`)
	if err != nil {
		t.Fatalf("ParseRecipeResponse: %v", err)
	}
	if len(got) != 1 || got[0].MealType != MealDinner || got[0].Ingredients == nil {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseRecipeResponseUnquotedKeys(t *testing.T) {
	got, err := ParseRecipeResponse(`{recipes:[{meal_type:"朝食",name:"トースト"}]}`)
	if err != nil {
		t.Fatalf("ParseRecipeResponse: %v", err)
	}
	if len(got) != 1 || got[0].Name != "トースト" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseRecipeResponseMalformed(t *testing.T) {
	for _, raw := range []string{"", "申し訳ありません", `{"recipes":[{"name":}]}`, `{"menu":[]}`} {
		_, err := ParseRecipeResponse(raw)
		if !errors.Is(err, common.ErrUnparsableModelOutput) {
			t.Fatalf("%q: expected ErrUnparsableModelOutput, got %v", raw, err)
		}
		if ce := common.AsCustomError(err); ce.Raw != raw {
			t.Fatalf("%q: raw text not attached, got %q", raw, ce.Raw)
		}
	}
}

type fakeGenerator struct {
	prompt  string
	content string
	err     error
}

func (f *fakeGenerator) ProcessRequestWith(_ context.Context, prompt, _ string, accept aiservice.Accept) (*aiservice.Response, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	if accept != nil {
		if err := accept(f.content); err != nil {
			return nil, err
		}
	}
	return &aiservice.Response{Content: f.content}, nil
}

func seedRecords(t *testing.T, s inventory.Store, recs ...inventory.Record) {
	t.Helper()
	for i := range recs {
		rec := recs[i]
		rec.Quantity = decimal.NewFromInt(1)
		rec.LastSeenDate = "2024-05-01"
		if err := s.Create(context.Background(), &rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestRecommendUsesConfirmedItemsOnly(t *testing.T) {
	s := inventory.NewMemoryStore()
	seedRecords(t, s,
		inventory.Record{StandardName: "レタス", DetectionClass: "leafy_green", DetectedBy: inventory.DetectedByBoth},
		inventory.Record{StandardName: "milk", DetectionClass: "milk", DetectedBy: inventory.DetectedByVision},
		inventory.Record{StandardName: "卵", DetectionClass: "egg", DetectedBy: inventory.DetectedByText},
		inventory.Record{StandardName: "トマト", DetectionClass: "tomato", DetectedBy: inventory.DetectedByBoth},
	)

	gen := &fakeGenerator{content: `{"recipes":[{"meal_type":"昼食","name":"サラダ","ingredients":["レタス","トマト"]}]}`}
	rec, err := NewService(s, gen).Recommend(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.Ingredients) != 2 {
		t.Fatalf("unexpected ingredients: %v", rec.Ingredients)
	}
	if !strings.Contains(gen.prompt, "食材リスト: トマト, レタス\n") || strings.Contains(gen.prompt, "milk") {
		t.Fatalf("prompt should list only confirmed items: %s", gen.prompt)
	}
	if len(rec.Recipes) != 1 || rec.Recipes[0].MealType != MealLunch {
		t.Fatalf("unexpected recipes: %+v", rec.Recipes)
	}
}

func TestRecommendWithoutConfirmedItems(t *testing.T) {
	s := inventory.NewMemoryStore()
	seedRecords(t, s, inventory.Record{StandardName: "milk", DetectionClass: "milk", DetectedBy: inventory.DetectedByVision})

	gen := &fakeGenerator{}
	rec, err := NewService(s, gen).Recommend(context.Background(), "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Hint == "" || len(rec.Recipes) != 0 || gen.prompt != "" {
		t.Fatalf("expected hint without model call, got %+v", rec)
	}
}

func TestRecommendReportsUnparsableOutput(t *testing.T) {
	s := inventory.NewMemoryStore()
	seedRecords(t, s, inventory.Record{StandardName: "レタス", DetectionClass: "leafy_green", DetectedBy: inventory.DetectedByBoth})

	_, err := NewService(s, &fakeGenerator{content: "no json here"}).Recommend(context.Background(), "")
	if !errors.Is(err, common.ErrUnparsableModelOutput) {
		t.Fatalf("expected ErrUnparsableModelOutput, got %v", err)
	}
}

func TestConfirmedItemNamesDedupes(t *testing.T) {
	names := ConfirmedItemNames([]inventory.Record{
		{StandardName: "卵", DetectedBy: inventory.DetectedByBoth, Status: inventory.StatusActive},
		{StandardName: "卵", DetectedBy: inventory.DetectedByBoth, Status: inventory.StatusActive},
		{StandardName: "牛乳", DetectedBy: inventory.DetectedByBoth, Status: inventory.StatusConsumed},
	})
	if len(names) != 1 || names[0] != "卵" {
		t.Fatalf("unexpected names: %v", names)
	}
}
