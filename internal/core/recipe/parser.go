package recipe

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fridge-inventory/internal/pkg/common"
)

// 餐別顯示順序
var mealOrder = map[MealType]int{
	MealBreakfast: 0,
	MealLunch:     1,
	MealDinner:    2,
}

var mealAliases = map[string]MealType{
	"朝食":        MealBreakfast,
	"朝ごはん":      MealBreakfast,
	"breakfast": MealBreakfast,
	"昼食":        MealLunch,
	"昼ごはん":      MealLunch,
	"lunch":     MealLunch,
	"夕食":        MealDinner,
	"晩ごはん":      MealDinner,
	"夜ごはん":      MealDinner,
	"dinner":    MealDinner,
}

// stringList 接受字串陣列或單一字串
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	out := []string{}
	for _, part := range strings.FieldsFunc(single, func(r rune) bool { return r == ',' || r == '、' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*s = out
	return nil
}

type rawRecipe struct {
	MealType    string     `json:"meal_type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Ingredients stringList `json:"ingredients"`
}

// ParseRecipeResponse 解析模型輸出並依朝食、昼食、夕食排序；無法解析時附上原始內容
func ParseRecipeResponse(raw string) ([]Recipe, error) {
	content := common.ExtractJSON(raw)
	if content == "" {
		return nil, common.ErrUnparsableModelOutput.WithRaw(raw)
	}

	items, err := decodeRecipes(content)
	if err != nil {
		// 部分模型會輸出未加引號的鍵
		items, err = decodeRecipes(common.QuoteJSONKeys(content))
	}
	if err != nil {
		return nil, common.ErrUnparsableModelOutput.Wrap(err).WithRaw(raw)
	}

	recipes := make([]Recipe, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		ingredients := []string(it.Ingredients)
		if ingredients == nil {
			ingredients = []string{}
		}
		recipes = append(recipes, Recipe{
			MealType:    normalizeMealType(it.MealType),
			Name:        name,
			Description: strings.TrimSpace(it.Description),
			Ingredients: ingredients,
		})
	}

	sort.SliceStable(recipes, func(i, j int) bool {
		return mealRank(recipes[i].MealType) < mealRank(recipes[j].MealType)
	})
	return recipes, nil
}

func decodeRecipes(content string) ([]rawRecipe, error) {
	if strings.HasPrefix(content, "[") {
		var list []rawRecipe
		if err := common.ParseJSON(content, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapped struct {
		Recipes *[]rawRecipe `json:"recipes"`
	}
	if err := common.ParseJSON(content, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Recipes == nil {
		return nil, fmt.Errorf("missing recipes field")
	}
	return *wrapped.Recipes, nil
}

func normalizeMealType(s string) MealType {
	s = strings.TrimSpace(s)
	if mt, ok := mealAliases[strings.ToLower(s)]; ok {
		return mt
	}
	return MealType(s)
}

func mealRank(mt MealType) int {
	if r, ok := mealOrder[mt]; ok {
		return r
	}
	return len(mealOrder)
}
