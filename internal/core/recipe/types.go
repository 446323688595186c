package recipe

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// Recipe 模型建議的食譜
type Recipe struct {
	MealType    MealType `json:"meal_type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
}

// Recommendation 推薦結果
type Recommendation struct {
	Ingredients []string `json:"ingredients"`
	Recipes     []Recipe `json:"recipes"`
	CacheHit    bool     `json:"cache_hit"`
	// Hint 沒有可用食材時的說明
	Hint string `json:"hint,omitempty"`
}
