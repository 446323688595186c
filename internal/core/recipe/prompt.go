package recipe

import (
	"fmt"
	"strings"
)

const recipePromptTemplate = `あなたは料理の専門家であり、レシピの提案者です。
冷蔵庫に以下の食材があります。これらの食材をメインに使える、おすすめのレシピを3つ提案してください。

# 前提条件
- 白米や麺類（パスタ、うどん、そば、中華麺など）は、常に家にあるものとして、自由にレシピに使用して構いません。

# 指示
- 以下の食材リストにある食材を積極的に活用してください。
- 各レシピについて、食事タイプ（"朝食", "昼食", "夕食"）、料理名、簡単な説明、主要な材料を教えてください。
- 出力は必ずJSON形式で、キー名は英語（"meal_type", "name", "description", "ingredients"）としてください。

食材リスト: %s

# 出力形式
{"recipes":[{"meal_type":"朝食","name":"スクランブルエッグと野菜炒め","description":"卵と冷蔵庫の野菜で手軽に作れる朝食です。","ingredients":["卵","ピーマン","玉ねぎ"]}]}
`

// BuildRecipeRequest 以已確認的食材名稱產生 prompt
func BuildRecipeRequest(names []string) string {
	return fmt.Sprintf(recipePromptTemplate, strings.Join(names, ", "))
}
