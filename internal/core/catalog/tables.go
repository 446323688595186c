package catalog

// 偵測器原始標籤 -> 標準類別
var defaultConsolidation = map[string]string{
	"eggs":           "egg",
	"chicken_egg":    "egg",
	"milk_carton":    "milk",
	"pork":           "meat",
	"beef":           "meat",
	"chicken":        "meat",
	"ham":            "meat",
	"bacon":          "meat",
	"sausage":        "meat",
	"ground_meat":    "meat",
	"salmon":         "fish",
	"tuna":           "fish",
	"mackerel":       "fish",
	"seafood":        "fish",
	"tomatoes":       "tomato",
	"cherry_tomato":  "tomato",
	"cucumbers":      "cucumber",
	"aubergine":      "eggplant",
	"carrots":        "carrot",
	"onions":         "onion",
	"green_pepper":   "bell_pepper",
	"red_pepper":     "bell_pepper",
	"pepper":         "bell_pepper",
	"capsicum":       "bell_pepper",
	"spinach":        "leafy_green",
	"komatsuna":      "leafy_green",
	"bok_choy":       "leafy_green",
	"kale":           "leafy_green",
	"leaf_vegetable": "leafy_green",
	"mushrooms":      "mushroom",
	"shiitake":       "mushroom",
	"enoki":          "mushroom",
	"shimeji":        "mushroom",
	"bean_sprouts":   "bean_sprout",
	"beer_can":       "beer",
	"beer_bottle":    "beer",
	"yoghurt":        "yogurt",
	"water_bottle":   "bottle",
	"pet_bottle":     "bottle",
	"plastic_bottle": "bottle",
	"apples":         "apple",
	"bananas":        "banana",
	"grapes":         "grape",
	"lemons":         "lemon",
	"oranges":        "orange",
	"sweet_corn":     "corn",
	"maize":          "corn",
}

// 別名類別：收據品項可比對到的其他泛用類別
var defaultAliases = map[string][]string{
	"lettuce": {"leafy_green"},
	"cabbage": {"leafy_green"},
	"milk":    {"bottle"},
	"beer":    {"bottle"},
}

// 標準名稱 -> 視覺類別
var defaultStandardToClass = map[string]string{
	"牛乳":          "milk",
	"卵":           "egg",
	"豚ロース肉":       "meat",
	"鶏むね肉":        "meat",
	"肉（その他）":      "meat",
	"鮭":           "fish",
	"魚（その他）":      "fish",
	"味噌":          "miso",
	"豆腐":          "tofu",
	"トマト":         "tomato",
	"きゅうり":        "cucumber",
	"なす":          "eggplant",
	"にんじん":        "carrot",
	"玉ねぎ":         "onion",
	"キャベツ":        "cabbage",
	"ピーマン":        "bell_pepper",
	"ほうれん草":       "leafy_green",
	"小松菜":         "leafy_green",
	"レタス":         "lettuce",
	"きのこ":         "mushroom",
	"もやし":         "bean_sprout",
	"ビール":         "beer",
	"チーズ":         "cheese",
	"納豆":          "natto",
	"ヨーグルト":       "yogurt",
	"ボトル飲料":       "bottle",
	"りんご":         "apple",
	"バナナ":         "banana",
	"ブロッコリー":      "broccoli",
	"コーン":         "corn",
	"ぶどう":         "grape",
	"キウイ":         "kiwi",
	"レモン":         "lemon",
	"オレンジ":        "orange",
	"マンゴー":        "mango",
	"スイカ":         "watermelon",
	"meatballs":   "meat",
	"ribs":        "meat",
	"pulled pork": "meat",

	"apple":       "apple",
	"banana":      "banana",
	"broccoli":    "broccoli",
	"corn":        "corn",
	"cucumber":    "cucumber",
	"eggplant":    "eggplant",
	"grape":       "grape",
	"kiwi":        "kiwi",
	"lemon":       "lemon",
	"lettuce":     "lettuce",
	"mango":       "mango",
	"orange":      "orange",
	"watermelon":  "watermelon",
	"milk":        "milk",
	"egg":         "egg",
	"meat":        "meat",
	"fish":        "fish",
	"miso":        "miso",
	"tofu":        "tofu",
	"tomato":      "tomato",
	"carrot":      "carrot",
	"onion":       "onion",
	"cabbage":     "cabbage",
	"bell_pepper": "bell_pepper",
	"leafy_green": "leafy_green",
	"mushroom":    "mushroom",
	"bean_sprout": "bean_sprout",
	"beer":        "beer",
	"cheese":      "cheese",
	"natto":       "natto",
	"yogurt":      "yogurt",
	"bottle":      "bottle",
}

var defaultTargetClasses = []string{
	"milk", "egg", "meat", "fish", "miso", "tofu", "tomato", "cucumber", "eggplant", "carrot",
	"onion", "cabbage", "bell_pepper", "leafy_green", "lettuce", "mushroom", "bean_sprout",
	"beer", "cheese", "natto", "yogurt", "bottle",
	"apple", "banana", "broccoli", "corn", "grape", "kiwi", "lemon", "mango", "orange", "watermelon",
}

// 收據關鍵字表；同一表記出現在多個標準名稱時以先定義者為準
var defaultKeywords = []Keyword{
	{"牛乳", []string{"牛乳", "ぎゅうにゅう", "ミルク", "特濃"}},
	{"卵", []string{"たまご", "卵", "玉子", "タマゴ", "たまごL10コ", "鶏卵", "白M10個"}},
	{"豚ロース肉", []string{"豚ロース肉", "豚肉ローススライス", "豚肉", "豚ロース", "ロース"}},
	{"鶏むね肉", []string{"鶏むね肉", "東北産若どりむね肉", "むね肉", "若どり"}},
	{"肉（その他）", []string{"肉", "牛肉", "もも肉", "バラ肉"}},
	{"鮭", []string{"鮭", "サケ", "しゃけ"}},
	{"魚（その他）", []string{"魚", "マグロ", "鯛", "ブリ"}},
	{"味噌", []string{"みそ", "味噌"}},
	{"豆腐", []string{"豆腐", "とうふ"}},
	{"トマト", []string{"トマト", "トマト袋"}},
	{"きゅうり", []string{"きゅうり", "胡瓜", "きゅうり袋"}},
	{"なす", []string{"なす", "ナス", "茄子", "長なす"}},
	{"にんじん", []string{"にんじん", "人参"}},
	{"玉ねぎ", []string{"たまねぎ", "玉ねぎ", "玉葱"}},
	{"キャベツ", []string{"キャベツ"}},
	{"ピーマン", []string{"ピーマン"}},
	{"ほうれん草", []string{"ほうれん草", "ホウレン草"}},
	{"小松菜", []string{"小松菜"}},
	{"レタス", []string{"レタス"}},
	{"きのこ", []string{"きのこ", "キノコ", "しめじ", "エノキ", "椎茸", "まいたけ"}},
	{"もやし", []string{"もやし"}},
	{"ビール", []string{"ビール", "びーる"}},
	{"チーズ", []string{"チーズ"}},
	{"納豆", []string{"納豆", "なっとう"}},
	{"ヨーグルト", []string{"ヨーグルト", "プレーンソ", "プレーン"}},
	{"ボトル飲料", []string{"ボトル", "水", "お茶", "ドリンク", "PET"}},

	{"りんご", []string{"りんご", "リンゴ"}},
	{"バナナ", []string{"バナナ"}},
	{"ブロッコリー", []string{"ブロッコリー"}},
	{"コーン", []string{"コーン", "とうもろこし"}},
	{"ぶどう", []string{"ぶどう", "ブドウ"}},
	{"キウイ", []string{"キウイ"}},
	{"レモン", []string{"レモン"}},
	{"オレンジ", []string{"オレンジ"}},
	{"マンゴー", []string{"マンゴー"}},
	{"スイカ", []string{"スイカ"}},

	{"ロイヤルブレッド", []string{"ロイヤルブレッド"}},
	{"プルーン", []string{"プルーン", "TVプルーン種ぬき"}},
	{"おにぎり", []string{"おにぎり", "0尺おにぎり"}},

	{"apple", []string{"apple"}},
	{"banana", []string{"banana"}},
	{"broccoli", []string{"broccoli"}},
	{"corn", []string{"corn"}},
	{"cucumber", []string{"cucumber"}},
	{"eggplant", []string{"eggplant"}},
	{"grape", []string{"grape"}},
	{"kiwi", []string{"kiwi"}},
	{"lemon", []string{"lemon"}},
	{"lettuce", []string{"lettuce"}},
	{"mango", []string{"mango"}},
	{"orange", []string{"orange"}},
	{"watermelon", []string{"watermelon"}},
	{"milk", []string{"milk"}},
	{"egg", []string{"egg"}},
	{"meat", []string{"meat"}},
	{"fish", []string{"fish"}},
	{"miso", []string{"miso"}},
	{"tofu", []string{"tofu"}},
	{"tomato", []string{"tomato"}},
	{"carrot", []string{"carrot"}},
	{"onion", []string{"onion"}},
	{"cabbage", []string{"cabbage"}},
	{"bell_pepper", []string{"bell_pepper"}},
	{"leafy_green", []string{"leafy_green"}},
	{"mushroom", []string{"mushroom"}},
	{"bean_sprout", []string{"bean_sprout"}},
	{"beer", []string{"beer"}},
	{"cheese", []string{"cheese"}},
	{"natto", []string{"natto"}},
	{"yogurt", []string{"yogurt"}},
	{"bottle", []string{"bottle"}},

	{"meatballs", []string{"ミートボール"}},
	{"marinara sauce", []string{"マリナーラ"}},
	{"tomato soup", []string{"トマトスープ"}},
	{"chicken noodle soup", []string{"チキンヌードルスープ"}},
	{"french onion soup", []string{"フレンチオニオンスープ"}},
	{"ribs", []string{"リブ", "スペアリブ"}},
	{"pulled pork", []string{"プルドポーク"}},
	{"hamburger", []string{"ハンバーガー"}},
}
