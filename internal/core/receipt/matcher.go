package receipt

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"fridge-inventory/internal/core/catalog"

	"golang.org/x/text/width"
)

// Item 由收據行解析出的品項
type Item struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	RawLine  string `json:"raw_line"`
}

var (
	// 價格、折扣、百分比等非品項行：123、123.00、123円、¥230、-40、+20%
	priceLinePattern = regexp.MustCompile(`^(¥?\d+(\.\d+)?(円|※)?|[-+]\d+%?)$`)

	unitQtyPattern  = regexp.MustCompile(`(\d+)\s*([個袋本入組k])`)
	sizeQtyPattern  = regexp.MustCompile(`([lsm])?(\d+)[コ個]`)
	gramPattern     = regexp.MustCompile(`\d+g$`)
	leadingDigits   = regexp.MustCompile(`^(\d+)`)
	allDigits       = regexp.MustCompile(`^\d+$`)
	lineNoiseRemove = strings.NewReplacer(" ", "", "　", "", "※", "")
)

// Matcher 收據關鍵字比對器
type Matcher struct {
	index   map[string]string
	ordered []string
}

// NewMatcher 建立反向索引，關鍵字依長度由長到短排序（同長度依定義順序）
func NewMatcher(c *catalog.Catalog) *Matcher {
	m := &Matcher{index: make(map[string]string)}
	if c == nil {
		return m
	}
	for _, kw := range c.Keywords() {
		for _, variant := range kw.Variants {
			key := NormalizeLine(variant)
			if key == "" {
				continue
			}
			if _, exists := m.index[key]; exists {
				continue
			}
			m.index[key] = kw.StandardName
			m.ordered = append(m.ordered, key)
		}
	}
	sort.SliceStable(m.ordered, func(i, j int) bool {
		return utf8.RuneCountInString(m.ordered[i]) > utf8.RuneCountInString(m.ordered[j])
	})
	return m
}

// NormalizeLine 全形轉半形、轉小寫並移除空白與雜訊符號
func NormalizeLine(s string) string {
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	return lineNoiseRemove.Replace(s)
}

// Parse 逐行解析，無法比對的行直接略過
func (m *Matcher) Parse(lines []string) []Item {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		if item, ok := m.ParseLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// ParseLine 解析單行，每行最多產生一個品項
func (m *Matcher) ParseLine(line string) (Item, bool) {
	norm := NormalizeLine(line)
	if norm == "" || priceLinePattern.MatchString(norm) {
		return Item{}, false
	}

	name, ok := m.lookup(norm)
	if !ok || isNumericLiteral(name) {
		return Item{}, false
	}

	return Item{
		ItemName: name,
		Quantity: ExtractQuantity(norm),
		RawLine:  line,
	}, true
}

// lookup 最長關鍵字優先
func (m *Matcher) lookup(norm string) (string, bool) {
	for _, key := range m.ordered {
		if strings.Contains(norm, key) {
			return m.index[key], true
		}
	}
	return "", false
}

// ExtractQuantity 依序嘗試：數字+單位、尺寸+數字+個、克數結尾、行首數字；皆不符時為 1
func ExtractQuantity(norm string) int {
	if g := unitQtyPattern.FindStringSubmatch(norm); g != nil {
		return positiveOrOne(g[1])
	}
	if g := sizeQtyPattern.FindStringSubmatch(norm); g != nil {
		return positiveOrOne(g[2])
	}
	if gramPattern.MatchString(norm) {
		return 1
	}
	if g := leadingDigits.FindStringSubmatch(norm); g != nil {
		// 整行都是數字時多半是價格
		if allDigits.MatchString(norm) {
			return 1
		}
		return positiveOrOne(g[1])
	}
	return 1
}

func positiveOrOne(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// isNumericLiteral 排除與價格或折扣字面值相同的名稱
func isNumericLiteral(name string) bool {
	switch name {
	case "-40", "20%":
		return true
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 999 && strconv.Itoa(n) == name
}
