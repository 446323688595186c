package catalog

import "sort"

// UnknownClass 無法對應到任何視覺類別時使用的標記
const UnknownClass = "unknown"

// Keyword 收據關鍵字定義：一個標準名稱對應多個表記
type Keyword struct {
	StandardName string
	Variants     []string
}

// Catalog 食材對照表（建立後不可變更）
type Catalog struct {
	consolidation   map[string]string
	aliases         map[string][]string
	standardToClass map[string]string
	targets         map[string]struct{}
	keywords        []Keyword
}

// Tables 建立 Catalog 所需的原始資料
type Tables struct {
	Consolidation   map[string]string
	Aliases         map[string][]string
	StandardToClass map[string]string
	TargetClasses   []string
	Keywords        []Keyword
}

// New 以複本建立 Catalog，呼叫端之後修改 Tables 不影響結果
func New(t Tables) *Catalog {
	c := &Catalog{
		consolidation:   make(map[string]string, len(t.Consolidation)),
		aliases:         make(map[string][]string, len(t.Aliases)),
		standardToClass: make(map[string]string, len(t.StandardToClass)),
		targets:         make(map[string]struct{}, len(t.TargetClasses)),
		keywords:        make([]Keyword, 0, len(t.Keywords)),
	}
	for k, v := range t.Consolidation {
		c.consolidation[k] = v
	}
	for k, v := range t.Aliases {
		c.aliases[k] = append([]string(nil), v...)
	}
	for k, v := range t.StandardToClass {
		c.standardToClass[k] = v
	}
	for _, cls := range t.TargetClasses {
		c.targets[cls] = struct{}{}
	}
	for _, kw := range t.Keywords {
		c.keywords = append(c.keywords, Keyword{
			StandardName: kw.StandardName,
			Variants:     append([]string(nil), kw.Variants...),
		})
	}
	return c
}

// Default 回傳內建對照表
func Default() *Catalog {
	return New(Tables{
		Consolidation:   defaultConsolidation,
		Aliases:         defaultAliases,
		StandardToClass: defaultStandardToClass,
		TargetClasses:   defaultTargetClasses,
		Keywords:        defaultKeywords,
	})
}

// Consolidate 查詢偵測標籤的合併目標
func (c *Catalog) Consolidate(label string) (string, bool) {
	v, ok := c.consolidation[label]
	return v, ok
}

// ClassFor 由標準名稱查詢對應的視覺類別
func (c *Catalog) ClassFor(standardName string) (string, bool) {
	v, ok := c.standardToClass[standardName]
	return v, ok
}

// Aliases 回傳類別的別名類別
func (c *Catalog) Aliases(class string) []string {
	return append([]string(nil), c.aliases[class]...)
}

// CandidateClasses 回傳標準名稱可比對的類別集合（對應類別加上其別名，已去重）
func (c *Catalog) CandidateClasses(standardName string) []string {
	class, ok := c.standardToClass[standardName]
	if !ok {
		class = UnknownClass
	}
	out := []string{class}
	seen := map[string]struct{}{class: {}}
	for _, a := range c.aliases[class] {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// IsTarget 判斷類別是否為追蹤對象；未設定目標時全部視為追蹤對象
func (c *Catalog) IsTarget(class string) bool {
	if len(c.targets) == 0 {
		return true
	}
	_, ok := c.targets[class]
	return ok
}

// TargetClasses 回傳排序後的追蹤類別
func (c *Catalog) TargetClasses() []string {
	out := make([]string, 0, len(c.targets))
	for cls := range c.targets {
		out = append(out, cls)
	}
	sort.Strings(out)
	return out
}

// Keywords 回傳關鍵字表複本，順序與定義一致
func (c *Catalog) Keywords() []Keyword {
	out := make([]Keyword, len(c.keywords))
	for i, kw := range c.keywords {
		out[i] = Keyword{StandardName: kw.StandardName, Variants: append([]string(nil), kw.Variants...)}
	}
	return out
}

// WithTargets 回傳以指定追蹤類別取代的複本；classes 為空時沿用原設定
func (c *Catalog) WithTargets(classes []string) *Catalog {
	if len(classes) == 0 {
		return c
	}
	cp := New(Tables{
		Consolidation:   c.consolidation,
		Aliases:         c.aliases,
		StandardToClass: c.standardToClass,
		TargetClasses:   classes,
		Keywords:        c.keywords,
	})
	return cp
}
