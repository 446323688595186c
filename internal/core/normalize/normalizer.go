package normalize

import (
	"strings"

	"fridge-inventory/internal/core/catalog"
)

// Normalizer 將偵測器標籤收斂為標準類別
type Normalizer struct {
	catalog *catalog.Catalog
}

// NewNormalizer 創建類別正規化器
func NewNormalizer(c *catalog.Catalog) *Normalizer {
	return &Normalizer{catalog: c}
}

// Normalize 查表一次；未登錄的標籤原樣回傳
func (n *Normalizer) Normalize(label string) string {
	if n == nil || n.catalog == nil {
		return label
	}
	if v, ok := n.catalog.Consolidate(label); ok {
		return v
	}
	return label
}

// CanonicalLabel 將偵測服務回傳的名稱（如 "Bell pepper"）轉為小寫底線格式
func CanonicalLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(s), "_")
}
