package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		// 若讀到額外 token，視為錯誤
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

var codeFencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ExtractJSON 去除 markdown 程式碼區塊並截取最外層的 JSON 物件或陣列
func ExtractJSON(raw string) string {
	content := strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")
	closing := "}"
	start := objStart
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		closing = "]"
		start = arrStart
	}
	if start == -1 {
		return content
	}
	end := strings.LastIndex(content, closing)
	if end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}
