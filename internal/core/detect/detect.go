package detect

import (
	"context"
	"fmt"

	"fridge-inventory/internal/pkg/common"
)

// BoundingBox 正規化座標（0~1）
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Detection 影像偵測結果
type Detection struct {
	ClassLabel string      `json:"class_label"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

// TextLine 文字辨識結果（一行）
type TextLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Detector 冰箱影像物件偵測
type Detector interface {
	Detect(ctx context.Context, img []byte) ([]Detection, error)
}

// TextRecognizer 收據文字辨識
type TextRecognizer interface {
	Recognize(ctx context.Context, img []byte) ([]TextLine, error)
}

// FilterDetections 保留信心值不低於門檻的偵測
func FilterDetections(dets []Detection, threshold float64) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= threshold {
			out = append(out, d)
		}
	}
	return out
}

// FilterLines 保留信心值不低於門檻的文字行
func FilterLines(lines []TextLine, minConfidence float64) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Confidence >= minConfidence && l.Text != "" {
			out = append(out, l.Text)
		}
	}
	return out
}

// Unavailable 未設定或初始化失敗的偵測服務，每次呼叫都回傳 DetectorUnavailable
type Unavailable struct {
	Reason string
}

func (u Unavailable) Detect(context.Context, []byte) ([]Detection, error) {
	return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("vision: %s", u.Reason))
}

func (u Unavailable) Recognize(context.Context, []byte) ([]TextLine, error) {
	return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("ocr: %s", u.Reason))
}
