package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fridge-inventory/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// HTTPDetector 呼叫外部 YOLO 推論服務
//
// 請求：POST {endpoint}/detect，multipart 欄位 image
// 回應：{"detections":[{"class_label":"milk","confidence":0.92,"bbox":[x1,y1,x2,y2]}]}
type HTTPDetector struct {
	client *resty.Client
}

// NewHTTPDetector 創建 HTTP 偵測客戶端；不重試
func NewHTTPDetector(endpoint string, timeout time.Duration) *HTTPDetector {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &HTTPDetector{client: client}
}

type httpDetection struct {
	ClassLabel string    `json:"class_label"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// Detect 上傳影像並取得偵測結果
func (d *HTTPDetector) Detect(ctx context.Context, img []byte) ([]Detection, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetFileReader("image", "image.jpg", bytes.NewReader(img)).
		Post("/detect")
	if err != nil {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("failed to call detector: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("detector returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var result struct {
		Detections []httpDetection `json:"detections"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("failed to parse detector response: %w", err))
	}

	out := make([]Detection, 0, len(result.Detections))
	for _, det := range result.Detections {
		if det.ClassLabel == "" {
			continue
		}
		var box BoundingBox
		if len(det.BBox) == 4 {
			box = BoundingBox{XMin: det.BBox[0], YMin: det.BBox[1], XMax: det.BBox[2], YMax: det.BBox[3]}
		}
		out = append(out, Detection{ClassLabel: det.ClassLabel, Confidence: det.Confidence, BBox: box})
	}
	return out, nil
}
