package detect

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"fridge-inventory/internal/pkg/common"
)

// GCPVision 以 Google Cloud Vision 實作物件偵測與文字辨識
type GCPVision struct {
	client     *vision.ImageAnnotatorClient
	maxResults int32
}

// NewGCPVision 創建 Cloud Vision 客戶端，憑證取自環境變數
func NewGCPVision(ctx context.Context) (*GCPVision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("vision client: %w", err))
	}
	return &GCPVision{client: client, maxResults: 50}, nil
}

// ClientOptionsFromEnv GOOGLE_APPLICATION_CREDENTIALS_JSON 優先，其次為憑證檔路徑
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// Close 關閉客戶端
func (g *GCPVision) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GCPVision) annotate(ctx context.Context, img []byte, feature visionpb.Feature_Type) (*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{{Type: feature, MaxResults: g.maxResults}},
	}}}
	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("vision BatchAnnotateImages: %w", err))
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &visionpb.AnnotateImageResponse{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, common.ErrDetectorUnavailable.Wrap(fmt.Errorf("vision annotate error: %s", r0.Error.Message))
	}
	return r0, nil
}

// Detect 物件定位；標籤為 Cloud Vision 的原始名稱
func (g *GCPVision) Detect(ctx context.Context, img []byte) ([]Detection, error) {
	if len(img) == 0 {
		return nil, nil
	}
	r0, err := g.annotate(ctx, img, visionpb.Feature_OBJECT_LOCALIZATION)
	if err != nil {
		return nil, err
	}

	out := make([]Detection, 0, len(r0.LocalizedObjectAnnotations))
	for _, obj := range r0.LocalizedObjectAnnotations {
		if obj == nil || obj.Name == "" {
			continue
		}
		out = append(out, Detection{
			ClassLabel: obj.Name,
			Confidence: float64(obj.Score),
			BBox:       bboxFromVertices(obj.GetBoundingPoly().GetNormalizedVertices()),
		})
	}
	return out, nil
}

// Recognize 文件文字辨識，依換行切成多行，信心值取所屬段落
func (g *GCPVision) Recognize(ctx context.Context, img []byte) ([]TextLine, error) {
	if len(img) == 0 {
		return nil, nil
	}
	r0, err := g.annotate(ctx, img, visionpb.Feature_DOCUMENT_TEXT_DETECTION)
	if err != nil {
		return nil, err
	}

	var lines []TextLine
	for _, page := range r0.GetFullTextAnnotation().GetPages() {
		for _, block := range page.GetBlocks() {
			for _, para := range block.GetParagraphs() {
				lines = append(lines, paragraphLines(para)...)
			}
		}
	}
	return lines, nil
}

func paragraphLines(para *visionpb.Paragraph) []TextLine {
	conf := float64(para.GetConfidence())
	var (
		lines []TextLine
		sb    strings.Builder
	)
	flush := func() {
		if text := strings.TrimSpace(sb.String()); text != "" {
			lines = append(lines, TextLine{Text: text, Confidence: conf})
		}
		sb.Reset()
	}
	for _, word := range para.GetWords() {
		for _, sym := range word.GetSymbols() {
			sb.WriteString(sym.GetText())
			switch sym.GetProperty().GetDetectedBreak().GetType() {
			case visionpb.TextAnnotation_DetectedBreak_SPACE, visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
				sb.WriteString(" ")
			case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE, visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
				flush()
			}
		}
	}
	flush()
	return lines
}

func bboxFromVertices(vs []*visionpb.NormalizedVertex) BoundingBox {
	if len(vs) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{XMin: 1, YMin: 1}
	for _, v := range vs {
		x, y := float64(v.GetX()), float64(v.GetY())
		box.XMin = min(box.XMin, x)
		box.YMin = min(box.YMin, y)
		box.XMax = max(box.XMax, x)
		box.YMax = max(box.YMax, y)
	}
	return box
}
