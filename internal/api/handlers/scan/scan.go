package scan

import (
	"io"
	"net/http"
	"strings"

	"fridge-inventory/internal/api/handlers"
	"fridge-inventory/internal/core/detect"
	"fridge-inventory/internal/core/fridge"
	"fridge-inventory/internal/core/image"
	"fridge-inventory/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageRequest JSON 形式的圖片輸入：本機路徑或 data URL 擇一
type ImageRequest struct {
	Path  string `json:"path" binding:"required_without=Image"`
	Image string `json:"image" binding:"required_without=Path"`
}

// TextLine 已辨識的收據文字行
type TextLine struct {
	Text       string  `json:"text" binding:"required"`
	Confidence float64 `json:"confidence" binding:"gte=0,lte=1"`
}

// ReceiptTextRequest 直接提交文字行
type ReceiptTextRequest struct {
	Lines []TextLine `json:"lines" binding:"required,min=1,dive"`
}

// Handler 掃描處理器
type Handler struct {
	fridge *fridge.Service
	images *image.Service
}

// NewHandler 創建掃描處理器
func NewHandler(f *fridge.Service, images *image.Service) *Handler {
	return &Handler{fridge: f, images: images}
}

// imageInput 讀取 multipart 的 image 欄位，或 JSON 的 path / image
func (h *Handler) imageInput(c *gin.Context) (data []byte, path string, err error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, "", common.ErrInvalidRequest.WithMessage("缺少 image 欄位")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", common.ErrInvalidRequest.Wrap(err)
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		if err != nil {
			return nil, "", common.ErrInvalidRequest.Wrap(err)
		}
		return data, "", nil
	}

	var req ImageRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return nil, "", err
	}
	if req.Path != "" {
		return nil, req.Path, nil
	}
	data, err = h.images.DecodeDataURL(req.Image)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// HandleFridge 分析冰箱影像並更新庫存
func (h *Handler) HandleFridge(c *gin.Context) {
	requestID := handlers.RequestID(c)
	data, path, err := h.imageInput(c)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("開始分析冰箱影像",
		zap.String("request_id", requestID),
		zap.Bool("from_path", path != ""),
		zap.Int("image_size", len(data)),
	)

	var scan *fridge.FridgeScan
	if path != "" {
		scan, err = h.fridge.AnalyzeFridgeImageFile(c.Request.Context(), path)
	} else {
		scan, err = h.fridge.AnalyzeFridgeImage(c.Request.Context(), data)
	}
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

// HandleReceipt 辨識收據並更新庫存
func (h *Handler) HandleReceipt(c *gin.Context) {
	requestID := handlers.RequestID(c)
	data, path, err := h.imageInput(c)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("開始處理收據",
		zap.String("request_id", requestID),
		zap.Bool("from_path", path != ""),
		zap.Int("image_size", len(data)),
	)

	var scan *fridge.ReceiptScan
	if path != "" {
		scan, err = h.fridge.ProcessReceiptImageFile(c.Request.Context(), path)
	} else {
		scan, err = h.fridge.ProcessReceiptImage(c.Request.Context(), data)
	}
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

// HandleReceiptText 以已辨識的文字行更新庫存
func (h *Handler) HandleReceiptText(c *gin.Context) {
	var req ReceiptTextRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err)
		return
	}

	lines := make([]detect.TextLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = detect.TextLine{Text: l.Text, Confidence: l.Confidence}
	}
	scan, err := h.fridge.ProcessReceiptText(c.Request.Context(), lines)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}
