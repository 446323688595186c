package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"fridge-inventory/internal/pkg/common"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	maxDimension int
	baseDir      string
}

// NewService 創建新的圖片處理服務；maxDimension 為 0 時不縮放，
// baseDir 為空時停用本機路徑輸入
func NewService(maxSizeBytes int64, maxDimension int, baseDir string) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		maxDimension: maxDimension,
		baseDir:      baseDir,
	}
}

// ResolvePath 將輸入路徑限制在 baseDir 之下，相對路徑以 baseDir 為起點
func (s *Service) ResolvePath(path string) (string, error) {
	if s.baseDir == "" {
		return "", common.ErrInvalidRequest.WithMessage("未設定 image.base_dir，本機路徑輸入已停用")
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base dir: %w", err)
	}

	p := filepath.Clean(path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	if !within(base, p) {
		return "", common.ErrInvalidRequest.WithMessage("路徑超出允許的目錄")
	}

	// 符號連結解析後仍須位於 baseDir 內
	if real, err := filepath.EvalSymlinks(p); err == nil {
		realBase, berr := filepath.EvalSymlinks(base)
		if berr != nil {
			realBase = base
		}
		if !within(realBase, real) {
			return "", common.ErrInvalidRequest.WithMessage("路徑超出允許的目錄")
		}
		p = real
	}
	return p, nil
}

func within(base, p string) bool {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LoadFile 讀取 baseDir 內的本機圖片，檔案不存在時回傳 InputNotFound
func (s *Service) LoadFile(path string) ([]byte, error) {
	path, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, common.ErrInputNotFound.WithMessage(fmt.Sprintf("找不到輸入檔案: %s", path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.WithMessage(fmt.Sprintf("圖片大小超出限制 %d bytes", s.maxSizeBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// DecodeDataURL 解析 data:image/...;base64, 格式
func (s *Service) DecodeDataURL(imageData string) ([]byte, error) {
	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, common.ErrInvalidImageFormat.WithMessage("invalid image data format")
	}
	parts := strings.SplitN(imageData, ",", 2)
	if len(parts) != 2 {
		return nil, common.ErrInvalidImageFormat.WithMessage("invalid base64 data format")
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return decoded, nil
}

// Decode 檢查大小與格式並解碼
func (s *Service) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", common.ErrInvalidImageFormat.WithMessage("圖片內容為空")
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, "", common.ErrInvalidImageSize.WithMessage(fmt.Sprintf("圖片大小超出限制 %d bytes", s.maxSizeBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return nil, "", common.ErrInvalidImageFormat.WithMessage(fmt.Sprintf("unsupported image format: %s", format))
	}
	return img, format, nil
}

// ValidateImage 驗證圖片
func (s *Service) ValidateImage(data []byte) error {
	_, _, err := s.Decode(data)
	return err
}

// PrepareForDetection 縮放至最大邊長並轉為 JPEG
func (s *Service) PrepareForDetection(data []byte) ([]byte, error) {
	img, _, err := s.Decode(data)
	if err != nil {
		return nil, err
	}
	return encode(s.fit(img), imaging.JPEG)
}

// PreprocessReceipt 收據前處理：灰階、提高對比、銳化，輸出 PNG
func (s *Service) PreprocessReceipt(data []byte) ([]byte, error) {
	img, _, err := s.Decode(data)
	if err != nil {
		return nil, err
	}

	out := imaging.Grayscale(s.fit(img))
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.0)
	return encode(out, imaging.PNG)
}

func (s *Service) fit(img image.Image) image.Image {
	if s.maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= s.maxDimension && b.Dy() <= s.maxDimension {
		return img
	}
	return imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)
}

func encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
