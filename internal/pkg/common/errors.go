package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
	Raw     string `json:"raw,omitempty"`     // 無法解析的模型輸出
}

// NewErrorResponse 由 CustomError 組成響應；debug 時附上原始錯誤
func NewErrorResponse(ce *CustomError, debug bool) ErrorResponse {
	resp := ErrorResponse{Code: ce.Code, Message: ce.Message, Raw: ce.Raw}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	return resp
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
	Raw     string // 無法解析的原始內容（模型輸出等）
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比較，讓 errors.Is(err, ErrInputNotFound) 可用於包裝後的錯誤
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤為樣板附加原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Status: e.Status, Err: err, Raw: e.Raw}
}

// WithMessage 以預定義錯誤為樣板替換錯誤信息
func (e *CustomError) WithMessage(message string) *CustomError {
	return &CustomError{Code: e.Code, Message: message, Status: e.Status, Err: e.Err, Raw: e.Raw}
}

// WithRaw 附加原始內容供診斷
func (e *CustomError) WithRaw(raw string) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Status: e.Status, Err: e.Err, Raw: raw}
}

// AsCustomError 取出 CustomError；非自定義錯誤視為內部錯誤
func AsCustomError(err error) *CustomError {
	if err == nil {
		return nil
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeConflict        = "CONFLICT"          // 409
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	// 庫存業務
	ErrCodeInputNotFound           = "INPUT_NOT_FOUND"
	ErrCodeDetectorUnavailable     = "DETECTOR_UNAVAILABLE"
	ErrCodeUnparsableModelOutput   = "UNPARSABLE_MODEL_OUTPUT"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeRecordNotFound          = "RECORD_NOT_FOUND"
	ErrCodeUnknownField            = "UNKNOWN_FIELD"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrConflict        = NewError(ErrCodeConflict, "資源衝突", http.StatusConflict, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	// 業務錯誤
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "無效的圖片格式", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "圖片大小超出限制", http.StatusBadRequest, nil)
	ErrCacheFull          = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheMiss          = NewError("CACHE_MISS", "快取未命中", http.StatusNotFound, nil)
	ErrAIServiceError     = NewError("AI_SERVICE_ERROR", "AI 服務錯誤", http.StatusServiceUnavailable, nil)
	ErrAIRateLimited      = NewError("AI_RATE_LIMITED", "AI 請求頻率過高", http.StatusTooManyRequests, nil)

	ErrInputNotFound           = NewError(ErrCodeInputNotFound, "找不到輸入檔案", http.StatusNotFound, nil)
	ErrDetectorUnavailable     = NewError(ErrCodeDetectorUnavailable, "偵測服務無法使用", http.StatusServiceUnavailable, nil)
	ErrUnparsableModelOutput   = NewError(ErrCodeUnparsableModelOutput, "無法解析模型輸出", http.StatusBadGateway, nil)
	ErrInvalidStatusTransition = NewError(ErrCodeInvalidStatusTransition, "不允許的狀態變更", http.StatusConflict, nil)
	ErrRecordNotFound          = NewError(ErrCodeRecordNotFound, "庫存紀錄不存在", http.StatusNotFound, nil)
	ErrUnknownField            = NewError(ErrCodeUnknownField, "不可更新的欄位", http.StatusBadRequest, nil)
	ErrLockNotObtained         = NewError("LOCK_NOT_OBTAINED", "另一個對帳作業進行中", http.StatusConflict, nil)
)
