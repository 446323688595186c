package inventory

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"fridge-inventory/internal/api/handlers"
	"fridge-inventory/internal/core/fridge"
	inv "fridge-inventory/internal/core/inventory"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CreateRequest 手動新增
type CreateRequest struct {
	StandardName   string           `json:"standard_name" binding:"required"`
	DetectionClass string           `json:"detection_class"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *string          `json:"unit"`
	PurchaseDate   *string          `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate     *string          `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	Notes          *string          `json:"notes"`
}

// UpdateRequest 手動修改，省略的欄位不變更
type UpdateRequest struct {
	StandardName   *string `json:"standard_name" binding:"omitempty,min=1"`
	DetectionClass *string `json:"detection_class"`
	Unit           *string `json:"unit"`
	PurchaseDate   *string `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate     *string `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	Notes          *string `json:"notes"`
	LastSeenDate   *string `json:"last_seen_date" binding:"omitempty,datetime=2006-01-02"`
}

// StatusRequest 狀態變更
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler 庫存處理器
type Handler struct {
	fridge *fridge.Service
	now    func() time.Time
}

// NewHandler 創建庫存處理器
func NewHandler(f *fridge.Service) *Handler {
	return &Handler{fridge: f, now: time.Now}
}

// HandleList GET /inventory?status=
func (h *Handler) HandleList(c *gin.Context) {
	records, err := h.fridge.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}

// HandleExport GET /inventory/export?status=
func (h *Handler) HandleExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.fridge.ExportXLSX(c.Request.Context(), c.Query("status"), &buf); err != nil {
		handlers.RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("inventory-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// HandleCreate POST /inventory
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CreateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err)
		return
	}

	in := fridge.ManualInput{
		StandardName:   req.StandardName,
		DetectionClass: req.DetectionClass,
		Unit:           req.Unit,
		PurchaseDate:   req.PurchaseDate,
		ExpiryDate:     req.ExpiryDate,
		Notes:          req.Notes,
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}

	rec, err := h.fridge.CreateManual(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// HandleGet GET /inventory/:id
func (h *Handler) HandleGet(c *gin.Context) {
	rec, err := h.fridge.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleUpdate PATCH /inventory/:id
func (h *Handler) HandleUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err)
		return
	}

	rec, err := h.fridge.UpdateDetails(c.Request.Context(), c.Param("id"), fridge.DetailsInput{
		StandardName:   req.StandardName,
		DetectionClass: req.DetectionClass,
		Unit:           req.Unit,
		PurchaseDate:   req.PurchaseDate,
		ExpiryDate:     req.ExpiryDate,
		Notes:          req.Notes,
		LastSeenDate:   req.LastSeenDate,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleStatus POST /inventory/:id/status
func (h *Handler) HandleStatus(c *gin.Context) {
	var req StatusRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.fridge.MarkStatus(c.Request.Context(), id, inv.Status(req.Status)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// HandleDelete DELETE /inventory/:id
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.fridge.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
