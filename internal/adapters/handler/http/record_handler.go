package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
)

type RecordHandler struct {
	svc *services.RecordService
}

func NewRecordHandler(svc *services.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

type createRecordRequest struct {
	ItemID      string          `json:"item_id" binding:"required"`
	CompletedAt *time.Time      `json:"completed_at" example:"2024-06-15T08:30:00Z"`
	Detail      json.RawMessage `json:"detail" swaggertype:"object"`
}

type updateRecordRequest struct {
	CompletedAt *time.Time      `json:"completed_at"`
	Detail      json.RawMessage `json:"detail" swaggertype:"object"`
}

func (h *RecordHandler) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/records")
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
		records.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Log a completion
// @Description  completed_at defaults to now and decides the record's day.
// @Tags         records
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createRecordRequest  true  "Record"
// @Success      201   {object}  domain.CompletionRecord
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	record, err := h.svc.Create(c.Request.Context(), services.CreateRecordInput{
		ItemID:      req.ItemID,
		UserID:      userID,
		CompletedAt: completedAt,
		Detail:      types.JSONText(req.Detail),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List godoc
// @Summary      List an item's records, newest first
// @Tags         records
// @Security     BearerAuth
// @Produce      json
// @Param        item_id  query     string  true   "Item ID"
// @Param        from     query     string  false  "First day (YYYY-MM-DD)"
// @Param        to       query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200      {array}   domain.CompletionRecord
// @Router       /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	itemID := c.Query("item_id")
	if itemID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "item_id is required"})
		return
	}

	from, err := optionalDay(c.Query("from"))
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := optionalDay(c.Query("to"))
	if err != nil {
		badRequest(c, err)
		return
	}

	records, err := h.svc.ListByItemID(c.Request.Context(), itemID, userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *RecordHandler) Get(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	record, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *RecordHandler) Update(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := services.UpdateRecordInput{
		ID:          c.Param("id"),
		UserID:      userID,
		CompletedAt: req.CompletedAt,
	}
	if req.Detail != nil {
		input.Detail = types.JSONText(req.Detail)
	}

	record, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete godoc
// @Summary      Delete a record
// @Tags         records
// @Security     BearerAuth
// @Param        id   path  string  true  "Record ID"
// @Success      204
// @Router       /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// optionalDay parses a YYYY-MM-DD query value; empty stays empty.
func optionalDay(raw string) (domain.DayKey, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseDayKey(raw)
}
