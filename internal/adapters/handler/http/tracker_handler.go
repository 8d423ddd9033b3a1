package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
)

// maxWindow caps the requested grid at ten years of days.
const maxWindow = 3660

type TrackerHandler struct {
	svc *services.TrackerService
}

func NewTrackerHandler(svc *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{svc: svc}
}

type toggleRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Day      string `json:"day" example:"2024-06-15"`
	Override bool   `json:"override"`
}

type destroyLastRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Day    string `json:"day" example:"2024-06-15"`
}

type submitDetailRequest struct {
	Detail json.RawMessage `json:"detail" binding:"required" swaggertype:"object"`
}

type cancelResponse struct {
	Status domain.CompletionStatus `json:"status"`
}

func (h *TrackerHandler) RegisterRoutes(router *gin.RouterGroup) {
	tracker := router.Group("/tracker")
	{
		tracker.GET("/days", h.Days)
		tracker.POST("/toggle", h.Toggle)
		tracker.POST("/destroy-last", h.DestroyLast)
		tracker.POST("/pending/:id", h.SubmitDetail)
		tracker.DELETE("/pending/:id", h.CancelDetail)
	}
}

// Days godoc
// @Summary      Tracker grid
// @Description  Every day from the earliest record (or today minus window) to the latest, with per-item status.
// @Tags         tracker
// @Security     BearerAuth
// @Produce      json
// @Param        window  query     int  false  "Minimum number of days"
// @Success      200     {object}  services.TrackerView
// @Router       /tracker/days [get]
func (h *TrackerHandler) Days(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	window, ok := windowParam(c)
	if !ok {
		return
	}

	view, err := h.svc.Days(c.Request.Context(), userID, window)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Toggle godoc
// @Summary      Tap a cell
// @Description  Adds a record when the cell is not complete, removes the single record when it is.
// @Description  Items requiring detail open a pending flow instead of writing.
// @Tags         tracker
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      toggleRequest  true  "Cell"
// @Success      200   {object}  toggle.Result
// @Success      202   {object}  toggle.Result
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tracker/toggle [post]
func (h *TrackerHandler) Toggle(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	day, err := optionalDay(req.Day)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Toggle(c.Request.Context(), userID, req.ItemID, day, req.Override)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if res.Pending != nil {
		status = http.StatusAccepted
	}
	c.JSON(status, res)
}

// DestroyLast godoc
// @Summary      Remove the newest record of a cell
// @Tags         tracker
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      destroyLastRequest  true  "Cell"
// @Success      200   {object}  toggle.Transition
// @Failure      404   {object}  errorResponse
// @Router       /tracker/destroy-last [post]
func (h *TrackerHandler) DestroyLast(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req destroyLastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	day, err := optionalDay(req.Day)
	if err != nil {
		badRequest(c, err)
		return
	}

	tr, err := h.svc.DestroyLast(c.Request.Context(), userID, req.ItemID, day)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tr)
}

// SubmitDetail godoc
// @Summary      Complete a pending detail flow
// @Tags         tracker
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Pending flow ID"
// @Param        body  body      submitDetailRequest  true  "Detail"
// @Success      201   {object}  domain.CompletionRecord
// @Failure      404   {object}  errorResponse
// @Router       /tracker/pending/{id} [post]
func (h *TrackerHandler) SubmitDetail(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req submitDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.svc.SubmitDetail(c.Request.Context(), userID, c.Param("id"), types.JSONText(req.Detail))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// CancelDetail godoc
// @Summary      Cancel a pending detail flow
// @Description  Returns the cell status after the optimistic count is rolled back.
// @Tags         tracker
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Pending flow ID"
// @Success      200  {object}  cancelResponse
// @Failure      404  {object}  errorResponse
// @Router       /tracker/pending/{id} [delete]
func (h *TrackerHandler) CancelDetail(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	status, err := h.svc.CancelDetail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelResponse{Status: status})
}

// windowParam reads ?window=N. Zero or absent falls back to the service
// minimum.
func windowParam(c *gin.Context) (int, bool) {
	raw := c.Query("window")
	if raw == "" {
		return 0, true
	}
	window, err := strconv.Atoi(raw)
	if err != nil || window < 0 || window > maxWindow {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error: "window must be an integer between 0 and " + strconv.Itoa(maxWindow),
		})
		return 0, false
	}
	return window, true
}
