package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
)

type ItemHandler struct {
	svc *services.ItemService
}

func NewItemHandler(svc *services.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type createItemRequest struct {
	Name        string `json:"name" binding:"required" example:"Drink water"`
	Description string `json:"description"`
	Color       string `json:"color" example:"#3366FF"`
	Icon        string `json:"icon"`
	Type        string `json:"type" example:"numeric"`
	Unit        string `json:"unit" example:"glasses"`
	GoalPerDay  *int   `json:"goal_per_day" example:"8"`
}

type updateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Type        string `json:"type"`
	Unit        string `json:"unit"`
	GoalPerDay  *int   `json:"goal_per_day"`
	Version     int    `json:"version" binding:"required"`
}

type positionRequest struct {
	SortOrder *int `json:"sort_order" binding:"required"`
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:id", h.Get)
		items.PUT("/:id", h.Update)
		items.PUT("/:id/position", h.Reorder)
		items.POST("/:id/archive", h.Archive)
		items.POST("/:id/restore", h.Restore)
		items.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Create a tracked item
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createItemRequest  true  "Item"
// @Success      201   {object}  domain.TrackedItem
// @Failure      400   {object}  errorResponse
// @Router       /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.svc.Create(c.Request.Context(), services.CreateItemInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Type:        req.Type,
		Unit:        req.Unit,
		GoalPerDay:  req.GoalPerDay,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// List godoc
// @Summary      List tracked items
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        include_archived  query     bool  false  "Include archived items"
// @Success      200               {array}   domain.TrackedItem
// @Router       /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	includeArchived := false
	if raw := c.Query("include_archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "include_archived must be a boolean"})
			return
		}
		includeArchived = v
	}

	items, err := h.svc.List(c.Request.Context(), userID, includeArchived)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) Get(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	item, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Update godoc
// @Summary      Edit a tracked item
// @Description  Empty fields keep their stored value. A stale version yields 409.
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Item ID"
// @Param        body  body      updateItemRequest  true  "Changes"
// @Success      200   {object}  domain.TrackedItem
// @Failure      409   {object}  errorResponse
// @Router       /items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.svc.Update(c.Request.Context(), services.UpdateItemInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Type:        req.Type,
		Unit:        req.Unit,
		GoalPerDay:  req.GoalPerDay,
		Version:     req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Reorder(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.svc.Reorder(c.Request.Context(), c.Param("id"), userID, *req.SortOrder)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Archive godoc
// @Summary      Archive a tracked item
// @Description  The item stops counting from today on; earlier days keep it.
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  domain.TrackedItem
// @Router       /items/{id}/archive [post]
func (h *ItemHandler) Archive(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	item, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Restore(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	item, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete godoc
// @Summary      Delete a tracked item and all its records
// @Tags         items
// @Security     BearerAuth
// @Param        id   path  string  true  "Item ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
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
