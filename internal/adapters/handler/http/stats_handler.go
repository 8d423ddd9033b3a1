package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetReport)
}

// GetReport godoc
// @Summary      Usage statistics
// @Description  Aggregates over the same days the tracker grid shows. Undefined ratios are null.
// @Tags         stats
// @Security     BearerAuth
// @Produce      json
// @Param        window  query     int  false  "Minimum number of days"
// @Success      200     {object}  domain.Report
// @Failure      503     {object}  errorResponse
// @Router       /stats [get]
func (h *StatsHandler) GetReport(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		return
	}

	window, ok := windowParam(c)
	if !ok {
		return
	}

	report, err := h.svc.GetReport(c.Request.Context(), services.StatsInput{
		UserID: userID,
		Window: window,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
