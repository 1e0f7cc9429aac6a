package handler

import (
	"net/http"

	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GET /api/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	stats, err := h.dashboard.Stats(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
