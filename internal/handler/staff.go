package handler

import (
	"net/http"
	"strconv"

	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	staff *service.StaffService
}

func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// POST /api/staff
func (h *StaffHandler) Create(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	staff, err := h.staff.Create(c.Request.Context(), p.BusinessID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// GET /api/staff
func (h *StaffHandler) List(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	staff, err := h.staff.List(c.Request.Context(), p.BusinessID)
	if err != nil {
		respondError(c, err)
		return
	}
	if staff == nil {
		staff = []model.User{}
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff, "count": len(staff)})
}

// GET /api/staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	staff, err := h.staff.Get(c.Request.Context(), p.BusinessID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}
