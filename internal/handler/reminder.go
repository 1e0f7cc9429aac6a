package handler

import (
	"net/http"

	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminders *service.ReminderService
}

func NewReminderHandler(reminders *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// POST /api/reminders/run runs the sweep on demand.
func (h *ReminderHandler) Run(c *gin.Context) {
	report, err := h.reminders.RunAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
