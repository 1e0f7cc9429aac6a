package handler

import (
	"net/http"
	"strconv"

	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), p.BusinessID, p.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var filter model.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters"})
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), p, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}

	var req model.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Narrow the raw body to the caller's allowed field set. Disallowed
	// fields in a staff request are dropped, not rejected.
	var patch service.TaskPatch
	if p.IsOwner() {
		patch = service.OwnerPatch{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			DueDate:     req.DueDate,
			Recurrence:  req.Recurrence,
			AssignedTo:  req.AssignedTo,
			Status:      req.Status,
			CompletedAt: req.CompletedAt,
		}
	} else {
		patch = service.StaffPatch{
			Status:      req.Status,
			CompletedAt: req.CompletedAt,
		}
	}

	task, err := h.tasks.Update(c.Request.Context(), p, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), p.BusinessID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/tasks/:id/history
func (h *TaskHandler) History(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}
	entries, err := h.tasks.History(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []model.TaskHistory{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "count": len(entries)})
}

func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
