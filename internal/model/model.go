package model

import "time"

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	BusinessName string `json:"business_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  Principal `json:"user"`
}

// Principal is the authenticated identity attached by the JWT middleware.
type Principal struct {
	UserID     int    `json:"id"`
	BusinessID int    `json:"business_id"`
	Role       string `json:"role"`
}

func (p Principal) IsOwner() bool { return p.Role == RoleOwner }

type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Category    string `json:"category" binding:"required,min=2,max=50"`
	DueDate     string `json:"due_date" binding:"required,datetime=2006-01-02"`
	Recurrence  string `json:"recurrence" binding:"omitempty,oneof=none daily weekly monthly quarterly yearly"`
	AssignedTo  int    `json:"assigned_to" binding:"required,min=1"`
}

// UpdateTaskRequest is the raw PUT body. Every field is optional; the guard
// narrows it to an owner or staff patch before the engine sees it.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Category    *string    `json:"category" binding:"omitempty,min=2,max=50"`
	DueDate     *string    `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Recurrence  *string    `json:"recurrence" binding:"omitempty,oneof=none daily weekly monthly quarterly yearly"`
	AssignedTo  *int       `json:"assigned_to" binding:"omitempty,min=1"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskFilter narrows a task listing. AssignedTo is set by owners explicitly
// or pinned to the caller for staff.
type TaskFilter struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	AssignedTo int    `form:"assigned_to" binding:"omitempty,min=1"`
	Overdue    bool   `form:"overdue"`
}
