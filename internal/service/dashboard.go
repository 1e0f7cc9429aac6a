package service

import (
	"context"
	"fmt"
	"time"

	"compliance-tracker/internal/model"

	"gorm.io/gorm"
)

// DashboardService serves the read-only stat aggregations behind the
// dashboard. Completed counts include past rollover completions from the
// history log, since a rolled-over task no longer reads as completed itself.
type DashboardService struct{ db *gorm.DB }

func NewDashboardService(db *gorm.DB) *DashboardService { return &DashboardService{db: db} }

type TaskStats struct {
	TotalTasks     int64   `json:"total_tasks"`
	Pending        int64   `json:"pending_tasks"`
	InProgress     int64   `json:"in_progress_tasks"`
	Completed      int64   `json:"completed_tasks"`
	Cancelled      int64   `json:"cancelled_tasks"`
	Overdue        int64   `json:"overdue_tasks"`
	DueThisWeek    int64   `json:"due_this_week"`
	StaffCount     int64   `json:"staff_count,omitempty"`
	CompletionRate float64 `json:"completion_rate"`
	NextDueDate    *string `json:"next_due_date,omitempty"`
}

func (s *DashboardService) Stats(ctx context.Context, p model.Principal) (*TaskStats, error) {
	scope := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.Task{}).Where("business_id = ?", p.BusinessID)
		if !p.IsOwner() {
			q = q.Where("assigned_to = ?", p.UserID)
		}
		return q
	}

	stats := &TaskStats{}
	if err := scope().Count(&stats.TotalTasks).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	byStatus := map[string]*int64{
		model.StatusPending:    &stats.Pending,
		model.StatusInProgress: &stats.InProgress,
		model.StatusCompleted:  &stats.Completed,
		model.StatusCancelled:  &stats.Cancelled,
	}
	for status, dst := range byStatus {
		if err := scope().Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, fmt.Errorf("count %s tasks: %w", status, err)
		}
	}

	today := time.Now().Format(model.DateLayout)
	weekEnd := time.Now().AddDate(0, 0, 7).Format(model.DateLayout)
	open := []string{model.StatusPending, model.StatusInProgress}

	if err := scope().Where("status IN ? AND due_date < ?", open, today).
		Count(&stats.Overdue).Error; err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}
	if err := scope().Where("due_date BETWEEN ? AND ?", today, weekEnd).
		Count(&stats.DueThisWeek).Error; err != nil {
		return nil, fmt.Errorf("count due this week: %w", err)
	}

	historyQ := s.db.WithContext(ctx).Model(&model.TaskHistory{}).
		Joins("JOIN compliance_tasks t ON t.id = task_history.task_id").
		Where("t.business_id = ?", p.BusinessID)
	if !p.IsOwner() {
		historyQ = historyQ.Where("t.assigned_to = ?", p.UserID)
	}
	var rolledOver int64
	if err := historyQ.Count(&rolledOver).Error; err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	stats.Completed += rolledOver
	stats.TotalTasks += rolledOver

	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.Completed) * 100 / float64(stats.TotalTasks)
	}

	if p.IsOwner() {
		err := s.db.WithContext(ctx).Model(&model.User{}).
			Where("business_id = ? AND role = ?", p.BusinessID, model.RoleStaff).
			Count(&stats.StaffCount).Error
		if err != nil {
			return nil, fmt.Errorf("count staff: %w", err)
		}
	} else {
		var next string
		err := scope().Where("status IN ?", open).
			Select("MIN(due_date)").Row().Scan(&next)
		if err == nil && next != "" {
			stats.NextDueDate = &next
		}
	}

	return stats, nil
}
