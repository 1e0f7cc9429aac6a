package service

import (
	"context"
	"testing"
	"time"

	"compliance-tracker/internal/model"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	owner, staff, biz := seedTenant(t, db, "alpha")
	svc := NewDashboardService(db)
	ctx := context.Background()

	due := func(days int) string { return time.Now().AddDate(0, 0, days).Format(model.DateLayout) }
	seed := func(dueDate, status string) model.Task {
		task := model.Task{
			BusinessID: biz.ID, AssignedTo: &staff.ID, CreatedBy: owner.ID,
			Title: "Seeded", Category: "general", DueDate: dueDate,
			Status: status, Recurrence: model.RecurrenceNone,
		}
		if err := db.Create(&task).Error; err != nil {
			t.Fatalf("seed task: %v", err)
		}
		return task
	}

	seed(due(3), model.StatusPending)
	seed(due(-2), model.StatusPending) // overdue
	seed(due(10), model.StatusInProgress)
	seed(due(1), model.StatusCompleted)

	// One past rollover completion on an already rolled-over task.
	next := due(30)
	rolled := seed(next, model.StatusPending)
	entry := model.TaskHistory{
		TaskID: rolled.ID, CompletedBy: &staff.ID,
		PreviousDueDate: due(0), NextDueDate: &next,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed history: %v", err)
	}

	t.Run("owner stats", func(t *testing.T) {
		stats, err := svc.Stats(ctx, ownerPrincipal(owner, biz))
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalTasks != 6 { // 5 rows + 1 history completion
			t.Errorf("total = %d, want 6", stats.TotalTasks)
		}
		if stats.Pending != 3 {
			t.Errorf("pending = %d, want 3", stats.Pending)
		}
		if stats.Completed != 2 { // current completed + rollover completion
			t.Errorf("completed = %d, want 2", stats.Completed)
		}
		if stats.Overdue != 1 {
			t.Errorf("overdue = %d, want 1", stats.Overdue)
		}
		if stats.StaffCount != 1 {
			t.Errorf("staff count = %d, want 1", stats.StaffCount)
		}
		if stats.CompletionRate <= 0 {
			t.Errorf("completion rate = %v, want > 0", stats.CompletionRate)
		}
	})

	t.Run("staff stats scoped to assignee", func(t *testing.T) {
		other := model.User{Name: "Other", Email: "other@example.com", Role: model.RoleStaff, BusinessID: &biz.ID}
		if err := db.Create(&other).Error; err != nil {
			t.Fatalf("seed other staff: %v", err)
		}
		stats, err := svc.Stats(ctx, staffPrincipal(other, biz))
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalTasks != 0 {
			t.Errorf("total for unassigned staff = %d, want 0", stats.TotalTasks)
		}
	})

	t.Run("staff next due date", func(t *testing.T) {
		stats, err := svc.Stats(ctx, staffPrincipal(staff, biz))
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.NextDueDate == nil || *stats.NextDueDate != due(-2) {
			t.Errorf("next due = %v, want earliest open %s", stats.NextDueDate, due(-2))
		}
	})
}
