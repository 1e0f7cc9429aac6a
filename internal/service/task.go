package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compliance-tracker/internal/apperr"
	"compliance-tracker/internal/model"

	"gorm.io/gorm"
)

// StaffDirectory resolves a staff member within a business. Returns nil with
// no error when no such staff user exists.
type StaffDirectory interface {
	Lookup(ctx context.Context, staffID, businessID int) (*model.User, error)
}

// TaskService is the task lifecycle engine. All reads and writes are scoped
// to the caller's business; cross-tenant rows are indistinguishable from
// missing ones.
type TaskService struct {
	db    *gorm.DB
	staff StaffDirectory
}

func NewTaskService(db *gorm.DB, staff StaffDirectory) *TaskService {
	return &TaskService{db: db, staff: staff}
}

// TaskPatch is a role-narrowed update. The handler layer picks the variant
// from the caller's role, so the engine never filters fields at runtime.
type TaskPatch interface{ isTaskPatch() }

// OwnerPatch may touch any mutable field.
type OwnerPatch struct {
	Title       *string
	Description *string
	Category    *string
	DueDate     *string
	Recurrence  *string
	AssignedTo  *int
	Status      *string
	CompletedAt *time.Time
}

// StaffPatch is limited to status and completion time.
type StaffPatch struct {
	Status      *string
	CompletedAt *time.Time
}

func (OwnerPatch) isTaskPatch() {}
func (StaffPatch) isTaskPatch() {}

func (s *TaskService) Create(ctx context.Context, businessID, creatorID int, req model.CreateTaskRequest) (*model.Task, error) {
	staff, err := s.staff.Lookup(ctx, req.AssignedTo, businessID)
	if err != nil {
		return nil, fmt.Errorf("lookup staff: %w", err)
	}
	if staff == nil {
		return nil, fmt.Errorf("%w: invalid staff assignment", apperr.ErrValidation)
	}

	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = model.RecurrenceNone
	}

	task := model.Task{
		BusinessID:  businessID,
		AssignedTo:  &req.AssignedTo,
		CreatedBy:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Status:      model.StatusPending,
		Recurrence:  recurrence,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// List returns business tasks ordered by due date ascending, then newest
// first. Staff see only their assigned tasks and cannot filter for others.
func (s *TaskService) List(ctx context.Context, p model.Principal, f model.TaskFilter) ([]model.Task, error) {
	assignedTo := f.AssignedTo
	if !p.IsOwner() {
		if f.AssignedTo != 0 && f.AssignedTo != p.UserID {
			return nil, fmt.Errorf("%w: staff can only view their own tasks", apperr.ErrForbidden)
		}
		assignedTo = p.UserID
	}

	q := s.db.WithContext(ctx).Where("business_id = ?", p.BusinessID)
	if assignedTo != 0 {
		q = q.Where("assigned_to = ?", assignedTo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Overdue {
		q = q.Where("status IN ? AND due_date < ?",
			[]string{model.StatusPending, model.StatusInProgress},
			time.Now().Format(model.DateLayout))
	}

	var tasks []model.Task
	if err := q.Order("due_date ASC, created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get resolves one task for the caller. A task in another business reads as
// not found; a same-business task not assigned to a staff caller is
// forbidden.
func (s *TaskService) Get(ctx context.Context, p model.Principal, taskID int) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", taskID, p.BusinessID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: task", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if !p.IsOwner() && (task.AssignedTo == nil || *task.AssignedTo != p.UserID) {
		return nil, fmt.Errorf("%w: task is not assigned to you", apperr.ErrForbidden)
	}
	return &task, nil
}

// Update applies a role-narrowed patch. A completion of a monthly or yearly
// task rolls the same row over: one history entry is appended and the row is
// rewritten with the next due date and pending status, atomically.
func (s *TaskService) Update(ctx context.Context, p model.Principal, taskID int, patch TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, p, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	switch pt := patch.(type) {
	case StaffPatch:
		if pt.Status != nil {
			if *pt.Status != model.StatusInProgress && *pt.Status != model.StatusCompleted {
				return nil, fmt.Errorf("%w: staff can only set status to in_progress or completed", apperr.ErrValidation)
			}
			updates["status"] = *pt.Status
		}
		if pt.CompletedAt != nil {
			updates["completed_at"] = *pt.CompletedAt
		}
	case OwnerPatch:
		if pt.AssignedTo != nil {
			if task.AssignedTo == nil || *pt.AssignedTo != *task.AssignedTo {
				staff, err := s.staff.Lookup(ctx, *pt.AssignedTo, p.BusinessID)
				if err != nil {
					return nil, fmt.Errorf("lookup staff: %w", err)
				}
				if staff == nil {
					return nil, fmt.Errorf("%w: invalid staff assignment", apperr.ErrValidation)
				}
			}
			updates["assigned_to"] = *pt.AssignedTo
		}
		setString(updates, "title", pt.Title)
		setString(updates, "description", pt.Description)
		setString(updates, "category", pt.Category)
		setString(updates, "due_date", pt.DueDate)
		setString(updates, "recurrence", pt.Recurrence)
		setString(updates, "status", pt.Status)
		if pt.CompletedAt != nil {
			updates["completed_at"] = *pt.CompletedAt
		}
	default:
		return nil, fmt.Errorf("%w: unsupported patch", apperr.ErrValidation)
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no valid fields to update", apperr.ErrValidation)
	}

	// Resulting state after the patch decides whether a rollover fires.
	status := task.Status
	if v, ok := updates["status"].(string); ok {
		status = v
	}
	recurrence := task.Recurrence
	if v, ok := updates["recurrence"].(string); ok {
		recurrence = v
	}
	dueDate := task.DueDate
	if v, ok := updates["due_date"].(string); ok {
		dueDate = v
	}
	assignedTo := task.AssignedTo
	if v, ok := updates["assigned_to"].(int); ok {
		assignedTo = &v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if status != model.StatusCompleted {
			return nil
		}
		next, ok := NextDueDate(dueDate, recurrence)
		if !ok {
			// Non-recurring (or unsupported recurrence): stays completed.
			return nil
		}

		entry := model.TaskHistory{
			TaskID:          task.ID,
			CompletedBy:     assignedTo,
			PreviousDueDate: dueDate,
			NextDueDate:     &next,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		rollover := map[string]interface{}{
			"due_date": next,
			"status":   model.StatusPending,
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(rollover).Error; err != nil {
			return fmt.Errorf("roll task over: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var updated model.Task
	if err := s.db.WithContext(ctx).First(&updated, task.ID).Error; err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return &updated, nil
}

// Delete hard-deletes a business task. Owner-only; the handler enforces the
// role before calling in.
func (s *TaskService) Delete(ctx context.Context, businessID, taskID int) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", taskID, businessID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task", apperr.ErrNotFound)
	}
	return nil
}

// History lists a task's completion log, newest first. Access rules are the
// same as Get.
func (s *TaskService) History(ctx context.Context, p model.Principal, taskID int) ([]model.TaskHistory, error) {
	task, err := s.Get(ctx, p, taskID)
	if err != nil {
		return nil, err
	}
	var entries []model.TaskHistory
	if err := s.db.WithContext(ctx).
		Where("task_id = ?", task.ID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func setString(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}
