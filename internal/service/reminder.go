package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"compliance-tracker/internal/mailer"
	"compliance-tracker/internal/model"

	"gorm.io/gorm"
)

// ReminderService runs the periodic reminder sweep: pending tasks due soon
// or overdue get a mail to the assignee with the owner on bcc. Delivery is
// best effort; one failed recipient never aborts the batch.
type ReminderService struct {
	db         *gorm.DB
	mail       mailer.Mailer
	windowDays int
}

func NewReminderService(db *gorm.DB, mail mailer.Mailer, windowDays int) *ReminderService {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &ReminderService{db: db, mail: mail, windowDays: windowDays}
}

type SweepResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
}

type SweepReport struct {
	Upcoming SweepResult `json:"upcoming"`
	Overdue  SweepResult `json:"overdue"`
	RanAt    time.Time   `json:"ran_at"`
}

type reminderRow struct {
	ID           int
	Title        string
	DueDate      string
	StaffEmail   string
	StaffName    string
	OwnerEmail   string
	BusinessName string
}

// RunAll performs both sweeps and reports counts.
func (s *ReminderService) RunAll(ctx context.Context) (SweepReport, error) {
	report := SweepReport{RanAt: time.Now()}

	upcoming, err := s.SendUpcomingReminders(ctx)
	if err != nil {
		return report, err
	}
	report.Upcoming = upcoming

	overdue, err := s.SendOverdueNotifications(ctx)
	if err != nil {
		return report, err
	}
	report.Overdue = overdue
	return report, nil
}

// SendUpcomingReminders mails assignees of pending tasks due inside the
// reminder window.
func (s *ReminderService) SendUpcomingReminders(ctx context.Context) (SweepResult, error) {
	today := time.Now().Format(model.DateLayout)
	end := time.Now().AddDate(0, 0, s.windowDays).Format(model.DateLayout)

	rows, err := s.query(ctx, "t.due_date BETWEEN ? AND ?", today, end)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{}
	for _, row := range rows {
		result.Attempted++
		msg := mailer.Message{
			To:      row.StaffEmail,
			BCC:     row.OwnerEmail,
			Subject: fmt.Sprintf("Upcoming compliance task: %q", row.Title),
			Text: fmt.Sprintf(
				"Hello %s,\n\nThis is a reminder about your upcoming compliance task:\n\nTask: %s\nDue Date: %s\nDue In: %d day(s)\nBusiness: %s\n\nPlease complete this task before the due date.",
				row.StaffName, row.Title, row.DueDate, daysUntil(row.DueDate), row.BusinessName),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			slog.Warn("reminder send failed", "task_id", row.ID, "to", row.StaffEmail, "err", err)
			continue
		}
		result.Sent++
	}
	slog.Info("upcoming reminder sweep done", "attempted", result.Attempted, "sent", result.Sent)
	return result, nil
}

// SendOverdueNotifications mails assignees of pending tasks past due.
func (s *ReminderService) SendOverdueNotifications(ctx context.Context) (SweepResult, error) {
	today := time.Now().Format(model.DateLayout)

	rows, err := s.query(ctx, "t.due_date < ?", today)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{}
	for _, row := range rows {
		result.Attempted++
		msg := mailer.Message{
			To:      row.StaffEmail,
			BCC:     row.OwnerEmail,
			Subject: fmt.Sprintf("OVERDUE compliance task: %q", row.Title),
			Text: fmt.Sprintf(
				"URGENT: this compliance task is overdue.\n\nTask: %s\nDue Date: %s\nOverdue By: %d day(s)\nBusiness: %s\n\nPlease complete this task immediately.",
				row.Title, row.DueDate, -daysUntil(row.DueDate), row.BusinessName),
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			slog.Warn("overdue notification send failed", "task_id", row.ID, "to", row.StaffEmail, "err", err)
			continue
		}
		result.Sent++
	}
	slog.Info("overdue notification sweep done", "attempted", result.Attempted, "sent", result.Sent)
	return result, nil
}

func (s *ReminderService) query(ctx context.Context, dueCond string, args ...interface{}) ([]reminderRow, error) {
	var rows []reminderRow
	err := s.db.WithContext(ctx).
		Table("compliance_tasks t").
		Select("t.id, t.title, t.due_date, u.email AS staff_email, u.name AS staff_name, o.email AS owner_email, b.name AS business_name").
		Joins("JOIN users u ON u.id = t.assigned_to").
		Joins("JOIN businesses b ON b.id = t.business_id").
		Joins("JOIN users o ON o.id = b.owner_id").
		Where("t.status = ?", model.StatusPending).
		Where(dueCond, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query reminder tasks: %w", err)
	}
	return rows, nil
}

func daysUntil(dueDate string) int {
	due, err := time.Parse(model.DateLayout, dueDate)
	if err != nil {
		return 0
	}
	now := time.Now().Truncate(24 * time.Hour)
	return int(due.Sub(now).Hours() / 24)
}
