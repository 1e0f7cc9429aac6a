package service

import (
	"time"

	"compliance-tracker/internal/model"
)

// NextDueDate advances a due date by one recurrence period. It returns false
// for any recurrence without rollover semantics (none, daily, weekly,
// quarterly); completing such a task leaves it completed.
//
// Month arithmetic follows time.Time normalization: 2025-01-31 plus one
// month is 2025-03-03, not a clamped end-of-February.
func NextDueDate(current string, recurrence string) (string, bool) {
	date, err := time.Parse(model.DateLayout, current)
	if err != nil {
		return "", false
	}
	switch recurrence {
	case model.RecurrenceMonthly:
		return date.AddDate(0, 1, 0).Format(model.DateLayout), true
	case model.RecurrenceYearly:
		return date.AddDate(1, 0, 0).Format(model.DateLayout), true
	default:
		return "", false
	}
}
