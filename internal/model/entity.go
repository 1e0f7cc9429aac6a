package model

import "time"

// Role values carried in JWT claims.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// Task status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Recurrence values. Input validation accepts all of them; only monthly and
// yearly have rollover semantics.
const (
	RecurrenceNone      = "none"
	RecurrenceDaily     = "daily"
	RecurrenceWeekly    = "weekly"
	RecurrenceMonthly   = "monthly"
	RecurrenceQuarterly = "quarterly"
	RecurrenceYearly    = "yearly"
)

// DateLayout is the wire and storage format for due dates. Dates are kept as
// plain calendar strings so they compare correctly as text in both MySQL and
// SQLite.
const DateLayout = "2006-01-02"

type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Nil only transiently while an owner registration is in flight.
	BusinessID *int      `gorm:"index" json:"business_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Business struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	OwnerID   int       `gorm:"uniqueIndex" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a compliance task scoped to one business. BusinessID never changes
// after creation. A completed recurring task keeps its row: the rollover
// rewrites due_date and resets status instead of inserting a new task.
type Task struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	BusinessID  int        `gorm:"index" json:"business_id"`
	AssignedTo  *int       `gorm:"index" json:"assigned_to"`
	CreatedBy   int        `json:"created_by"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     string     `gorm:"type:date" json:"due_date"`
	Status      string     `gorm:"default:pending" json:"status"`
	Recurrence  string     `gorm:"default:none" json:"recurrence"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskHistory is one completion event of a recurring task. Rows are append
// only; NextDueDate is what the task's due date was advanced to.
type TaskHistory struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	TaskID          int       `gorm:"index" json:"task_id"`
	CompletedBy     *int      `json:"completed_by"`
	PreviousDueDate string    `gorm:"type:date" json:"previous_due_date"`
	NextDueDate     *string   `gorm:"type:date" json:"next_due_date"`
	CreatedAt       time.Time `json:"created_at"`
}

type Document struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	BusinessID int       `gorm:"index" json:"business_id"`
	TaskID     *int      `gorm:"index" json:"task_id"`
	UploadedBy int       `json:"uploaded_by"`
	FileName   string    `json:"file_name"`
	StoredPath string    `json:"-"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

func (User) TableName() string        { return "users" }
func (Business) TableName() string    { return "businesses" }
func (Task) TableName() string        { return "compliance_tasks" }
func (TaskHistory) TableName() string { return "task_history" }
func (Document) TableName() string    { return "documents" }
