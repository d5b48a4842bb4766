package models

import "time"

// TaskStatus is the lifecycle state of a task. Any status may follow any other.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// TaskStatuses lists every valid status.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled}

// ActiveTaskStatuses are the statuses that still require work.
var ActiveTaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Active reports whether the task still requires work.
func (s TaskStatus) Active() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// TaskPriority orders tasks by severity.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityUrgent TaskPriority = "Urgent"
)

// TaskPriorities lists priorities from least to most severe.
var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p.Rank() > 0
}

// Rank returns 1 (Low) through 4 (Urgent), or 0 for unknown values.
func (p TaskPriority) Rank() int {
	for i, priority := range TaskPriorities {
		if p == priority {
			return i + 1
		}
	}
	return 0
}

// Task is an assignment from one user to another.
type Task struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	AssigneeID  string       `db:"assignee_id" json:"assignee_id"`
	AssignedBy  string       `db:"assigned_by" json:"assigned_by"`
	DueDate     *time.Time   `db:"due_date" json:"due_date"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	Department  *string      `db:"department" json:"department"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Overdue reports whether an active task has passed its due date.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status.Active()
}

// InvolvesUser reports whether userID is the assignee or the assigner.
func (t *Task) InvolvesUser(userID string) bool {
	return t.AssigneeID == userID || t.AssignedBy == userID
}

// TaskStatusCount is one row of a per-status aggregate.
type TaskStatusCount struct {
	Status TaskStatus `db:"status"`
	Count  int        `db:"count"`
}

// TaskOrder selects the ordering of task listings.
type TaskOrder int

const (
	// TaskOrderPriority sorts by severity, then earliest due date.
	TaskOrderPriority TaskOrder = iota
	// TaskOrderNewest sorts by creation time, newest first.
	TaskOrderNewest
	// TaskOrderDueDate sorts by earliest due date.
	TaskOrderDueDate
)

// TaskFilter narrows task listings. InvolvedUserID matches the assignee or
// the assigner.
type TaskFilter struct {
	AssigneeID     string
	AssignedBy     string
	InvolvedUserID string
	Statuses       []TaskStatus
	Department     *string
	DueBefore      *time.Time
	Order          TaskOrder
	Limit          int
}
