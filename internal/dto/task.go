package dto

import (
	"time"

	"github.com/noah-isme/city-intranet-api/internal/models"
	"github.com/noah-isme/city-intranet-api/pkg/export"
)

// CreateTaskInput describes a new assignment.
type CreateTaskInput struct {
	Title       string              `json:"title" validate:"required"`
	Description *string             `json:"description"`
	AssigneeID  string              `json:"assignee_id" validate:"required"`
	DueDate     *time.Time          `json:"due_date"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,taskpriority"`
	Department  *string             `json:"department"`
	AssignedBy  string              `json:"assignedBy" validate:"required"`
}

// UpdateTaskStatusInput moves a task to another status.
type UpdateTaskStatusInput struct {
	ID     string            `json:"id" validate:"required"`
	Status models.TaskStatus `json:"status" validate:"required,taskstatus"`
	UserID string            `json:"userId" validate:"required"`
}

// TaskStatusInput lists the tasks of a user in one status.
type TaskStatusInput struct {
	Status models.TaskStatus `json:"status" validate:"required,taskstatus"`
	UserID string            `json:"userId" validate:"required"`
}

// TaskDepartmentInput lists the tasks of a user in one department.
type TaskDepartmentInput struct {
	Department string `json:"department" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

// TaskExportInput requests a rendered list of the tasks assigned to a user.
type TaskExportInput struct {
	UserID string        `json:"userId" validate:"required"`
	Format export.Format `json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered export returned inline.
type ExportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}
