package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
	"github.com/noah-isme/city-intranet-api/pkg/database"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
	"github.com/noah-isme/city-intranet-api/pkg/export"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, filter models.TaskFilter) (int, error)
	CountByStatus(ctx context.Context, assigneeID string) ([]models.TaskStatusCount, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TaskServiceConfig tunes task behaviour.
type TaskServiceConfig struct {
	// EnforceStatusPermission limits status changes to the assignee, the
	// assigner and the top-level role.
	EnforceStatusPermission bool
}

// TaskServiceParams groups constructor dependencies.
type TaskServiceParams struct {
	Repo      taskRepository
	Users     userFinder
	CSV       csvRenderer
	PDF       pdfRenderer
	Cache     cacheInvalidator
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    TaskServiceConfig
}

// TaskService handles assignments between users.
type TaskService struct {
	repo      taskRepository
	users     userFinder
	csv       csvRenderer
	pdf       pdfRenderer
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TaskServiceConfig
	now       func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(params TaskServiceParams) *TaskService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &TaskService{
		repo:      params.Repo,
		users:     params.Users,
		csv:       csv,
		pdf:       pdf,
		cache:     params.Cache,
		validator: withDomainValidations(params.Validator),
		logger:    logger,
		cfg:       params.Config,
		now:       time.Now,
	}
}

// Create assigns a new Pending task.
func (s *TaskService) Create(ctx context.Context, req dto.CreateTaskInput) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid task payload")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		AssignedBy:  req.AssignedBy,
		DueDate:     req.DueDate,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		Department:  req.Department,
		CreatedAt:   s.timestamp(),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		if database.IsForeignKeyViolation(err) || database.IsInvalidText(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code, appErrors.ErrConstraintViolation.Status, "Assignee or assigner does not exist")
		}
		return nil, appErrors.Internal(err, "failed to create task")
	}
	invalidateDashboards(ctx, s.cache, s.logger)
	return task, nil
}

// GetAssignedToUser returns the user's tasks by severity then due date.
func (s *TaskService) GetAssignedToUser(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	return s.list(ctx, models.TaskFilter{AssigneeID: userID, Order: models.TaskOrderPriority})
}

// GetCreatedByUser returns the tasks the user assigned, by severity then due date.
func (s *TaskService) GetCreatedByUser(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	return s.list(ctx, models.TaskFilter{AssignedBy: userID, Order: models.TaskOrderPriority})
}

// GetByStatus returns tasks in one status the user is assignee or assigner of.
func (s *TaskService) GetByStatus(ctx context.Context, req dto.TaskStatusInput) ([]models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status query")
	}
	return s.list(ctx, models.TaskFilter{
		InvolvedUserID: req.UserID,
		Statuses:       []models.TaskStatus{req.Status},
		Order:          models.TaskOrderNewest,
	})
}

// GetByDepartment returns department tasks the user is assignee or assigner of.
func (s *TaskService) GetByDepartment(ctx context.Context, req dto.TaskDepartmentInput) ([]models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department query")
	}
	return s.list(ctx, models.TaskFilter{
		InvolvedUserID: req.UserID,
		Department:     &req.Department,
		Order:          models.TaskOrderNewest,
	})
}

// GetOverdue returns active tasks assigned to the user whose due date has passed.
func (s *TaskService) GetOverdue(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	now := s.now().UTC()
	return s.list(ctx, models.TaskFilter{
		AssigneeID: userID,
		Statuses:   models.ActiveTaskStatuses,
		DueBefore:  &now,
		Order:      models.TaskOrderDueDate,
	})
}

// UpdateStatus moves a task to any status and refreshes updated_at.
func (s *TaskService) UpdateStatus(ctx context.Context, req dto.UpdateTaskStatusInput) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}

	existing, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Task not found")
		}
		return nil, appErrors.Internal(err, "failed to load task")
	}

	if s.cfg.EnforceStatusPermission {
		if err := s.authorizeStatusChange(ctx, existing, req.UserID); err != nil {
			return nil, err
		}
	}

	// updated_at must move forward even when the clock has not.
	updatedAt := s.timestamp()
	if !updatedAt.After(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}

	task, err := s.repo.UpdateStatus(ctx, req.ID, req.Status, updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Task not found")
		}
		return nil, appErrors.Internal(err, "failed to update task status")
	}
	invalidateDashboards(ctx, s.cache, s.logger)
	return task, nil
}

// Export renders the tasks assigned to a user as CSV or PDF.
func (s *TaskService) Export(ctx context.Context, req dto.TaskExportInput) (*dto.ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export request")
	}
	format := req.Format
	if format == "" {
		format = export.FormatCSV
	}

	tasks, err := s.GetAssignedToUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	dataset, err := taskDataset(tasks)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build task export")
	}

	var content []byte
	switch format {
	case export.FormatPDF:
		content, err = s.pdf.Render(dataset, "Assigned tasks")
	default:
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render task export")
	}

	return &dto.ExportFile{
		FileName:    fmt.Sprintf("tasks-%s.%s", s.now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

func (s *TaskService) authorizeStatusChange(ctx context.Context, task *models.Task, userID string) error {
	if task.InvolvesUser(userID) {
		return nil
	}
	if s.users != nil {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to load user")
		}
		if user != nil && user.Role == models.TopLevelRole {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions to update task")
}

func (s *TaskService) list(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list tasks")
	}
	return tasks, nil
}

// timestamp is truncated to the storage precision of TIMESTAMPTZ.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func taskDataset(tasks []models.Task) (export.Dataset, error) {
	dataset := export.NewDataset(
		export.Column{Label: "Title", Weight: 3},
		export.Column{Label: "Status"},
		export.Column{Label: "Priority"},
		export.Column{Label: "Due Date"},
		export.Column{Label: "Department", Weight: 1.5},
	)
	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.UTC().Format("2006-01-02")
		}
		dept := ""
		if task.Department != nil {
			dept = *task.Department
		}
		if err := dataset.Append(task.Title, string(task.Status), string(task.Priority), due, dept); err != nil {
			return export.Dataset{}, err
		}
	}
	return *dataset, nil
}
