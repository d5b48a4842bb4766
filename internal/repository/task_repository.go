package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/city-intranet-api/internal/models"
	"github.com/noah-isme/city-intranet-api/pkg/database"
)

const taskColumns = `id, title, description, assignee_id, assigned_by, due_date, status, priority, department, created_at, updated_at`

// task_priority is declared Low..Urgent so DESC yields the most severe first.
var taskOrderClauses = map[models.TaskOrder]string{
	models.TaskOrderPriority: "priority DESC, due_date ASC NULLS LAST, created_at DESC",
	models.TaskOrderNewest:   "created_at DESC",
	models.TaskOrderDueDate:  "due_date ASC NULLS LAST, created_at DESC",
}

// TaskRepository persists tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt

	const query = `INSERT INTO tasks (id, title, description, assignee_id, assigned_by, due_date, status, priority, department, created_at, updated_at)
VALUES (:id, :title, :description, :assignee_id, :assigned_by, :due_date, :status, :priority, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns a task by identifier.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// UpdateStatus sets the status and returns the updated row.
// sql.ErrNoRows is returned unwrapped when the task does not exist.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) (*models.Task, error) {
	query := `UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + taskColumns
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id, status, updatedAt); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return &task, nil
}

// List returns tasks matching the filter.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	where, args := taskConditions(filter)
	order, ok := taskOrderClauses[filter.Order]
	if !ok {
		order = taskOrderClauses[models.TaskOrderPriority]
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY ` + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		if database.IsInvalidText(err) {
			return []models.Task{}, nil
		}
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Count returns the number of tasks matching the filter. Order and Limit are ignored.
func (r *TaskRepository) Count(ctx context.Context, filter models.TaskFilter) (int, error) {
	where, args := taskConditions(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tasks`+where, args...); err != nil {
		if database.IsInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

// CountByStatus groups the tasks assigned to a user by status.
func (r *TaskRepository) CountByStatus(ctx context.Context, assigneeID string) ([]models.TaskStatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM tasks WHERE assignee_id = $1 GROUP BY status`
	counts := []models.TaskStatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query, assigneeID); err != nil {
		if database.IsInvalidText(err) {
			return []models.TaskStatusCount{}, nil
		}
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	return counts, nil
}

func taskConditions(filter models.TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if filter.AssignedBy != "" {
		args = append(args, filter.AssignedBy)
		conditions = append(conditions, fmt.Sprintf("assigned_by = $%d", len(args)))
	}
	if filter.InvolvedUserID != "" {
		args = append(args, filter.InvolvedUserID)
		conditions = append(conditions, fmt.Sprintf("(assignee_id = $%d OR assigned_by = $%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status::text = ANY($%d)", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		conditions = append(conditions, fmt.Sprintf("due_date < $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
