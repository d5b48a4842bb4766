package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
)

type taskService interface {
	Create(ctx context.Context, req dto.CreateTaskInput) (*models.Task, error)
	GetAssignedToUser(ctx context.Context, userID string) ([]models.Task, error)
	GetCreatedByUser(ctx context.Context, userID string) ([]models.Task, error)
	GetByStatus(ctx context.Context, req dto.TaskStatusInput) ([]models.Task, error)
	GetByDepartment(ctx context.Context, req dto.TaskDepartmentInput) ([]models.Task, error)
	GetOverdue(ctx context.Context, userID string) ([]models.Task, error)
	UpdateStatus(ctx context.Context, req dto.UpdateTaskStatusInput) (*models.Task, error)
	Export(ctx context.Context, req dto.TaskExportInput) (*dto.ExportFile, error)
}

// TaskHandler exposes the tasks.* procedures.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(svc taskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// Register implements Registrar.
func (h *TaskHandler) Register(r *RPCRouter) {
	r.Register("tasks.create", Procedure{Actor: "assignedBy", Call: h.create})
	r.Register("tasks.getAssignedToUser", Procedure{Actor: "userId", Call: h.byUser(h.service.GetAssignedToUser)})
	r.Register("tasks.getCreatedByUser", Procedure{Actor: "userId", Call: h.byUser(h.service.GetCreatedByUser)})
	r.Register("tasks.getByStatus", Procedure{Actor: "userId", Call: h.getByStatus})
	r.Register("tasks.getByDepartment", Procedure{Actor: "userId", Call: h.getByDepartment})
	r.Register("tasks.getOverdue", Procedure{Actor: "userId", Call: h.byUser(h.service.GetOverdue)})
	r.Register("tasks.updateStatus", Procedure{Actor: "userId", Call: h.updateStatus})
	r.Register("tasks.export", Procedure{Actor: "userId", Call: h.export})
}

func (h *TaskHandler) byUser(fn func(context.Context, string) ([]models.Task, error)) ProcedureFunc {
	return func(c *gin.Context, input json.RawMessage) (interface{}, error) {
		req, err := bind[dto.UserIDInput](input)
		if err != nil {
			return nil, err
		}
		return fn(c.Request.Context(), req.UserID)
	}
}

func (h *TaskHandler) create(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.CreateTaskInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Create(c.Request.Context(), req)
}

func (h *TaskHandler) getByStatus(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.TaskStatusInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByStatus(c.Request.Context(), req)
}

func (h *TaskHandler) getByDepartment(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.TaskDepartmentInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByDepartment(c.Request.Context(), req)
}

func (h *TaskHandler) updateStatus(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UpdateTaskStatusInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.UpdateStatus(c.Request.Context(), req)
}

// export returns the rendered file; content is base64 encoded in JSON.
func (h *TaskHandler) export(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.TaskExportInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Export(c.Request.Context(), req)
}
