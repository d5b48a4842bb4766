package dto

import "github.com/noah-isme/city-intranet-api/internal/models"

// TaskSummary counts the tasks assigned to a user. Cancelled tasks only
// contribute to Total.
type TaskSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// DashboardData is the composed landing view of a user.
type DashboardData struct {
	User            *models.User          `json:"user"`
	Announcements   []models.Announcement `json:"announcements"`
	PendingTasks    []models.Task         `json:"pending_tasks"`
	RecentDocuments []models.Document     `json:"recent_documents"`
	TaskSummary     TaskSummary           `json:"task_summary"`
}

// QuickStats are scalar counters shown next to the dashboard.
type QuickStats struct {
	TotalTasks          int `json:"totalTasks"`
	PendingTasks        int `json:"pendingTasks"`
	OverdueFiles        int `json:"overdueFiles"`
	UrgentAnnouncements int `json:"urgentAnnouncements"`
}
