package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

// mockUserRepo is an in-memory user table.
type mockUserRepo struct {
	users   map[string]*models.User
	listErr error
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return &pq.Error{Code: "23505"}
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	users := []models.User{}
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Department != nil {
			if *filter.Department == "" && u.Department != nil {
				continue
			}
			if *filter.Department != "" && (u.Department == nil || *u.Department != *filter.Department) {
				continue
			}
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id string, active bool, updatedAt time.Time) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user.IsActive = active
	user.UpdatedAt = updatedAt
	copy := *user
	return &copy, nil
}

// mockDocumentRepo is an in-memory document table with an uploader foreign key.
type mockDocumentRepo struct {
	users *mockUserRepo
	docs  []models.Document
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if _, ok := m.users.users[doc.UploadedBy]; !ok {
		return &pq.Error{Code: "23503"}
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UpdatedAt = doc.CreatedAt
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *mockDocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			copy := m.docs[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	docs := []models.Document{}
	query := strings.ToLower(filter.Query)
	for _, d := range m.docs {
		if !d.VisibleTo(filter.ViewerID) {
			continue
		}
		if filter.Category != nil && d.Category != *filter.Category {
			continue
		}
		if filter.Department != nil && (d.Department == nil || *d.Department != *filter.Department) {
			continue
		}
		if query != "" {
			desc := ""
			if d.Description != nil {
				desc = strings.ToLower(*d.Description)
			}
			if !strings.Contains(strings.ToLower(d.Title), query) && !strings.Contains(desc, query) {
				continue
			}
		}
		docs = append(docs, d)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

// mockTaskRepo is an in-memory task table.
type mockTaskRepo struct {
	users   *mockUserRepo
	tasks   []models.Task
	filters []models.TaskFilter
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if _, ok := m.users.users[task.AssigneeID]; !ok {
		return &pq.Error{Code: "23503"}
	}
	if _, ok := m.users.users[task.AssignedBy]; !ok {
		return &pq.Error{Code: "23503"}
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.UpdatedAt = task.CreatedAt
	m.tasks = append(m.tasks, *task)
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			copy := m.tasks[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) (*models.Task, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Status = status
			m.tasks[i].UpdatedAt = updatedAt
			copy := m.tasks[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) match(filter models.TaskFilter) []models.Task {
	tasks := []models.Task{}
	for _, t := range m.tasks {
		if filter.AssigneeID != "" && t.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.AssignedBy != "" && t.AssignedBy != filter.AssignedBy {
			continue
		}
		if filter.InvolvedUserID != "" && !t.InvolvesUser(filter.InvolvedUserID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if filter.Department != nil && (t.Department == nil || *t.Department != *filter.Department) {
			continue
		}
		if filter.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*filter.DueBefore)) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func (m *mockTaskRepo) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	m.filters = append(m.filters, filter)
	tasks := m.match(filter)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch filter.Order {
		case models.TaskOrderNewest:
			return a.CreatedAt.After(b.CreatedAt)
		case models.TaskOrderDueDate:
			return dueBefore(a, b)
		default:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
			return dueBefore(a, b)
		}
	})
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func (m *mockTaskRepo) Count(ctx context.Context, filter models.TaskFilter) (int, error) {
	return len(m.match(filter)), nil
}

func (m *mockTaskRepo) CountByStatus(ctx context.Context, assigneeID string) ([]models.TaskStatusCount, error) {
	counts := map[models.TaskStatus]int{}
	for _, t := range m.tasks {
		if t.AssigneeID == assigneeID {
			counts[t.Status]++
		}
	}
	result := []models.TaskStatusCount{}
	for _, status := range models.TaskStatuses {
		if n := counts[status]; n > 0 {
			result = append(result, models.TaskStatusCount{Status: status, Count: n})
		}
	}
	return result, nil
}

// dueBefore orders earlier due dates first and undated tasks last.
func dueBefore(a, b models.Task) bool {
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}

func containsStatus(statuses []models.TaskStatus, status models.TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// mockAnnouncementRepo is an in-memory announcement table.
type mockAnnouncementRepo struct {
	rows    []models.Announcement
	listErr error
}

func (m *mockAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	rows := []models.Announcement{}
	for _, a := range m.rows {
		if !a.IsActive {
			continue
		}
		if !filter.Now.IsZero() && a.Expired(filter.Now) {
			continue
		}
		if filter.Role != nil && !a.Targets(*filter.Role) {
			continue
		}
		if filter.UrgentOnly && !a.IsUrgent {
			continue
		}
		rows = append(rows, a)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsUrgent != rows[j].IsUrgent {
			return rows[i].IsUrgent
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (m *mockAnnouncementRepo) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			copy := m.rows[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if len(announcement.TargetRoles) == 0 {
		announcement.TargetRoles = nil
	}
	announcement.UpdatedAt = announcement.CreatedAt
	m.rows = append(m.rows, *announcement)
	return nil
}

func (m *mockAnnouncementRepo) Deactivate(ctx context.Context, id string, updatedAt time.Time) (*models.Announcement, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].IsActive = false
			m.rows[i].UpdatedAt = updatedAt
			copy := m.rows[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

// mockCache records invalidations.
type mockCache struct {
	patterns []string
}

func (m *mockCache) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

// tickingClock returns a clock advancing by step on every call.
func tickingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }
