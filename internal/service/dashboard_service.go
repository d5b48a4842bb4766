package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
)

const dashboardCachePattern = "dash:*"

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type announcementFeed interface {
	ListVisible(ctx context.Context, role models.UserRole, urgentOnly bool, limit int) ([]models.Announcement, error)
}

type dashboardTaskReader interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, filter models.TaskFilter) (int, error)
	CountByStatus(ctx context.Context, assigneeID string) ([]models.TaskStatusCount, error)
}

type documentLister interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	AnnouncementsLimit int
	TasksLimit         int
	DocumentsLimit     int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users         userFinder
	Announcements announcementFeed
	Tasks         dashboardTaskReader
	Documents     documentLister
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the landing view of a user.
type DashboardService struct {
	users         userFinder
	announcements announcementFeed
	tasks         dashboardTaskReader
	documents     documentLister
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.AnnouncementsLimit <= 0 {
		cfg.AnnouncementsLimit = 5
	}
	if cfg.TasksLimit <= 0 {
		cfg.TasksLimit = 10
	}
	if cfg.DocumentsLimit <= 0 {
		cfg.DocumentsLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:         params.Users,
		announcements: params.Announcements,
		tasks:         params.Tasks,
		documents:     params.Documents,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// GetData returns the dashboard of userID and whether it came from cache.
// A missing user aborts before any other read.
func (s *DashboardService) GetData(ctx context.Context, userID string) (*dto.DashboardData, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	cacheKey := fmt.Sprintf("dash:%s", userID)
	if s.cache != nil {
		var cached dto.DashboardData
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	data, err := s.compose(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, data)
	return data, false, nil
}

// GetQuickStats returns scalar task and announcement counters for userID.
func (s *DashboardService) GetQuickStats(ctx context.Context, userID string) (*dto.QuickStats, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary, err := s.taskSummary(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	overdue, err := s.tasks.Count(ctx, models.TaskFilter{
		AssigneeID: user.ID,
		Statuses:   models.ActiveTaskStatuses,
		DueBefore:  &now,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count overdue tasks")
	}

	urgent, err := s.announcements.ListVisible(ctx, user.Role, true, 0)
	if err != nil {
		return nil, err
	}

	return &dto.QuickStats{
		TotalTasks:          summary.Total,
		PendingTasks:        summary.Pending,
		OverdueFiles:        overdue,
		UrgentAnnouncements: len(urgent),
	}, nil
}

func (s *DashboardService) compose(ctx context.Context, userID string) (*dto.DashboardData, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	announcements, err := s.announcements.ListVisible(ctx, user.Role, false, s.cfg.AnnouncementsLimit)
	if err != nil {
		return nil, err
	}

	pending, err := s.tasks.List(ctx, models.TaskFilter{
		AssigneeID: user.ID,
		Statuses:   models.ActiveTaskStatuses,
		Order:      models.TaskOrderPriority,
		Limit:      s.cfg.TasksLimit,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load pending tasks")
	}

	documents, err := s.documents.List(ctx, models.DocumentFilter{ViewerID: user.ID, Limit: s.cfg.DocumentsLimit})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load recent documents")
	}

	summary, err := s.taskSummary(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardData{
		User:            user,
		Announcements:   announcements,
		PendingTasks:    pending,
		RecentDocuments: documents,
		TaskSummary:     summary,
	}, nil
}

func (s *DashboardService) taskSummary(ctx context.Context, userID string) (dto.TaskSummary, error) {
	counts, err := s.tasks.CountByStatus(ctx, userID)
	if err != nil {
		return dto.TaskSummary{}, appErrors.Internal(err, "failed to summarise tasks")
	}
	var summary dto.TaskSummary
	for _, c := range counts {
		summary.Total += c.Count
		switch c.Status {
		case models.TaskStatusPending:
			summary.Pending += c.Count
		case models.TaskStatusInProgress:
			summary.InProgress += c.Count
		case models.TaskStatusCompleted:
			summary.Completed += c.Count
		}
	}
	return summary, nil
}

func (s *DashboardService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateDashboards drops every cached dashboard after a mutation.
func invalidateDashboards(ctx context.Context, cache cacheInvalidator, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
