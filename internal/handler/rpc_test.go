package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/middleware"
	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeTokens struct{}

func (fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case "mayor":
		return &models.JWTClaims{UserID: "u1", Role: models.RoleMayor}, nil
	case "secretary":
		return &models.JWTClaims{UserID: "u2", Role: models.RoleSecretary}, nil
	}
	return nil, appErrors.ErrUnauthorized
}

type fakeAuthSrv struct {
	lastCurrent string
	session     *models.Session
}

func (f *fakeAuthSrv) Register(_ context.Context, req dto.CreateUserInput) (*models.User, error) {
	return &models.User{ID: "new", Email: req.Email, PasswordHash: "secret-hash"}, nil
}

func (f *fakeAuthSrv) Login(context.Context, dto.LoginInput) (*models.Session, error) {
	if f.session == nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return f.session, nil
}

func (f *fakeAuthSrv) GetCurrentUser(_ context.Context, userID string) (*models.User, error) {
	f.lastCurrent = userID
	if userID == "u1" {
		return &models.User{ID: "u1"}, nil
	}
	return nil, nil
}

type fakeUserSrv struct {
	updated *dto.UpdateUserStatusInput
}

func (f *fakeUserSrv) GetAll(context.Context) ([]models.User, error) {
	return []models.User{{ID: "u1"}, {ID: "u2"}}, nil
}

func (f *fakeUserSrv) GetByRole(context.Context, dto.RoleInput) ([]models.User, error) {
	return []models.User{}, nil
}

func (f *fakeUserSrv) GetByDepartment(context.Context, dto.DepartmentInput) ([]models.User, error) {
	return []models.User{}, nil
}

func (f *fakeUserSrv) UpdateStatus(_ context.Context, req dto.UpdateUserStatusInput) (*models.User, error) {
	f.updated = &req
	return &models.User{ID: req.UserID, IsActive: *req.IsActive}, nil
}

type fakeTaskSrv struct {
	exported dto.TaskExportInput
}

func (f *fakeTaskSrv) Create(context.Context, dto.CreateTaskInput) (*models.Task, error) {
	return nil, appErrors.Clone(appErrors.ErrConstraintViolation, "Assignee or assigner does not exist")
}

func (f *fakeTaskSrv) GetAssignedToUser(_ context.Context, userID string) ([]models.Task, error) {
	return []models.Task{{ID: "t1", AssigneeID: userID}}, nil
}

func (f *fakeTaskSrv) GetCreatedByUser(context.Context, string) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (f *fakeTaskSrv) GetByStatus(context.Context, dto.TaskStatusInput) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (f *fakeTaskSrv) GetByDepartment(context.Context, dto.TaskDepartmentInput) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (f *fakeTaskSrv) GetOverdue(context.Context, string) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (f *fakeTaskSrv) UpdateStatus(context.Context, dto.UpdateTaskStatusInput) (*models.Task, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Task not found")
}

func (f *fakeTaskSrv) Export(_ context.Context, req dto.TaskExportInput) (*dto.ExportFile, error) {
	f.exported = req
	return &dto.ExportFile{FileName: "tasks-20240301.csv", ContentType: "text/csv", Content: []byte("id,title\n")}, nil
}

type fakeAnnouncementSrv struct {
	deactivated *dto.DeactivateAnnouncementInput
	roleQuery   *dto.RoleInput
}

func (f *fakeAnnouncementSrv) Create(_ context.Context, req dto.CreateAnnouncementInput) (*models.Announcement, error) {
	return &models.Announcement{ID: "a1", AuthorID: req.AuthorID}, nil
}

func (f *fakeAnnouncementSrv) GetForUser(_ context.Context, req dto.RoleInput) ([]models.Announcement, error) {
	f.roleQuery = &req
	return []models.Announcement{}, nil
}

func (f *fakeAnnouncementSrv) GetUrgent(_ context.Context, req dto.RoleInput) ([]models.Announcement, error) {
	f.roleQuery = &req
	return []models.Announcement{}, nil
}

func (f *fakeAnnouncementSrv) GetAll(context.Context) ([]models.Announcement, error) {
	return []models.Announcement{}, nil
}

func (f *fakeAnnouncementSrv) Deactivate(_ context.Context, req dto.DeactivateAnnouncementInput) (*models.Announcement, error) {
	f.deactivated = &req
	return &models.Announcement{ID: req.AnnouncementID}, nil
}

type fakeDashboardSrv struct {
	hit bool
	err error
}

func (f *fakeDashboardSrv) GetData(_ context.Context, userID string) (*dto.DashboardData, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.DashboardData{User: &models.User{ID: userID}}, f.hit, nil
}

func (f *fakeDashboardSrv) GetQuickStats(context.Context, string) (*dto.QuickStats, error) {
	return &dto.QuickStats{TotalTasks: 3, PendingTasks: 1}, nil
}

// Listing tests only need the method set.
type stubDocumentSrv struct{ documentService }

type stubAnnouncementSrv struct{ announcementService }

type recordingProcedures struct {
	calls []string
}

func (r *recordingProcedures) ObserveProcedure(procedure, code string) {
	r.calls = append(r.calls, procedure+":"+code)
}

type fixture struct {
	engine  *gin.Engine
	auth    *fakeAuthSrv
	users   *fakeUserSrv
	tasks   *fakeTaskSrv
	dash    *fakeDashboardSrv
	news    *fakeAnnouncementSrv
	metrics *recordingProcedures
}

func newFixture(requireAuth bool) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		auth:    &fakeAuthSrv{},
		users:   &fakeUserSrv{},
		tasks:   &fakeTaskSrv{},
		dash:    &fakeDashboardSrv{},
		news:    &fakeAnnouncementSrv{},
		metrics: &recordingProcedures{},
	}
	router := NewRPCRouter(RPCRouterConfig{RequireAuth: requireAuth, Metrics: f.metrics})
	router.Mount(
		NewAuthHandler(f.auth),
		NewUserHandler(f.users),
		NewTaskHandler(f.tasks),
		NewDashboardHandler(f.dash),
		NewAnnouncementHandler(f.news),
	)

	f.engine = gin.New()
	f.engine.Use(middleware.WithResponseMeta())
	f.engine.POST("/rpc/:procedure", middleware.OptionalJWT(fakeTokens{}), router.Handle)
	return f
}

func (f *fixture) call(t *testing.T, procedure, token, body string) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc/"+procedure, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestRPCUnknownProcedure(t *testing.T) {
	f := newFixture(false)
	rec, envelope := f.call(t, "tasks.delete", "", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "procedure not found", envelope.Error.Message)
	assert.Equal(t, []string{"unknown:NOT_FOUND"}, f.metrics.calls)
}

func TestRPCRejectsMalformedBody(t *testing.T) {
	f := newFixture(false)
	rec, envelope := f.call(t, "users.updateStatus", "", `{"userId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)

	rec, envelope = f.call(t, "users.updateStatus", "", `{"userId": 7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestRPCEmptyBodyDecodesAsEmptyInput(t *testing.T) {
	f := newFixture(false)
	rec, envelope := f.call(t, "users.getAll", "", ``)

	assert.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(envelope.Data, &users))
	assert.Len(t, users, 2)
	assert.Equal(t, []string{"users.getAll:OK"}, f.metrics.calls)
}

func TestRPCPassesServiceErrorsThrough(t *testing.T) {
	f := newFixture(false)

	rec, envelope := f.call(t, "tasks.updateStatus", "", `{"id":"missing","status":"Completed","userId":"u1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", envelope.Error.Message)

	rec, envelope = f.call(t, "tasks.create", "", `{"title":"x","assignee_id":"ghost","assignedBy":"u1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, appErrors.ErrConstraintViolation.Code, envelope.Error.Code)
}

func TestRPCAuthEnforcement(t *testing.T) {
	f := newFixture(true)

	rec, _ := f.call(t, "users.getAll", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.call(t, "auth.login", "", `{"email":"a@city.gov","password":"password1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "login is public so the service error surfaces")

	rec, envelope := f.call(t, "auth.register", "", `{"email":"new@city.gov","password":"password1","first_name":"A","last_name":"B","role":"Secretary"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(envelope.Data), "secret-hash")

	rec, _ = f.call(t, "users.updateStatus", "secretary", `{"userId":"u3","isActive":false}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, f.users.updated)

	rec, _ = f.call(t, "users.updateStatus", "mayor", `{"userId":"u3","isActive":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.users.updated)
	assert.Equal(t, "u3", f.users.updated.UserID)
	assert.False(t, *f.users.updated.IsActive)
}

func TestRPCBindsActingUserToSession(t *testing.T) {
	f := newFixture(true)

	rec, envelope := f.call(t, "announcements.deactivate", "secretary", `{"announcementId":"a1","userId":"u1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "userId does not match the authenticated user", envelope.Error.Message)
	assert.Nil(t, f.news.deactivated)

	rec, _ = f.call(t, "announcements.deactivate", "secretary", `{"announcementId":"a1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.news.deactivated)
	assert.Equal(t, "u2", f.news.deactivated.UserID)

	rec, _ = f.call(t, "announcements.create", "secretary", `{"title":"t","content":"c","authorId":"u1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.call(t, "tasks.updateStatus", "secretary", `{"id":"t1","status":"Completed","userId":"u1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.call(t, "announcements.getForUser", "secretary", `{"role":"Mayor"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, f.news.roleQuery)

	rec, _ = f.call(t, "announcements.getUrgent", "secretary", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.news.roleQuery)
	assert.Equal(t, models.RoleSecretary, f.news.roleQuery.Role)

	rec, envelope = f.call(t, "tasks.getOverdue", "secretary", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestRPCTargetUserIsNotBound(t *testing.T) {
	f := newFixture(true)

	rec, _ := f.call(t, "users.updateStatus", "mayor", `{"userId":"u2","isActive":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.users.updated)
	assert.Equal(t, "u2", f.users.updated.UserID)
}

func TestRPCCurrentUser(t *testing.T) {
	f := newFixture(false)

	rec, envelope := f.call(t, "auth.getCurrentUser", "", `{"userId":"ghost"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(envelope.Data))

	rec, envelope = f.call(t, "auth.getCurrentUser", "mayor", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", f.auth.lastCurrent)
	assert.Contains(t, string(envelope.Data), `"id":"u1"`)
}

func TestRPCDashboardCacheMeta(t *testing.T) {
	f := newFixture(false)
	f.dash.hit = true

	rec, envelope := f.call(t, "dashboard.getData", "", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope.Meta["cache_hit"])

	f.dash.err = appErrors.Clone(appErrors.ErrNotFound, "User not found")
	rec, envelope = f.call(t, "dashboard.getData", "", `{"userId":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", envelope.Error.Message)

	rec, envelope = f.call(t, "dashboard.getQuickStats", "", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(envelope.Data, &stats))
	assert.Equal(t, 3, stats["totalTasks"])
	assert.Equal(t, 1, stats["pendingTasks"])
}

func TestRPCTaskExportIsBase64(t *testing.T) {
	f := newFixture(false)

	rec, envelope := f.call(t, "tasks.export", "", `{"userId":"u3","format":"csv"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u3", f.tasks.exported.UserID)

	var file struct {
		FileName string `json:"file_name"`
		Content  string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &file))
	assert.Equal(t, "tasks-20240301.csv", file.FileName)
	decoded, err := base64.StdEncoding.DecodeString(file.Content)
	require.NoError(t, err)
	assert.Equal(t, "id,title\n", string(decoded))
}

func TestRPCProceduresListing(t *testing.T) {
	router := NewRPCRouter(RPCRouterConfig{})
	router.Mount(
		NewAuthHandler(&fakeAuthSrv{}),
		NewUserHandler(&fakeUserSrv{}),
		NewDocumentHandler(stubDocumentSrv{}),
		NewTaskHandler(&fakeTaskSrv{}),
		NewAnnouncementHandler(stubAnnouncementSrv{}),
		NewDashboardHandler(&fakeDashboardSrv{}),
	)

	names := router.Procedures()
	assert.Len(t, names, 29)
	assert.Contains(t, names, "documents.getDownloadLink")
	assert.Contains(t, names, "announcements.deactivate")
	assert.Equal(t, "announcements.create", names[0])
}
