package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/internal/middleware"
	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
	"github.com/noah-isme/city-intranet-api/pkg/response"
)

const procedureOK = "OK"

// ProcedureFunc executes one procedure against its raw JSON input.
type ProcedureFunc func(c *gin.Context, input json.RawMessage) (interface{}, error)

// Procedure describes a callable RPC procedure.
type Procedure struct {
	// Public procedures never require a session token.
	Public bool
	// Roles restricts callers when authentication is enforced. Empty admits
	// any authenticated user.
	Roles []models.UserRole
	// Actor names the input field carrying the acting user id and ActorRole
	// the field carrying the acting role. With a session both are bound to
	// the token: filled in when absent, rejected when they differ.
	Actor     string
	ActorRole string
	Call      ProcedureFunc
}

type procedureObserver interface {
	ObserveProcedure(procedure, code string)
}

// RPCRouterConfig configures the router.
type RPCRouterConfig struct {
	RequireAuth bool
	Metrics     procedureObserver
	Logger      *zap.Logger
}

// RPCRouter dispatches POST /rpc/:procedure calls to registered procedures.
type RPCRouter struct {
	procedures  map[string]Procedure
	requireAuth bool
	metrics     procedureObserver
	logger      *zap.Logger
}

// Registrar is implemented by handlers exposing procedures.
type Registrar interface {
	Register(router *RPCRouter)
}

// NewRPCRouter constructs an empty router.
func NewRPCRouter(cfg RPCRouterConfig) *RPCRouter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCRouter{
		procedures:  make(map[string]Procedure),
		requireAuth: cfg.RequireAuth,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Register adds a procedure under name, replacing any previous entry.
func (r *RPCRouter) Register(name string, procedure Procedure) {
	r.procedures[name] = procedure
}

// Mount registers every procedure exposed by the given handlers.
func (r *RPCRouter) Mount(handlers ...Registrar) {
	for _, h := range handlers {
		if h != nil {
			h.Register(r)
		}
	}
}

// Procedures lists registered procedure names in sorted order.
func (r *RPCRouter) Procedures() []string {
	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle godoc
// @Summary Call a procedure
// @Description Invokes a named procedure such as tasks.create with a JSON input body
// @Tags RPC
// @Accept json
// @Produce json
// @Param procedure path string true "Procedure name, e.g. dashboard.getData"
// @Param payload body object false "Procedure input"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /rpc/{procedure} [post]
func (r *RPCRouter) Handle(c *gin.Context) {
	name := c.Param("procedure")
	procedure, ok := r.procedures[name]
	if !ok {
		r.fail(c, "unknown", appErrors.Clone(appErrors.ErrNotFound, "procedure not found"))
		return
	}

	if r.requireAuth && !procedure.Public {
		claims := middleware.Claims(c)
		if claims == nil {
			r.fail(c, name, appErrors.ErrUnauthorized)
			return
		}
		if !middleware.HasRole(claims, procedure.Roles...) {
			r.fail(c, name, appErrors.ErrForbidden)
			return
		}
	}

	input, err := readInput(c)
	if err != nil {
		r.fail(c, name, err)
		return
	}
	if claims := middleware.Claims(c); claims != nil {
		input, err = bindSession(input, procedure, claims)
		if err != nil {
			r.fail(c, name, err)
			return
		}
	}

	result, err := procedure.Call(c, input)
	if err != nil {
		r.fail(c, name, err)
		return
	}

	r.observe(name, procedureOK)
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

func (r *RPCRouter) fail(c *gin.Context, name string, err error) {
	appErr := appErrors.FromError(err)
	r.observe(name, appErr.Code)
	if appErr.Status >= http.StatusInternalServerError {
		r.logger.Error("procedure failed", zap.String("procedure", name), zap.Error(err))
	}
	response.Error(c, appErr)
}

func (r *RPCRouter) observe(name, code string) {
	if r.metrics != nil {
		r.metrics.ObserveProcedure(name, code)
	}
}

// readInput returns the request body, treating an empty body as {}.
func readInput(c *gin.Context) (json.RawMessage, error) {
	if c.Request.Body == nil {
		return json.RawMessage("{}"), nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(body) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body must be valid JSON")
	}
	return json.RawMessage(body), nil
}

// bindSession ties the acting-user fields of input to the session claims.
func bindSession(input json.RawMessage, procedure Procedure, claims *models.JWTClaims) (json.RawMessage, error) {
	if procedure.Actor == "" && procedure.ActorRole == "" {
		return input, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil || fields == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "procedure input must be a JSON object")
	}
	bindings := []struct{ field, value string }{
		{procedure.Actor, claims.UserID},
		{procedure.ActorRole, string(claims.Role)},
	}
	for _, b := range bindings {
		if b.field == "" {
			continue
		}
		if err := bindField(fields, b.field, b.value); err != nil {
			return nil, err
		}
	}
	bound, err := json.Marshal(fields)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode procedure input")
	}
	return bound, nil
}

func bindField(fields map[string]json.RawMessage, field, want string) error {
	if raw, ok := fields[field]; ok && string(raw) != "null" {
		var got string
		if err := json.Unmarshal(raw, &got); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, field+" must be a string")
		}
		if got != "" && got != want {
			return appErrors.Clone(appErrors.ErrForbidden, field+" does not match the authenticated user")
		}
	}
	encoded, err := json.Marshal(want)
	if err != nil {
		return appErrors.Internal(err, "failed to encode procedure input")
	}
	fields[field] = encoded
	return nil
}

// bind decodes a procedure input into T.
func bind[T any](input json.RawMessage) (T, error) {
	var req T
	if err := json.Unmarshal(input, &req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid procedure input")
	}
	return req, nil
}
