package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"BotDash/internal/domain/models"
	"BotDash/internal/usecase"
	xhttp "BotDash/pkg/http"
	xlogger "BotDash/pkg/logger"
	"BotDash/pkg/util"
)

// Dashboards is the session-facing side of the dashboard. *usecase.SessionHub satisfies it.
type Dashboards interface {
	Open(ctx context.Context, q url.Values) (*usecase.Session, *usecase.Snapshot, error)
	Get(id string) (*usecase.Session, error)
	Apply(ctx context.Context, id string, q url.Values) (*usecase.Snapshot, error)
	Close(id string) error
	Snapshot(ctx context.Context, q url.Values) (*usecase.Snapshot, error)
	Normalize(q url.Values) (url.Values, error)
	ExportURL(q url.Values, kind usecase.ExportKind) (string, error)
}

// BanditPanels loads the bandit panel. *usecase.BanditPanelService satisfies it.
type BanditPanels interface {
	FetchBandit(ctx context.Context, q usecase.BanditQuery) (*usecase.BanditPanel, error)
}

type SessionCreated struct {
	ID       string            `json:"id"`
	Snapshot *usecase.Snapshot `json:"snapshot"`
}

type QueryResponse struct {
	Query  string     `json:"query"`
	Params url.Values `json:"params"`
}

// DashboardEchoHandler serves the dashboard JSON API.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	hub    Dashboards
	bandit BanditPanels
}

func NewDashboardEchoHandler(logger *xlogger.Logger, hub Dashboards, bandit BanditPanels) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, hub: hub, bandit: bandit}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/dashboard/query", h.Query)
	g.GET("/dashboard/exports/:kind", h.Export)
	g.GET("/bandit", h.Bandit)

	s := g.Group("/sessions")
	s.POST("", h.CreateSession)
	s.GET("/:id", h.GetSession)
	s.POST("/:id/refresh", h.RefreshSession)
	s.POST("/:id/hover", h.Hover)
	s.DELETE("/:id/hover", h.Leave)
	s.DELETE("/:id", h.DeleteSession)
}

// Dashboard renders the query once without keeping a session.
func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	snap, err := h.hub.Snapshot(c.Request().Context(), c.QueryParams())
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, snap)
}

// Query returns the normalized URL form of the filter, defaults applied.
func (h *DashboardEchoHandler) Query(c echo.Context) error {
	q, err := h.hub.Normalize(c.QueryParams())
	if err != nil {
		return h.fail(c, "query", err)
	}
	return xhttp.SuccessResponse(c, QueryResponse{Query: q.Encode(), Params: q})
}

// Export redirects the browser to the backend download.
func (h *DashboardEchoHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	link, err := h.hub.ExportURL(c.QueryParams(), usecase.ExportKind(req.Kind))
	if err != nil {
		return h.fail(c, "export", err)
	}
	return c.Redirect(http.StatusFound, link)
}

func (h *DashboardEchoHandler) Bandit(c echo.Context) error {
	req := &models.BanditRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	panel, err := h.bandit.FetchBandit(c.Request().Context(), usecase.BanditQuery{
		Symbol: req.Symbol,
		Regime: req.Regime,
		Side:   req.Side,
		Limit:  req.Limit,
	})
	if err != nil {
		return h.fail(c, "bandit", err)
	}
	return xhttp.SuccessResponse(c, panel)
}

func (h *DashboardEchoHandler) CreateSession(c echo.Context) error {
	s, snap, err := h.hub.Open(c.Request().Context(), c.QueryParams())
	if err != nil {
		return h.fail(c, "create session", err)
	}
	return xhttp.CreatedResponse(c, SessionCreated{ID: s.ID, Snapshot: snap})
}

func (h *DashboardEchoHandler) GetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, "get session", err)
	}
	snap, ok := s.Controller.Snapshot()
	if !ok {
		return h.fail(c, "get session", usecase.ErrNotRendered)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardEchoHandler) RefreshSession(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap, err := h.hub.Apply(c.Request().Context(), req.ID, c.QueryParams())
	if err != nil {
		return h.fail(c, "refresh session", err)
	}
	return xhttp.SuccessResponse(c, snap)
}

// Hover takes ts as a query parameter.
func (h *DashboardEchoHandler) Hover(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, "hover", err)
	}
	ts, ok := util.ParseTime(c.QueryParam("ts"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ts must be an ISO-8601 timestamp"))
	}
	res, err := s.Controller.Hover(ts)
	if err != nil {
		return h.fail(c, "hover", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Leave(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, "leave", err)
	}
	if err := s.Controller.Leave(); err != nil {
		return h.fail(c, "leave", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *DashboardEchoHandler) DeleteSession(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.hub.Close(req.ID); err != nil {
		return h.fail(c, "delete session", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *DashboardEchoHandler) session(c echo.Context) (*usecase.Session, error) {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return nil, xhttp.BadRequestError(verr[0].Message)
	}
	return h.hub.Get(req.ID)
}

func (h *DashboardEchoHandler) fail(c echo.Context, op string, err error) error {
	return writeError(c, h.logger, op, err)
}

// writeError maps usecase errors onto the API envelope.
func writeError(c echo.Context, log *xlogger.Logger, op string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return xhttp.AppErrorResponse(c, appErr)
	case errors.Is(err, usecase.ErrInvalidFilter):
		return xhttp.BadRequestResponse(c, xhttp.ValidationErrors(err))
	case errors.Is(err, usecase.ErrSessionNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("session not found"))
	case errors.Is(err, usecase.ErrSuperseded):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("superseded by a newer refresh"))
	case errors.Is(err, usecase.ErrUnmounted):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("session closed"))
	case errors.Is(err, usecase.ErrNotRendered):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("session has not rendered yet"))
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(op+" timed out", xlogger.Error(err))
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_TIMEOUT", "", "dashboard backend timed out", http.StatusGatewayTimeout).WithError(err))
	default:
		log.Error(op+" failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("dashboard backend unavailable").WithError(err))
	}
}
