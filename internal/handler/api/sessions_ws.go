package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"BotDash/internal/usecase"
	xlogger "BotDash/pkg/logger"
	"BotDash/pkg/util"
)

// Inbound message types.
const (
	MsgFilters = "filters"
	MsgHover   = "hover"
	MsgLeave   = "leave"
)

// Outbound message types.
const (
	MsgSnapshot   = "snapshot"
	MsgSuperseded = "superseded"
	MsgError      = "error"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 64 << 10
)

type WSInbound struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
	Ts    string `json:"ts,omitempty"`
}

type WSOutbound struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// SessionsWSHandler streams one session over a websocket. Filter changes re-render the
// session; hover and leave drive the cross-chart highlight.
type SessionsWSHandler struct {
	logger   *xlogger.Logger
	hub      Dashboards
	upgrader websocket.Upgrader
}

// NewSessionsWSHandler accepts any origin when origins is empty or contains "*".
func NewSessionsWSHandler(logger *xlogger.Logger, hub Dashboards, origins []string) *SessionsWSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &SessionsWSHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *SessionsWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/sessions/:id", h.Serve)
}

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(msg WSOutbound) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(msg)
}

func (h *SessionsWSHandler) Serve(c echo.Context) error {
	id := c.Param("id")
	s, err := h.hub.Get(id)
	if err != nil {
		return writeError(c, h.logger, "ws session", err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.String("session", id), xlogger.Error(err))
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ws := &wsConn{conn: conn}
	log := h.logger.With(xlogger.String("session", id))
	log.Debug("websocket attached")

	if snap, ok := s.Controller.Snapshot(); ok {
		if err := ws.send(WSOutbound{Type: MsgSnapshot, Data: snap}); err != nil {
			return nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		log.Debug("websocket detached")
	}()

	for {
		var in WSInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", xlogger.Error(err))
			}
			return nil
		}
		if _, err := h.hub.Get(id); err != nil {
			_ = ws.send(WSOutbound{Type: MsgError, Error: err.Error()})
			return nil
		}

		switch in.Type {
		case MsgFilters:
			q, err := url.ParseQuery(in.Query)
			if err != nil {
				_ = ws.send(WSOutbound{Type: MsgError, Error: "malformed query"})
				continue
			}
			// a newer filters message supersedes this one while it is in flight
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.apply(ctx, ws, id, q)
			}()
		case MsgHover:
			ts, ok := util.ParseTime(in.Ts)
			if !ok {
				_ = ws.send(WSOutbound{Type: MsgError, Error: "ts must be an ISO-8601 timestamp"})
				continue
			}
			res, err := s.Controller.Hover(ts)
			if err != nil {
				_ = ws.send(WSOutbound{Type: MsgError, Error: err.Error()})
				continue
			}
			_ = ws.send(WSOutbound{Type: MsgHover, Data: res})
		case MsgLeave:
			if err := s.Controller.Leave(); err != nil {
				_ = ws.send(WSOutbound{Type: MsgError, Error: err.Error()})
				continue
			}
			_ = ws.send(WSOutbound{Type: MsgLeave})
		default:
			_ = ws.send(WSOutbound{Type: MsgError, Error: "unknown message type " + in.Type})
		}
	}
}

func (h *SessionsWSHandler) apply(ctx context.Context, ws *wsConn, id string, q url.Values) {
	snap, err := h.hub.Apply(ctx, id, q)
	switch {
	case err == nil:
		_ = ws.send(WSOutbound{Type: MsgSnapshot, Data: snap})
	case errors.Is(err, usecase.ErrSuperseded):
		_ = ws.send(WSOutbound{Type: MsgSuperseded})
	case errors.Is(err, context.Canceled):
	default:
		h.logger.Warn("websocket refresh failed", xlogger.String("session", id), xlogger.Error(err))
		_ = ws.send(WSOutbound{Type: MsgError, Error: err.Error()})
	}
}
