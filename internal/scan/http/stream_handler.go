package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/allisson/qrgate/internal/httputil"
	"github.com/allisson/qrgate/internal/scan/http/dto"
	scanUseCase "github.com/allisson/qrgate/internal/scan/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 512
)

// StreamHandler pushes session snapshots over a websocket.
type StreamHandler struct {
	session  scanUseCase.Session
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStreamHandler creates a StreamHandler. allowedOrigins restricts the
// websocket Origin header; an empty list only allows same-host pages.
func NewStreamHandler(session scanUseCase.Session, allowedOrigins []string, logger *slog.Logger) *StreamHandler {
	h := &StreamHandler{session: session, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(allowedOrigins))
		for _, origin := range allowedOrigins {
			allowed[origin] = struct{}{}
		}
		_, wildcard := allowed["*"]
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || wildcard {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
	return h
}

// StreamHandler upgrades the connection and writes the current snapshot
// followed by one message per transition.
// GET /v1/session/stream
func (h *StreamHandler) StreamHandler(c *gin.Context) {
	snap, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() { _ = ws.Close() }()

	updates, unsubscribe := h.session.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go h.readPump(ws, closed)

	if err := h.write(ws, dto.MapSnapshotToResponse(snap)); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := h.write(ws, dto.MapSnapshotToResponse(snap)); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *StreamHandler) write(ws *websocket.Conn, resp dto.SessionResponse) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(resp); err != nil {
		h.logger.Debug("websocket write failed", slog.Any("error", err))
		return err
	}
	return nil
}

// readPump drains client frames so pongs and close frames are processed.
func (h *StreamHandler) readPump(ws *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
