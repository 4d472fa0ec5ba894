// Package http provides the operator API: session control, pushed decodes,
// the cached token table and the live session stream.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/httputil"
	"github.com/allisson/qrgate/internal/scan/domain"
	"github.com/allisson/qrgate/internal/scan/http/dto"
	scanUseCase "github.com/allisson/qrgate/internal/scan/usecase"
	customValidation "github.com/allisson/qrgate/internal/validation"
)

// ErrScannerNotRunning is returned when a pushed payload arrives while no
// decode source instance is accepting it.
var ErrScannerNotRunning = apperrors.Wrap(apperrors.ErrConflict, "scanner is not running")

// PayloadReceiver accepts payloads decoded by the operator page and reports
// when its camera fails.
type PayloadReceiver interface {
	Deliver(text string) bool
	Fail(err error) bool
}

// TokenSource exposes the cached token table.
type TokenSource interface {
	Tokens() domain.TokenSet
	UpdatedAt() time.Time
}

// SessionHandler handles session control requests.
type SessionHandler struct {
	session  scanUseCase.Session
	receiver PayloadReceiver
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler. receiver is nil when the kiosk
// reads a device instead of accepting pushed payloads.
func NewSessionHandler(session scanUseCase.Session, receiver PayloadReceiver, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		session:  session,
		receiver: receiver,
		logger:   logger,
	}
}

// GetSessionHandler returns the current session snapshot.
// GET /v1/session - Returns 200 OK.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	snap, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSnapshotToResponse(snap))
}

// StartScannerHandler starts the decode source.
// POST /v1/scanner/start - Returns 200 OK with the new snapshot, 409 Conflict
// outside Idle, 503 Service Unavailable when the device cannot be acquired.
func (h *SessionHandler) StartScannerHandler(c *gin.Context) {
	if err := h.session.StartScanning(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.GetSessionHandler(c)
}

// StopScannerHandler stops the decode source.
// POST /v1/scanner/stop - Returns 200 OK with the new snapshot.
func (h *SessionHandler) StopScannerHandler(c *gin.Context) {
	if err := h.session.StopScanning(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.GetSessionHandler(c)
}

// GetHistoryHandler returns the recent scans, newest first.
// GET /v1/history - Returns 200 OK.
func (h *SessionHandler) GetHistoryHandler(c *gin.Context) {
	snap, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{Data: dto.MapHistory(snap.History)})
}

// DecodeHandler delivers a payload decoded by the operator page.
// POST /v1/decode - Returns 202 Accepted, 409 Conflict when the scanner is not running.
// Acceptance does not mean the payload will be verified: decodes outside
// Scanning are dropped by the controller.
func (h *SessionHandler) DecodeHandler(c *gin.Context) {
	var req dto.DecodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if h.receiver == nil || !h.receiver.Deliver(req.Text) {
		httputil.HandleErrorGin(c, ErrScannerNotRunning, h.logger)
		return
	}

	c.Status(http.StatusAccepted)
}

// ScannerErrorHandler reports that the operator page could not run its camera.
// POST /v1/scanner/error - Returns 202 Accepted, 409 Conflict when the scanner is not running.
// The session returns to Idle and shows the message until the next start.
func (h *SessionHandler) ScannerErrorHandler(c *gin.Context) {
	var req dto.ScannerErrorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if h.receiver == nil || !h.receiver.Fail(errors.New(req.Message)) {
		httputil.HandleErrorGin(c, ErrScannerNotRunning, h.logger)
		return
	}

	c.Status(http.StatusAccepted)
}
