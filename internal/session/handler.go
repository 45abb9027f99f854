package session

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/auth"
	"github.com/ovaphlow/pitchfork/service-study/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-study/internal/session/entity"
)

type Handler struct {
	svc    *SessionService
	logger *zap.SugaredLogger
}

func NewHandler(svc *SessionService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RecordRequest is the body of POST /sessions. Duration is in minutes.
type RecordRequest struct {
	SessionType string `json:"session_type" validate:"required,max=50"`
	Duration    *int   `json:"duration" validate:"required,gt=0,lte=1440"`
}

type RecordResponse struct {
	Message string          `json:"message"`
	Session *entity.Session `json:"session"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, h.logger, auth.ErrMissingToken, "Unauthorized")
		return
	}
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to record session")
		return
	}
	s, err := h.svc.RecordSession(r.Context(), uid, req.SessionType, *req.Duration)
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to record session")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, RecordResponse{Message: "Session recorded", Session: s})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, h.logger, auth.ErrMissingToken, "Unauthorized")
		return
	}
	sessions, err := h.svc.ListSessions(r.Context(), uid)
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch sessions")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessions)
}
