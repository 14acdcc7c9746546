package handlers

import (
	"encoding/json"
	stderrors "errors"
	"go-places/middleware"
	"go-places/services"
	"go-places/utils/errors"
	"net/http"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// sessionFromRequest resolves the session named by the request's token.
func sessionFromRequest(svc *services.SessionService, r *http.Request) (*services.PlacesSession, error) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	session, err := svc.Get(id)
	if err != nil {
		if stderrors.Is(err, services.ErrSessionNotFound) {
			return nil, errors.NewAPIError("SESSION_NOT_FOUND", "Session not found", http.StatusNotFound)
		}
		return nil, err
	}
	return session, nil
}

// writeSessionError maps errors from a session call onto API errors.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, services.ErrWidgetNotVisible):
		middleware.WriteError(w, errors.NewAPIError("WIDGET_NOT_VISIBLE", "Annotation has no visible widget", http.StatusNotFound))
	case stderrors.Is(err, services.ErrSessionNotFound):
		middleware.WriteError(w, errors.NewAPIError("SESSION_NOT_FOUND", "Session not found", http.StatusNotFound))
	default:
		if _, ok := err.(*errors.APIError); ok {
			middleware.WriteError(w, err)
			return
		}
		middleware.WriteError(w, errors.Wrap(err, errors.ErrSessionClosed.Code, errors.ErrSessionClosed.Message, errors.ErrSessionClosed.Status))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, token, err := h.sessionService.Create()
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "SESSION_ERROR", "Failed to create session", http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: session.ID(), Token: token})
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	status, err := session.Status()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if err := h.sessionService.Close(id); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
