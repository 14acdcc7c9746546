package handlers

import (
	"github.com/gorilla/mux"
	"go-places/middleware"
	"go-places/overlay"
	"go-places/services"
	"go-places/utils/errors"
	"net/http"
	"strconv"
)

type OverlayHandler struct {
	sessionService *services.SessionService
}

type AnnotationsResponse struct {
	Annotations []services.AnnotationSummary `json:"annotations"`
	Count       int                          `json:"count"`
}

type WidgetsResponse struct {
	Widgets []services.WidgetSnapshot `json:"widgets"`
	Count   int                       `json:"count"`
}

func NewOverlayHandler(sessionService *services.SessionService) *OverlayHandler {
	return &OverlayHandler{sessionService: sessionService}
}

func (h *OverlayHandler) GetAnnotations(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	annotations, err := session.Annotations()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AnnotationsResponse{Annotations: annotations, Count: len(annotations)})
}

func (h *OverlayHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	snap, err := session.Map()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *OverlayHandler) GetWidgets(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	widgets, err := session.Widgets()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WidgetsResponse{Widgets: widgets, Count: len(widgets)})
}

// TouchWidget reports a touch release on the widget of annotation {id}.
func (h *OverlayHandler) TouchWidget(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := session.TouchWidget(mux.Vars(r)["id"]); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveWidget applies the frame the client placed the widget of annotation
// {id} at: x, y, width and height in screen points.
func (h *OverlayHandler) MoveWidget(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	// All four values are required; the size must be positive
	q := r.URL.Query()
	var values [4]float64
	for i, key := range []string{"x", "y", "width", "height"} {
		if values[i], err = strconv.ParseFloat(q.Get(key), 64); err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
	}
	frame := overlay.Rect{X: values[0], Y: values[1], Width: values[2], Height: values[3]}
	if !(frame.Width > 0 && frame.Height > 0) {
		middleware.WriteError(w, errors.NewAPIError("INVALID_FRAME", "Width and height must be positive", http.StatusBadRequest))
		return
	}

	if err := session.MoveWidget(mux.Vars(r)["id"], frame); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
