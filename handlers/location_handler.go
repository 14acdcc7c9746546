package handlers

import (
	"go-places/middleware"
	"go-places/models"
	"go-places/services"
	"go-places/utils/errors"
	"math"
	"net/http"
	"strconv"
)

type LocationHandler struct {
	sessionService *services.SessionService
}

type LocationResponse struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome"`
}

func NewLocationHandler(sessionService *services.SessionService) *LocationHandler {
	return &LocationHandler{sessionService: sessionService}
}

// ReportLocation accepts one sample: lat, lon and accuracy are required,
// heading is optional.
func (h *LocationHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	// Parse and validate query parameters
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	accuracy, err := strconv.ParseFloat(q.Get("accuracy"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	heading := -1.0
	if raw := q.Get("heading"); raw != "" {
		if heading, err = strconv.ParseFloat(raw, 64); err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
	}

	coord := models.Coordinate{Latitude: lat, Longitude: lon}
	if !coord.Valid() {
		middleware.WriteError(w, errors.NewAPIError("INVALID_COORDINATES", "Coordinates out of range", http.StatusBadRequest))
		return
	}

	// Deliver to the gate and the AR engine
	outcome, err := session.ReportLocation(models.LocationSample{
		Coordinate:         coord,
		HorizontalAccuracy: accuracy,
		Heading:            heading,
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, LocationResponse{Status: "success", Outcome: outcome})
}

// ReportHeading accepts a compass reading in degrees, 0 up to 360.
func (h *LocationHandler) ReportHeading(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.sessionService, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	degrees, err := strconv.ParseFloat(r.URL.Query().Get("degrees"), 64)
	if err != nil || math.IsNaN(degrees) || degrees < 0 || degrees >= 360 {
		middleware.WriteError(w, errors.NewAPIError("INVALID_HEADING", "Heading must be in [0, 360)", http.StatusBadRequest))
		return
	}

	if err := session.ReportHeading(degrees); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "success"})
}
