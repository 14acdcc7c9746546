package handlers

import (
	"fmt"
	"go-places/middleware"
	"go-places/models"
	"go-places/services"
	"go-places/utils/errors"
	"net/http"
	"strconv"
	"strings"
)

type POIHandler struct {
	catalogService *services.CatalogService
}

func NewPOIHandler(catalogService *services.CatalogService) *POIHandler {
	return &POIHandler{catalogService: catalogService}
}

// NearbySearch serves the catalog in the Google Places nearby-search shape:
// location=lat,lng and radius in meters.
func (h *POIHandler) NearbySearch(w http.ResponseWriter, r *http.Request) {
	// Parse location and radius
	center, err := parseLocationParam(r.URL.Query().Get("location"))
	if err != nil {
		middleware.WriteError(w, errors.NewAPIError("INVALID_INPUT", "Invalid location", http.StatusBadRequest, err.Error()))
		return
	}
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	// Query the catalog
	pois, err := h.catalogService.FindNearby(r.Context(), center, radius)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, errors.ErrUpstreamFailure.Code, errors.ErrUpstreamFailure.Message, errors.ErrUpstreamFailure.Status))
		return
	}
	writeJSON(w, http.StatusOK, services.NewPlacesResponse(pois))
}

func parseLocationParam(raw string) (models.Coordinate, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("expected lat,lng, got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	c := models.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return models.Coordinate{}, models.ErrInvalidCoordinate
	}
	return c, nil
}
