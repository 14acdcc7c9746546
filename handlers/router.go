package handlers

import (
	"github.com/gorilla/mux"
	"go-places/middleware"
	"go-places/services"
	"net/http"
)

type RouterOptions struct {
	SessionService *services.SessionService
	// CatalogService is optional; without it the nearby-search endpoint is
	// not mounted.
	CatalogService *services.CatalogService
	JWTSecret      string
	AllowedOrigins []string
	Metrics        http.Handler
}

func NewRouter(opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	// Recover panics first, then answer CORS preflights
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	// Health and metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": opts.SessionService.Len()})
	}).Methods("GET")
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods("GET")
	}

	sessionHandler := NewSessionHandler(opts.SessionService)
	locationHandler := NewLocationHandler(opts.SessionService)
	overlayHandler := NewOverlayHandler(opts.SessionService)

	// Public session creation
	r.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST", "OPTIONS")

	// Session routes, authenticated by the session token
	sessionRouter := r.PathPrefix("/session").Subrouter()
	sessionRouter.Use(middleware.JWTMiddleware(opts.JWTSecret))
	sessionRouter.HandleFunc("", sessionHandler.GetSession).Methods("GET", "OPTIONS")
	sessionRouter.HandleFunc("", sessionHandler.CloseSession).Methods("DELETE")
	sessionRouter.HandleFunc("/location", locationHandler.ReportLocation).Methods("POST", "OPTIONS")
	sessionRouter.HandleFunc("/heading", locationHandler.ReportHeading).Methods("POST", "OPTIONS")
	sessionRouter.HandleFunc("/annotations", overlayHandler.GetAnnotations).Methods("GET", "OPTIONS")
	sessionRouter.HandleFunc("/map", overlayHandler.GetMap).Methods("GET", "OPTIONS")
	sessionRouter.HandleFunc("/widgets", overlayHandler.GetWidgets).Methods("GET", "OPTIONS")
	sessionRouter.HandleFunc("/widgets/{id}/touch", overlayHandler.TouchWidget).Methods("POST", "OPTIONS")
	sessionRouter.HandleFunc("/widgets/{id}/frame", overlayHandler.MoveWidget).Methods("POST", "OPTIONS")

	// Catalog routes
	if opts.CatalogService != nil {
		poiHandler := NewPOIHandler(opts.CatalogService)
		r.HandleFunc("/places/nearbysearch/json", poiHandler.NearbySearch).Methods("GET", "OPTIONS")
	}

	return r
}
