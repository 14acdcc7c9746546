package services

import (
	"go-places/models"
	"go-places/utils/logger"
	"go-places/utils/metrics"
)

const (
	DefaultAccuracyThreshold = 100.0
	DefaultMapSpanDegrees    = 0.014
	DefaultSearchRadius      = 1000.0
)

type GateConfig struct {
	// AccuracyThreshold in meters; a sample qualifies when strictly better.
	AccuracyThreshold float64
	MapSpanDegrees    float64
	SearchRadius      float64
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		AccuracyThreshold: DefaultAccuracyThreshold,
		MapSpanDegrees:    DefaultMapSpanDegrees,
		SearchRadius:      DefaultSearchRadius,
	}
}

// Ingester starts one POI ingestion around a coordinate without blocking.
type Ingester interface {
	Start(center models.Coordinate, radiusMeters float64)
}

// ProximityGate waits for the first sufficiently accurate location sample
// and then starts ingestion exactly once.
type ProximityGate struct {
	cfg      GateConfig
	state    *SessionState
	location LocationService
	mapView  MapView
	ingester Ingester
}

func NewProximityGate(cfg GateConfig, state *SessionState, location LocationService, mapView MapView, ingester Ingester) *ProximityGate {
	return &ProximityGate{
		cfg:      cfg,
		state:    state,
		location: location,
		mapView:  mapView,
		ingester: ingester,
	}
}

// Evaluate reports whether this sample started ingestion.
func (g *ProximityGate) Evaluate(sample models.LocationSample) bool {
	logger.L().Debug("location sample", "accuracy", sample.HorizontalAccuracy)
	// Already fired for this session
	if g.state.HasIngested() {
		return false
	}
	// Negative or NaN accuracy marks an invalid fix
	acc := sample.HorizontalAccuracy
	if !(acc >= 0 && acc < g.cfg.AccuracyThreshold) {
		return false
	}
	// Only the sample that wins the flag goes on
	if !g.state.MarkIngested() {
		return false
	}

	// Stop updates, center the map and start the one ingestion
	g.location.StopUpdating()
	g.mapView.SetRegion(sample.Coordinate, g.cfg.MapSpanDegrees)
	g.ingester.Start(sample.Coordinate, g.cfg.SearchRadius)

	metrics.GateFiredTotal.Inc()
	logger.L().Info("proximity gate fired",
		"lat", sample.Coordinate.Latitude,
		"lon", sample.Coordinate.Longitude,
		"accuracy", acc,
		"radius", g.cfg.SearchRadius)
	return true
}
