package services

import (
	"github.com/paulmach/orb"
	"go-places/models"
)

// MapView is the 2-D map the session publishes to.
type MapView interface {
	SetRegion(center models.Coordinate, spanDegrees float64)
	AddAnnotation(coordinate models.Coordinate, title string)
}

type MapMarker struct {
	Coordinate models.Coordinate `json:"coordinate"`
	Title      string            `json:"title"`
}

type MapRegion struct {
	Center      models.Coordinate `json:"center"`
	SpanDegrees float64           `json:"span_degrees"`
	Bound       orb.Bound         `json:"bound"`
}

// Contains reports whether the coordinate falls inside the visible window.
func (r MapRegion) Contains(c models.Coordinate) bool {
	return r.Bound.Contains(c.Point())
}

// MapCanvas keeps the map state in memory. It is owned by a session's main
// queue and is not safe for concurrent use.
type MapCanvas struct {
	region  *MapRegion
	markers []MapMarker
}

func NewMapCanvas() *MapCanvas {
	return &MapCanvas{}
}

func (m *MapCanvas) SetRegion(center models.Coordinate, spanDegrees float64) {
	half := spanDegrees / 2
	m.region = &MapRegion{
		Center:      center,
		SpanDegrees: spanDegrees,
		Bound: orb.Bound{
			Min: orb.Point{center.Longitude - half, center.Latitude - half},
			Max: orb.Point{center.Longitude + half, center.Latitude + half},
		},
	}
}

func (m *MapCanvas) AddAnnotation(coordinate models.Coordinate, title string) {
	m.markers = append(m.markers, MapMarker{Coordinate: coordinate, Title: title})
}

func (m *MapCanvas) Region() (MapRegion, bool) {
	if m.region == nil {
		return MapRegion{}, false
	}
	return *m.region, true
}

func (m *MapCanvas) Markers() []MapMarker {
	return append([]MapMarker(nil), m.markers...)
}
