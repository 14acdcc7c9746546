package models

import (
	"github.com/google/uuid"
	"math"
	"sync/atomic"
)

// UnnamedPlaceTitle is shown when the source record carries an empty name.
const UnnamedPlaceTitle = "Unnamed place"

// Annotation wraps a POIRecord for presentation on the map and in the AR
// overlay. Everything except the distance is fixed at creation; the distance
// is written by the AR engine and read by widgets, possibly from different
// goroutines.
type Annotation struct {
	id       string
	record   POIRecord
	title    string
	distance atomic.Uint64
}

func NewAnnotation(record POIRecord) *Annotation {
	title := record.Name()
	if title == "" {
		title = UnnamedPlaceTitle
	}
	return &Annotation{
		id:     uuid.New().String(),
		record: record,
		title:  title,
	}
}

func (a *Annotation) ID() string             { return a.id }
func (a *Annotation) Record() POIRecord      { return a.record }
func (a *Annotation) Title() string          { return a.title }
func (a *Annotation) Coordinate() Coordinate { return a.record.Coordinate() }

// DistanceFromUser is in meters and never negative.
func (a *Annotation) DistanceFromUser() float64 {
	return math.Float64frombits(a.distance.Load())
}

// SetDistanceFromUser stores meters; negative and NaN inputs are stored as 0.
func (a *Annotation) SetDistanceFromUser(meters float64) {
	if math.IsNaN(meters) || meters < 0 {
		meters = 0
	}
	a.distance.Store(math.Float64bits(meters))
}
