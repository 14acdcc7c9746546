package overlay

import (
	"errors"
	"fmt"
	"github.com/paulmach/orb/geo"
	"go-places/models"
	"math"
	"sort"
)

var ErrWidgetNotFound = errors.New("no attached widget for annotation")

const (
	DefaultMaxVisibleAnnotations  = 30
	DefaultHeadingSmoothingFactor = 0.05
)

// Config tunes the overlay engine.
type Config struct {
	// MaxVisibleAnnotations caps how many widgets are attached at once.
	MaxVisibleAnnotations int
	// HeadingSmoothingFactor in (0,1]. Low values track smoothly but lag,
	// high values follow the compass closely but jitter.
	HeadingSmoothingFactor float64
	// MaxDistance hides annotations farther than this many meters. Zero
	// disables the cutoff.
	MaxDistance float64
}

func DefaultConfig() Config {
	return Config{
		MaxVisibleAnnotations:  DefaultMaxVisibleAnnotations,
		HeadingSmoothingFactor: DefaultHeadingSmoothingFactor,
	}
}

func (c Config) normalized() Config {
	if c.MaxVisibleAnnotations <= 0 {
		c.MaxVisibleAnnotations = DefaultMaxVisibleAnnotations
	}
	if c.HeadingSmoothingFactor <= 0 || math.IsNaN(c.HeadingSmoothingFactor) {
		c.HeadingSmoothingFactor = DefaultHeadingSmoothingFactor
	}
	if c.HeadingSmoothingFactor > 1 {
		c.HeadingSmoothingFactor = 1
	}
	if c.MaxDistance < 0 {
		c.MaxDistance = 0
	}
	return c
}

// DataSource hands the engine an attached widget for an annotation that just
// became visible.
type DataSource interface {
	ViewForAnnotation(annotation *models.Annotation) AnnotationWidget
}

// Engine keeps the AR session's annotation set, maintains each annotation's
// distance from the user and decides which annotations get a widget. It is
// not safe for concurrent use; drive it from a single execution context.
type Engine struct {
	cfg         Config
	source      DataSource
	annotations []*models.Annotation
	widgets     map[string]AnnotationWidget
	visible     []string
	location    *models.Coordinate
	heading     float64
	hasHeading  bool
}

func NewEngine(cfg Config, source DataSource) *Engine {
	return &Engine{
		cfg:     cfg.normalized(),
		source:  source,
		widgets: make(map[string]AnnotationWidget),
	}
}

// AddAnnotation appends to the known-annotation set.
func (e *Engine) AddAnnotation(annotation *models.Annotation) {
	e.annotations = append(e.annotations, annotation)
	if e.location != nil {
		e.updateDistance(annotation)
		e.reconcile()
	}
}

// SetAnnotations replaces the known-annotation set, detaching every widget.
// Passing nil clears the session.
func (e *Engine) SetAnnotations(annotations []*models.Annotation) {
	// Drop every widget first; reconcile attaches fresh ones below
	for _, id := range e.visible {
		e.widgets[id].Detach()
		delete(e.widgets, id)
	}
	e.visible = nil
	e.annotations = append([]*models.Annotation(nil), annotations...)
	if e.location != nil {
		for _, a := range e.annotations {
			e.updateDistance(a)
		}
		e.reconcile()
	}
}

func (e *Engine) Annotations() []*models.Annotation {
	return append([]*models.Annotation(nil), e.annotations...)
}

// UpdateLocation recomputes every distance and the visible set.
func (e *Engine) UpdateLocation(sample models.LocationSample) {
	loc := sample.Coordinate
	e.location = &loc
	// Refresh distances before picking the nearest set
	for _, a := range e.annotations {
		e.updateDistance(a)
	}
	// Samples without a compass reading carry a negative heading
	if sample.Heading >= 0 {
		e.smoothHeading(sample.Heading)
	}
	e.reconcile()
}

// UpdateHeading feeds a compass reading in degrees and re-lays out visible
// widgets. Negative readings are unknown and ignored.
func (e *Engine) UpdateHeading(degrees float64) {
	if degrees < 0 || math.IsNaN(degrees) {
		return
	}
	e.smoothHeading(degrees)
	e.layoutVisible()
}

// Heading is the smoothed heading, false until one has been reported.
func (e *Engine) Heading() (float64, bool) {
	return e.heading, e.hasHeading
}

func (e *Engine) smoothHeading(degrees float64) {
	degrees = math.Mod(degrees, 360)
	if !e.hasHeading {
		e.heading = degrees
		e.hasHeading = true
		return
	}
	// Signed shortest arc from the current heading, in (-180, 180]
	delta := math.Mod(degrees-e.heading+540, 360) - 180
	h := math.Mod(e.heading+e.cfg.HeadingSmoothingFactor*delta+360, 360)
	e.heading = h
}

// Visible returns the attached widgets, nearest annotation first.
func (e *Engine) Visible() []AnnotationWidget {
	out := make([]AnnotationWidget, 0, len(e.visible))
	for _, id := range e.visible {
		out = append(out, e.widgets[id])
	}
	return out
}

// Widget finds the attached widget for an annotation id.
func (e *Engine) Widget(annotationID string) (AnnotationWidget, bool) {
	w, ok := e.widgets[annotationID]
	return w, ok
}

// frameSetter is implemented by widgets the host can move or resize.
type frameSetter interface {
	SetFrame(frame Rect)
}

// MoveWidget applies a host-reported frame to an attached widget and lays it
// out again, so its bands follow the new width.
func (e *Engine) MoveWidget(annotationID string, frame Rect) error {
	w, ok := e.widgets[annotationID]
	if !ok {
		return ErrWidgetNotFound
	}
	fs, ok := w.(frameSetter)
	if !ok {
		return fmt.Errorf("widget %T cannot be moved", w)
	}
	fs.SetFrame(frame)
	return w.Layout()
}

func (e *Engine) updateDistance(a *models.Annotation) {
	a.SetDistanceFromUser(geo.Distance(e.location.Point(), a.Coordinate().Point()))
}

func (e *Engine) reconcile() {
	// Filter by cutoff, then nearest first, then cap
	candidates := make([]*models.Annotation, 0, len(e.annotations))
	for _, a := range e.annotations {
		if e.cfg.MaxDistance > 0 && a.DistanceFromUser() > e.cfg.MaxDistance {
			continue
		}
		candidates = append(candidates, a)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceFromUser() < candidates[j].DistanceFromUser()
	})
	if len(candidates) > e.cfg.MaxVisibleAnnotations {
		candidates = candidates[:e.cfg.MaxVisibleAnnotations]
	}

	// Detach widgets that fell out of the set
	keep := make(map[string]bool, len(candidates))
	for _, a := range candidates {
		keep[a.ID()] = true
	}
	for _, id := range e.visible {
		if !keep[id] {
			e.widgets[id].Detach()
			delete(e.widgets, id)
		}
	}

	// Ask the data source for widgets of newly visible annotations
	e.visible = e.visible[:0]
	for _, a := range candidates {
		if _, ok := e.widgets[a.ID()]; !ok {
			w := e.source.ViewForAnnotation(a)
			if w == nil {
				continue
			}
			e.widgets[a.ID()] = w
		}
		e.visible = append(e.visible, a.ID())
	}
	e.layoutVisible()
}

func (e *Engine) layoutVisible() {
	for _, id := range e.visible {
		_ = e.widgets[id].Layout()
	}
}
