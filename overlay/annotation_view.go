package overlay

import (
	"errors"
	"fmt"
	"go-places/models"
	"sync"
)

var ErrWidgetDetached = errors.New("annotation widget is detached")

// WidgetState is the lifecycle position of an annotation widget.
type WidgetState int

const (
	Detached WidgetState = iota
	Attached
	LaidOut
)

func (s WidgetState) String() string {
	switch s {
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	case LaidOut:
		return "laid_out"
	}
	return fmt.Sprintf("WidgetState(%d)", int(s))
}

// Fixed stacked layout of the two bands.
const (
	labelInset     = 10
	titleHeight    = 30
	distanceHeight = 20

	DefaultWidgetWidth  = 150
	DefaultWidgetHeight = 50
)

// AnnotationWidget is the capability set the AR overlay engine drives for
// each visible annotation.
type AnnotationWidget interface {
	Attach(annotation *models.Annotation, delegate TouchDelegate)
	Layout() error
	TouchEnded()
	Detach()
	State() WidgetState
	Annotation() *models.Annotation
}

// AnnotationView shows a title band above a live distance band.
type AnnotationView struct {
	mu            sync.Mutex
	state         WidgetState
	frame         Rect
	annotation    *models.Annotation
	delegate      TouchDelegate
	titleLabel    *Label
	distanceLabel *Label
}

func NewAnnotationView(frame Rect) *AnnotationView {
	return &AnnotationView{frame: frame}
}

// Attach binds the annotation and delegate and builds the labels. Attaching
// an already attached view rebinds it and rebuilds its content.
func (v *AnnotationView) Attach(annotation *models.Annotation, delegate TouchDelegate) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.annotation = annotation
	v.delegate = delegate
	v.titleLabel = &Label{}
	v.distanceLabel = &Label{}
	v.layoutLocked()
	if annotation != nil {
		v.titleLabel.Text = annotation.Title()
	}
	v.state = Attached
}

// Layout resets both label frames to the stacked layout for the current
// frame width and refreshes the distance text. It never rebuilds labels.
func (v *AnnotationView) Layout() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == Detached {
		return ErrWidgetDetached
	}
	v.layoutLocked()
	v.state = LaidOut
	return nil
}

func (v *AnnotationView) layoutLocked() {
	v.titleLabel.Frame = Rect{X: labelInset, Y: 0, Width: v.frame.Width, Height: titleHeight}
	v.distanceLabel.Frame = Rect{X: labelInset, Y: titleHeight, Width: v.frame.Width, Height: distanceHeight}
	if v.annotation != nil {
		v.distanceLabel.Text = FormatDistance(v.annotation.DistanceFromUser())
	}
}

// TouchEnded reports a touch release to the bound delegate, passing the view
// itself. Without a delegate, or once detached, the touch is dropped.
func (v *AnnotationView) TouchEnded() {
	v.mu.Lock()
	delegate := v.delegate
	attached := v.state != Detached
	v.mu.Unlock()
	if !attached || delegate == nil {
		return
	}
	delegate.OnAnnotationWidgetTouched(v)
}

func (v *AnnotationView) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = Detached
	v.annotation = nil
	v.delegate = nil
	v.titleLabel = nil
	v.distanceLabel = nil
}

func (v *AnnotationView) State() WidgetState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *AnnotationView) Annotation() *models.Annotation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.annotation
}

func (v *AnnotationView) Frame() Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// SetFrame moves or resizes the view; labels follow on the next Layout.
func (v *AnnotationView) SetFrame(frame Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = frame
}

// TitleLabel returns a copy of the title band, false while detached.
func (v *AnnotationView) TitleLabel() (Label, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.titleLabel == nil {
		return Label{}, false
	}
	return *v.titleLabel, true
}

// DistanceLabel returns a copy of the distance band, false while detached.
func (v *AnnotationView) DistanceLabel() (Label, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.distanceLabel == nil {
		return Label{}, false
	}
	return *v.distanceLabel, true
}

// FormatDistance renders meters as kilometers with two decimals.
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.2f km", meters/1000)
}
