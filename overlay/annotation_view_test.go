package overlay

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-places/models"
	"testing"
)

func newTestAnnotation(t *testing.T, name string, lat, lon float64) *models.Annotation {
	t.Helper()
	record, err := models.NewPOIRecord(models.Coordinate{Latitude: lat, Longitude: lon}, "ref-"+name, name, "")
	require.NoError(t, err)
	return models.NewAnnotation(record)
}

func defaultView() *AnnotationView {
	return NewAnnotationView(Rect{Width: DefaultWidgetWidth, Height: DefaultWidgetHeight})
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "1.25 km", FormatDistance(1254))
	assert.Equal(t, "0.00 km", FormatDistance(0))
	assert.Equal(t, "12.00 km", FormatDistance(12000))
}

func TestAttachBuildsStackedLabels(t *testing.T) {
	a := newTestAnnotation(t, "Cafe", 1, 1)
	a.SetDistanceFromUser(1254)
	v := defaultView()
	require.Equal(t, Detached, v.State())

	v.Attach(a, nil)

	assert.Equal(t, Attached, v.State())
	assert.Same(t, a, v.Annotation())
	title, ok := v.TitleLabel()
	require.True(t, ok)
	distance, ok := v.DistanceLabel()
	require.True(t, ok)
	assert.Equal(t, "Cafe", title.Text)
	assert.Equal(t, Rect{X: 10, Y: 0, Width: 150, Height: 30}, title.Frame)
	assert.Equal(t, "1.25 km", distance.Text)
	assert.Equal(t, Rect{X: 10, Y: 30, Width: 150, Height: 20}, distance.Frame)
}

func TestLayoutIsIdempotent(t *testing.T) {
	v := defaultView()
	v.Attach(newTestAnnotation(t, "Museum", 1, 1), nil)

	require.NoError(t, v.Layout())
	title1, _ := v.TitleLabel()
	distance1, _ := v.DistanceLabel()
	require.NoError(t, v.Layout())
	title2, _ := v.TitleLabel()
	distance2, _ := v.DistanceLabel()

	assert.Equal(t, LaidOut, v.State())
	assert.Equal(t, title1, title2)
	assert.Equal(t, distance1, distance2)
}

func TestLayoutFollowsResizeAndRefreshesDistance(t *testing.T) {
	a := newTestAnnotation(t, "Park", 1, 1)
	v := defaultView()
	v.Attach(a, nil)
	require.NoError(t, v.Layout())

	a.SetDistanceFromUser(2500)
	v.SetFrame(Rect{X: 40, Y: 80, Width: 200, Height: 50})
	require.NoError(t, v.Layout())

	title, _ := v.TitleLabel()
	distance, _ := v.DistanceLabel()
	assert.Equal(t, "Park", title.Text)
	assert.Equal(t, 200.0, title.Frame.Width)
	assert.Equal(t, Rect{X: 10, Y: 30, Width: 200, Height: 20}, distance.Frame)
	assert.Equal(t, "2.50 km", distance.Text)
}

func TestLayoutOnDetachedViewFails(t *testing.T) {
	v := defaultView()
	assert.ErrorIs(t, v.Layout(), ErrWidgetDetached)

	v.Attach(newTestAnnotation(t, "Bar", 1, 1), nil)
	v.Detach()
	assert.ErrorIs(t, v.Layout(), ErrWidgetDetached)
	assert.Nil(t, v.Annotation())
	_, ok := v.TitleLabel()
	assert.False(t, ok)
}

func TestTouchNotifiesDelegateWithSameInstance(t *testing.T) {
	var touched []AnnotationWidget
	delegate := TouchDelegateFunc(func(w AnnotationWidget) { touched = append(touched, w) })
	v := defaultView()
	v.Attach(newTestAnnotation(t, "Library", 1, 1), delegate)

	v.TouchEnded()

	require.Len(t, touched, 1)
	assert.Same(t, v, touched[0])

	v.TouchEnded()
	assert.Len(t, touched, 2)
}

func TestTouchWithoutDelegateIsDropped(t *testing.T) {
	v := defaultView()
	v.Attach(newTestAnnotation(t, "Library", 1, 1), nil)
	assert.NotPanics(t, v.TouchEnded)
}

func TestTouchAfterDetachIsDropped(t *testing.T) {
	calls := 0
	v := defaultView()
	v.Attach(newTestAnnotation(t, "Library", 1, 1), TouchDelegateFunc(func(AnnotationWidget) { calls++ }))
	v.Detach()

	v.TouchEnded()
	assert.Zero(t, calls)
}

func TestWidgetStateString(t *testing.T) {
	assert.Equal(t, "detached", Detached.String())
	assert.Equal(t, "attached", Attached.String())
	assert.Equal(t, "laid_out", LaidOut.String())
}
