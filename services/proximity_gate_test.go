package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-places/models"
	"sync"
	"testing"
)

type fakeIngester struct {
	mu      sync.Mutex
	centers []models.Coordinate
	radii   []float64
}

func (f *fakeIngester) Start(center models.Coordinate, radiusMeters float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers = append(f.centers, center)
	f.radii = append(f.radii, radiusMeters)
}

func (f *fakeIngester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.centers)
}

type gateFixture struct {
	state    *SessionState
	feed     *LocationFeed
	mapView  *MapCanvas
	ingester *fakeIngester
	gate     *ProximityGate
}

func newGateFixture() *gateFixture {
	f := &gateFixture{
		state:    NewSessionState(),
		feed:     NewLocationFeed(),
		mapView:  NewMapCanvas(),
		ingester: &fakeIngester{},
	}
	f.gate = NewProximityGate(DefaultGateConfig(), f.state, f.feed, f.mapView, f.ingester)
	f.feed.Subscribe(func(s models.LocationSample) { f.gate.Evaluate(s) })
	f.feed.StartUpdating()
	return f
}

func sample(accuracy, lat, lon float64) models.LocationSample {
	return models.LocationSample{
		Coordinate:         models.Coordinate{Latitude: lat, Longitude: lon},
		HorizontalAccuracy: accuracy,
		Heading:            -1,
	}
}

func TestGateFiresOnFirstAccurateSample(t *testing.T) {
	f := newGateFixture()
	samples := []models.LocationSample{
		sample(500, 1.0, 103.0),
		sample(200, 1.1, 103.1),
		sample(80, 1.2, 103.2),
		sample(40, 1.3, 103.3),
	}
	for _, s := range samples {
		f.feed.Deliver(s)
	}

	require.Equal(t, 1, f.ingester.calls())
	assert.Equal(t, models.Coordinate{Latitude: 1.2, Longitude: 103.2}, f.ingester.centers[0])
	assert.Equal(t, 1000.0, f.ingester.radii[0])
	assert.True(t, f.state.HasIngested())
	assert.False(t, f.feed.Updating(), "location updates stop once the gate fires")

	region, ok := f.mapView.Region()
	require.True(t, ok)
	assert.Equal(t, models.Coordinate{Latitude: 1.2, Longitude: 103.2}, region.Center)
	assert.Equal(t, 0.014, region.SpanDegrees)
}

func TestGateIgnoresInaccurateSamples(t *testing.T) {
	f := newGateFixture()
	for _, acc := range []float64{500, 200, 100, 150, -1} {
		assert.False(t, f.gate.Evaluate(sample(acc, 1, 1)))
	}
	assert.Zero(t, f.ingester.calls())
	assert.False(t, f.state.HasIngested())
	assert.True(t, f.feed.Updating(), "the feed keeps reporting while the gate waits")
	_, ok := f.mapView.Region()
	assert.False(t, ok)
}

func TestGateFiresExactlyOnceIffAnySampleQualifies(t *testing.T) {
	cases := []struct {
		name       string
		accuracies []float64
		want       int
	}{
		{"empty", nil, 0},
		{"never accurate", []float64{300, 120, 100}, 0},
		{"first accurate", []float64{10, 20, 30}, 1},
		{"last accurate", []float64{300, 99.9}, 1},
		{"many accurate", []float64{50, 40, 30, 20, 10}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newGateFixture()
			for _, acc := range tc.accuracies {
				// Bypass the feed so samples keep arriving after it stops.
				f.gate.Evaluate(sample(acc, 1, 1))
			}
			assert.Equal(t, tc.want, f.ingester.calls())
		})
	}
}

func TestGateFiresAtMostOnceUnderConcurrency(t *testing.T) {
	f := newGateFixture()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.gate.Evaluate(sample(5, 1, 1))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.ingester.calls())
}

func TestGateHonoursConfiguredThreshold(t *testing.T) {
	f := newGateFixture()
	f.gate = NewProximityGate(GateConfig{AccuracyThreshold: 20, MapSpanDegrees: 0.01, SearchRadius: 500}, f.state, f.feed, f.mapView, f.ingester)

	assert.False(t, f.gate.Evaluate(sample(50, 1, 1)))
	assert.True(t, f.gate.Evaluate(sample(10, 1, 1)))
	assert.Equal(t, 500.0, f.ingester.radii[0])
}
