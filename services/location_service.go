package services

import (
	"go-places/models"
	"sync"
	"sync/atomic"
)

// LocationService is the start/stop surface of the device location source.
type LocationService interface {
	StartUpdating()
	StopUpdating()
	Updating() bool
}

// LocationFeed is a push-driven LocationService: samples arrive through
// Deliver and reach the subscriber only while updating is on.
type LocationFeed struct {
	updating atomic.Bool
	mu       sync.Mutex
	handler  func(models.LocationSample)
}

func NewLocationFeed() *LocationFeed {
	return &LocationFeed{}
}

func (f *LocationFeed) Subscribe(handler func(models.LocationSample)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

func (f *LocationFeed) StartUpdating() { f.updating.Store(true) }
func (f *LocationFeed) StopUpdating()  { f.updating.Store(false) }
func (f *LocationFeed) Updating() bool { return f.updating.Load() }

// Deliver hands the sample to the subscriber and reports whether it was
// delivered.
func (f *LocationFeed) Deliver(sample models.LocationSample) bool {
	if !f.updating.Load() {
		return false
	}
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return false
	}
	handler(sample)
	return true
}
