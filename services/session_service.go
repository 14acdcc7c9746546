package services

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"go-places/models"
	"go-places/overlay"
	"go-places/utils/logger"
	"go-places/utils/mainqueue"
	"go-places/utils/metrics"
	"sync"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrWidgetNotVisible = errors.New("no visible widget for annotation")
)

const DefaultSweepInterval = time.Minute

// Location sample outcomes.
const (
	LocationIgnored = "ignored"
	LocationWaiting = "waiting"
	LocationFired   = "fired"
)

type SessionOptions struct {
	Gate         GateConfig
	Overlay      overlay.Config
	FetchTimeout time.Duration
}

func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Gate:         DefaultGateConfig(),
		Overlay:      overlay.DefaultConfig(),
		FetchTimeout: 15 * time.Second,
	}
}

// PlacesSession is one device's view: the proximity gate, the ingestion
// pipeline, the map and the AR overlay, all owned by one main queue.
type PlacesSession struct {
	id        string
	createdAt time.Time
	expiresAt time.Time // zero means the session never expires
	cancel    context.CancelFunc

	queue    *mainqueue.Queue
	state    *SessionState
	feed     *LocationFeed
	mapView  *MapCanvas
	engine   *overlay.Engine
	gate     *ProximityGate
	pipeline *IngestionPipeline

	lastTouched *models.Annotation
	touches     int
}

// NewPlacesSession opens a session that lives until Close.
func NewPlacesSession(id string, provider PlacesProvider, opts SessionOptions) *PlacesSession {
	return newPlacesSession(id, provider, opts, time.Now(), 0)
}

func newPlacesSession(id string, provider PlacesProvider, opts SessionOptions, createdAt time.Time, ttl time.Duration) *PlacesSession {
	// The fetch context outlives requests and ends with the session
	ctx, cancel := context.WithCancel(context.Background())
	s := &PlacesSession{
		id:        id,
		createdAt: createdAt,
		cancel:    cancel,
		queue:     mainqueue.New(),
		state:     NewSessionState(),
		feed:      NewLocationFeed(),
		mapView:   NewMapCanvas(),
	}
	if ttl > 0 {
		s.expiresAt = createdAt.Add(ttl)
	}

	// Wire engine, pipeline and gate; the session is the engine's widget factory
	s.engine = overlay.NewEngine(opts.Overlay, s)
	s.pipeline = NewIngestionPipeline(ctx, provider, s.queue, s.state, s.mapView, s.engine, opts.FetchTimeout)
	s.gate = NewProximityGate(opts.Gate, s.state, s.feed, s.mapView, s.pipeline)

	// Location samples reach the gate only while updates are on
	s.feed.Subscribe(func(sample models.LocationSample) { s.gate.Evaluate(sample) })
	s.feed.StartUpdating()
	return s
}

func (s *PlacesSession) ID() string { return s.id }

// ExpiresAt is zero for sessions without a lifetime.
func (s *PlacesSession) ExpiresAt() time.Time { return s.expiresAt }

func (s *PlacesSession) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// ReportLocation routes a sample through the location feed to the gate and
// to the AR engine, which tracks the user regardless of the gate.
func (s *PlacesSession) ReportLocation(sample models.LocationSample) (string, error) {
	outcome := LocationIgnored
	err := s.queue.Sync(func() {
		// Compare the flag around delivery to tell which sample fired the gate
		before := s.state.HasIngested()
		if s.feed.Deliver(sample) {
			outcome = LocationWaiting
			if !before && s.state.HasIngested() {
				outcome = LocationFired
			}
		}
		s.engine.UpdateLocation(sample)
	})
	if err != nil {
		return "", err
	}
	metrics.LocationSamplesTotal.WithLabelValues(outcome).Inc()
	return outcome, nil
}

// ReportHeading feeds a compass reading to the AR engine, which re-lays out
// the visible widgets. Negative readings are ignored.
func (s *PlacesSession) ReportHeading(degrees float64) error {
	return s.queue.Sync(func() { s.engine.UpdateHeading(degrees) })
}

// ViewForAnnotation builds the widget the engine shows for a newly visible
// annotation, with this session as its touch delegate.
func (s *PlacesSession) ViewForAnnotation(annotation *models.Annotation) overlay.AnnotationWidget {
	view := overlay.NewAnnotationView(overlay.Rect{Width: overlay.DefaultWidgetWidth, Height: overlay.DefaultWidgetHeight})
	view.Attach(annotation, s)
	return view
}

func (s *PlacesSession) OnAnnotationWidgetTouched(widget overlay.AnnotationWidget) {
	annotation := widget.Annotation()
	if annotation == nil {
		return
	}
	s.lastTouched = annotation
	s.touches++
	metrics.WidgetTouchesTotal.Inc()
	logger.L().Info("Tapped view for POI", "session", s.id, "title", annotation.Title())
}

// TouchWidget delivers a touch release to the visible widget of an annotation.
func (s *PlacesSession) TouchWidget(annotationID string) error {
	var touchErr error
	err := s.queue.Sync(func() {
		widget, ok := s.engine.Widget(annotationID)
		if !ok {
			touchErr = ErrWidgetNotVisible
			return
		}
		widget.TouchEnded()
	})
	if err != nil {
		return err
	}
	return touchErr
}

// MoveWidget applies a frame reported by the client for a visible widget.
func (s *PlacesSession) MoveWidget(annotationID string, frame overlay.Rect) error {
	var moveErr error
	err := s.queue.Sync(func() {
		moveErr = s.engine.MoveWidget(annotationID, frame)
	})
	if err != nil {
		return err
	}
	if errors.Is(moveErr, overlay.ErrWidgetNotFound) {
		return ErrWidgetNotVisible
	}
	return moveErr
}

// WaitIngestion blocks until a started ingestion has finished or ctx ends.
func (s *PlacesSession) WaitIngestion(ctx context.Context) error {
	select {
	case <-s.pipeline.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight fetch, detaches every widget and stops the main
// queue. Closing twice is harmless.
func (s *PlacesSession) Close() {
	s.cancel()
	// Fails with ErrClosed when already closed
	_ = s.queue.Sync(func() { s.engine.SetAnnotations(nil) })
	s.queue.Close()
}

type SessionStatus struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	HasIngested     bool      `json:"has_ingested"`
	Updating        bool      `json:"updating"`
	AnnotationCount int       `json:"annotation_count"`
	VisibleCount    int       `json:"visible_count"`
	LastError       string    `json:"last_error,omitempty"`
	LastTouched     string    `json:"last_touched,omitempty"`
	Touches         int       `json:"touches"`
	Heading         *float64  `json:"heading,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (s *PlacesSession) Status() (SessionStatus, error) {
	var st SessionStatus
	err := s.queue.Sync(func() {
		st = SessionStatus{
			ID:              s.id,
			CreatedAt:       s.createdAt,
			HasIngested:     s.state.HasIngested(),
			Updating:        s.feed.Updating(),
			AnnotationCount: len(s.state.annotations),
			VisibleCount:    len(s.engine.Visible()),
			Touches:         s.touches,
			ExpiresAt:       s.expiresAt,
		}
		if h, ok := s.engine.Heading(); ok {
			st.Heading = &h
		}
		if err := s.state.LastError(); err != nil {
			st.LastError = err.Error()
		}
		if s.lastTouched != nil {
			st.LastTouched = s.lastTouched.Title()
		}
	})
	return st, err
}

type AnnotationSummary struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Coordinate        models.Coordinate `json:"coordinate"`
	ExternalReference string            `json:"reference"`
	Address           string            `json:"address"`
	DistanceMeters    float64           `json:"distance_meters"`
	Distance          string            `json:"distance"`
}

func summarize(a *models.Annotation) AnnotationSummary {
	d := a.DistanceFromUser()
	return AnnotationSummary{
		ID:                a.ID(),
		Title:             a.Title(),
		Coordinate:        a.Coordinate(),
		ExternalReference: a.Record().ExternalReference(),
		Address:           a.Record().Address(),
		DistanceMeters:    d,
		Distance:          overlay.FormatDistance(d),
	}
}

// Annotations lists known annotations in arrival order.
func (s *PlacesSession) Annotations() ([]AnnotationSummary, error) {
	var out []AnnotationSummary
	err := s.queue.Sync(func() {
		known := s.state.KnownAnnotations()
		out = make([]AnnotationSummary, 0, len(known))
		for _, a := range known {
			out = append(out, summarize(a))
		}
	})
	return out, err
}

type MapSnapshot struct {
	Region  *MapRegion  `json:"region"`
	Markers []MapMarker `json:"markers"`
}

func (s *PlacesSession) Map() (MapSnapshot, error) {
	var snap MapSnapshot
	err := s.queue.Sync(func() {
		if region, ok := s.mapView.Region(); ok {
			snap.Region = &region
		}
		snap.Markers = s.mapView.Markers()
	})
	return snap, err
}

type WidgetSnapshot struct {
	AnnotationID  string        `json:"annotation_id"`
	State         string        `json:"state"`
	Frame         overlay.Rect  `json:"frame"`
	TitleLabel    overlay.Label `json:"title_label"`
	DistanceLabel overlay.Label `json:"distance_label"`
}

// Widgets lists the attached overlay widgets, nearest first.
func (s *PlacesSession) Widgets() ([]WidgetSnapshot, error) {
	var out []WidgetSnapshot
	err := s.queue.Sync(func() {
		visible := s.engine.Visible()
		out = make([]WidgetSnapshot, 0, len(visible))
		for _, w := range visible {
			snap := WidgetSnapshot{State: w.State().String()}
			if a := w.Annotation(); a != nil {
				snap.AnnotationID = a.ID()
			}
			if view, ok := w.(*overlay.AnnotationView); ok {
				snap.Frame = view.Frame()
				snap.TitleLabel, _ = view.TitleLabel()
				snap.DistanceLabel, _ = view.DistanceLabel()
			}
			out = append(out, snap)
		}
	})
	return out, err
}

// SessionService keeps the open sessions by id. Sessions expire with their
// token and are closed lazily on lookup or by the janitor.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*PlacesSession
	provider PlacesProvider
	opts     SessionOptions
	tokens   *TokenService
	now      func() time.Time
}

func NewSessionService(provider PlacesProvider, opts SessionOptions, tokens *TokenService) *SessionService {
	return &SessionService{
		sessions: make(map[string]*PlacesSession),
		provider: provider,
		opts:     opts,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Create opens a session and returns it with a bearer token bound to its id.
// The session expires together with the token.
func (s *SessionService) Create() (*PlacesSession, string, error) {
	id := uuid.New().String()
	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, "", err
	}
	session := newPlacesSession(id, s.provider, s.opts, s.now(), s.tokens.TTL())

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	metrics.SessionsOpen.Inc()
	logger.L().Info("session opened", "session", id, "expires_at", session.ExpiresAt())
	return session, token, nil
}

// Get returns an open session. An expired session is closed on the spot and
// reported as not found.
func (s *SessionService) Get(id string) (*PlacesSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.expired(s.now()) {
		if s.remove(id, session) {
			s.closeSession(session, "expired")
		}
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.closeSession(session, "closed")
	return nil
}

// Len counts the sessions still registered.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapExpired closes every session whose lifetime has run out and reports how
// many it closed.
func (s *SessionService) ReapExpired() int {
	now := s.now()

	// Unregister under the lock, close outside it
	s.mu.Lock()
	var expired []*PlacesSession
	for id, session := range s.sessions {
		if session.expired(now) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.closeSession(session, "expired")
	}
	return len(expired)
}

// StartJanitor reaps expired sessions every interval until ctx ends.
func (s *SessionService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.ReapExpired(); n > 0 {
					logger.L().Info("expired sessions reaped", "count", n)
				}
			}
		}
	}()
}

func (s *SessionService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*PlacesSession)
	s.mu.Unlock()
	for _, session := range sessions {
		s.closeSession(session, "shutdown")
	}
}

// remove unregisters id if it still maps to session.
func (s *SessionService) remove(id string, session *PlacesSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] != session {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionService) closeSession(session *PlacesSession, reason string) {
	session.Close()
	metrics.SessionsOpen.Dec()
	if reason == "expired" {
		metrics.SessionsExpiredTotal.Inc()
	}
	logger.L().Info("session closed", "session", session.ID(), "reason", reason)
}
