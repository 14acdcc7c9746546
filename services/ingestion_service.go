package services

import (
	"context"
	"fmt"
	"go-places/models"
	"go-places/utils/logger"
	"go-places/utils/mainqueue"
	"go-places/utils/metrics"
	"sync"
	"time"
)

// ARSession is the AR overlay engine's known-annotation set.
type ARSession interface {
	AddAnnotation(annotation *models.Annotation)
}

// IngestionPipeline fetches nearby places once, turns them into annotations
// and publishes them on the session's main queue.
type IngestionPipeline struct {
	ctx      context.Context
	provider PlacesProvider
	queue    *mainqueue.Queue
	state    *SessionState
	mapView  MapView
	ar       ARSession
	timeout  time.Duration

	once sync.Once
	done chan struct{}
}

func NewIngestionPipeline(ctx context.Context, provider PlacesProvider, queue *mainqueue.Queue, state *SessionState, mapView MapView, ar ARSession, timeout time.Duration) *IngestionPipeline {
	return &IngestionPipeline{
		ctx:      ctx,
		provider: provider,
		queue:    queue,
		state:    state,
		mapView:  mapView,
		ar:       ar,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
}

// Start runs Run on its own goroutine. Only the first call has any effect.
func (p *IngestionPipeline) Start(center models.Coordinate, radiusMeters float64) {
	p.once.Do(func() {
		go func() {
			defer close(p.done)
			if err := p.Run(p.ctx, center, radiusMeters); err != nil {
				logger.L().Warn("poi ingestion failed", "err", err)
			}
		}()
	})
}

// Done is closed once a started ingestion has finished, successfully or not.
func (p *IngestionPipeline) Done() <-chan struct{} {
	return p.done
}

// Run fetches and parses off the main queue, then publishes every valid
// record in payload order in a single main-queue hop. On failure nothing is
// published and the error is recorded on the session state.
func (p *IngestionPipeline) Run(ctx context.Context, center models.Coordinate, radiusMeters float64) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// Fetch and parse off the main queue
	t0 := time.Now()
	parsed, err := p.fetch(ctx, center, radiusMeters)
	metrics.IngestionDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.IngestionFailuresTotal.Inc()
		_ = p.queue.Sync(func() { p.state.recordFailure(err) })
		return err
	}

	// Publish everything in one hop
	var published int
	if err := p.queue.Sync(func() { published = p.publish(parsed.Records) }); err != nil {
		return fmt.Errorf("publish annotations: %w", err)
	}
	metrics.IngestionSuccessTotal.Inc()
	logger.L().Info("poi ingestion finished", "published", published, "dropped", parsed.Dropped)
	return nil
}

func (p *IngestionPipeline) fetch(ctx context.Context, center models.Coordinate, radiusMeters float64) (ParseResult, error) {
	payload, err := p.provider.NearbySearch(ctx, center, radiusMeters)
	if err != nil {
		return ParseResult{}, fmt.Errorf("nearby search: %w", err)
	}
	parsed, err := ParsePlaces(payload)
	if err != nil {
		return ParseResult{}, err
	}
	return parsed, nil
}

// publish runs on the main queue.
func (p *IngestionPipeline) publish(records []models.POIRecord) int {
	n := 0
	for _, record := range records {
		annotation := models.NewAnnotation(record)
		if err := p.state.Append(annotation); err != nil {
			logger.L().Error("dropping annotation", "err", err)
			continue
		}
		p.mapView.AddAnnotation(annotation.Coordinate(), annotation.Title())
		p.ar.AddAnnotation(annotation)
		n++
	}
	metrics.AnnotationsPublishedTotal.Add(float64(n))
	return n
}
