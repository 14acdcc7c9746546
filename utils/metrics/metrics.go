package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	SessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "places_sessions_open",
		Help: "Number of open places sessions",
	})
	SessionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_sessions_expired_total",
		Help: "Sessions closed because their token lifetime ran out",
	})
	LocationSamplesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "places_location_samples_total",
		Help: "Location samples received, by outcome",
	}, []string{"outcome"})
	GateFiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_gate_fired_total",
		Help: "Number of times the proximity gate started an ingestion",
	})
	IngestionSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_ingestion_success_total",
		Help: "Completed POI ingestions",
	})
	IngestionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_ingestion_failures_total",
		Help: "POI ingestions aborted by transport or payload errors",
	})
	IngestionDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "places_ingestion_duration_ms",
		Help:    "POI fetch and parse duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 15000},
	})
	AnnotationsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_annotations_published_total",
		Help: "Annotations published to the map and AR session",
	})
	RecordsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "places_records_dropped_total",
		Help: "Result entries skipped during parsing, by missing field",
	}, []string{"field"})
	WidgetTouchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "places_widget_touches_total",
		Help: "Touch releases delivered to an annotation widget delegate",
	})
	CatalogQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "places_catalog_queries_total",
		Help: "Nearby searches served by the catalog, by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(SessionsOpen)
	prometheus.MustRegister(SessionsExpiredTotal)
	prometheus.MustRegister(LocationSamplesTotal)
	prometheus.MustRegister(GateFiredTotal)
	prometheus.MustRegister(IngestionSuccessTotal)
	prometheus.MustRegister(IngestionFailuresTotal)
	prometheus.MustRegister(IngestionDurationMs)
	prometheus.MustRegister(AnnotationsPublishedTotal)
	prometheus.MustRegister(RecordsDroppedTotal)
	prometheus.MustRegister(WidgetTouchesTotal)
	prometheus.MustRegister(CatalogQueriesTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
