package counter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "giftscout"

// Detail fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
	OutcomeExhausted = "exhausted"
)

// Crawl run statuses.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Query result kinds.
const (
	QueryCached      = "cached"
	QueryAnswered    = "answered"
	QueryEmpty       = "empty"
	QueryUnavailable = "unavailable"
)

var (
	listingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "crawler",
		Name:      "listing_failures_total",
		Help:      "Category listing walks that failed and were restarted or abandoned.",
	})

	detailFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "crawler",
		Name:      "detail_fetches_total",
		Help:      "Product detail fetches by outcome.",
	}, []string{"outcome"})

	malformedPayloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "crawler",
		Name:      "malformed_payloads_total",
		Help:      "Detail payloads rejected by the parser.",
	})

	crawlDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "crawler",
		Name:      "run_duration_seconds",
		Help:      "Duration of full catalog crawls.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"status"})

	queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "answers_total",
		Help:      "Answered threshold queries by result kind.",
	}, []string{"result"})
)

// AddListingFailure counts one failed listing walk.
func AddListingFailure() {
	listingFailures.Inc()
}

// AddDetailFetch counts one finished detail fetch.
func AddDetailFetch(outcome string) {
	detailFetches.WithLabelValues(outcome).Inc()
}

func AddMalformed() {
	malformedPayloads.Inc()
}

// ObserveCrawl records the duration of a crawl run.
func ObserveCrawl(status string, d time.Duration) {
	crawlDuration.WithLabelValues(status).Observe(d.Seconds())
}

// AddQuery counts one answered query by its Query* kind.
func AddQuery(result string) {
	queries.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
