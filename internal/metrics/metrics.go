// Package metrics holds the Prometheus collectors for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "friendshipbank",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "friendshipbank",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "friendshipbank",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)

	friendsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "friendshipbank",
			Subsystem: "ledger",
			Name:      "friends_added_total",
			Help:      "Total number of friends added.",
		},
	)

	friendsCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "friendshipbank",
			Subsystem: "ledger",
			Name:      "clears_total",
			Help:      "Total number of confirmed clear-all actions.",
		},
	)

	transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "friendshipbank",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Total number of transactions recorded, by kind.",
		},
		[]string{"kind"},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "friendshipbank",
			Subsystem: "ledger",
			Name:      "version_conflicts_total",
			Help:      "Total number of writes rejected because the stored data changed.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		friendsAdded,
		friendsCleared,
		transactions,
		conflicts,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// FriendAdded counts a new friend.
func FriendAdded() { friendsAdded.Inc() }

// FriendsCleared counts a confirmed clear-all.
func FriendsCleared() { friendsCleared.Inc() }

// TransactionRecorded counts a transaction of the given kind
// ("transfer", "act", "custom").
func TransactionRecorded(kind string) { transactions.WithLabelValues(kind).Inc() }

// Conflict counts a rejected stale write.
func Conflict() { conflicts.Inc() }

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests matched by a gorilla/mux route are labeled with the route
// template so IDs in paths do not explode label cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routeLabel(r)
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Instrument installs InstrumentHandler on r. mux runs middleware only for
// matched routes, so the not-found and method-not-allowed handlers are
// wrapped as well and their requests are labeled "other".
func Instrument(r *mux.Router) {
	r.Use(InstrumentHandler)

	notFound := r.NotFoundHandler
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	r.NotFoundHandler = InstrumentHandler(notFound)

	notAllowed := r.MethodNotAllowedHandler
	if notAllowed == nil {
		notAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
		})
	}
	r.MethodNotAllowedHandler = InstrumentHandler(notAllowed)
}

func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers work through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
