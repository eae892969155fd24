package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	ExtractionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_runs_total",
			Help: "Extraction runs by method and outcome",
		},
		[]string{"method", "outcome"},
	)
	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Extraction run duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method"},
	)
	OCRPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ocr_pages_total",
			Help: "Pages recognized by the OCR engine",
		},
	)
	OCRFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_ocr_fallbacks_total",
			Help: "PDF runs whose text layer was unusable and fell back to OCR",
		},
	)
	FieldFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "field_extraction_failures_total",
			Help: "Runs where at least one field extractor failed",
		},
	)
	SessionSupersedesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_supersedes_total",
			Help: "In-flight runs superseded by a newer document",
		},
	)
)

// InitMetrics registers all collectors with the default registry.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ExtractionRunsTotal)
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(OCRPagesTotal)
	prometheus.MustRegister(OCRFallbacksTotal)
	prometheus.MustRegister(FieldFailuresTotal)
	prometheus.MustRegister(SessionSupersedesTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ExtractionMetrics feeds pipeline events into the package collectors.
type ExtractionMetrics struct{}

func (ExtractionMetrics) ObserveRun(method domain.ExtractionMethod, outcome string, d time.Duration) {
	m := string(method)
	if m == "" {
		m = "none"
	}
	ExtractionRunsTotal.WithLabelValues(m, outcome).Inc()
	ExtractionDuration.WithLabelValues(m).Observe(d.Seconds())
}

func (ExtractionMetrics) OCRPage()      { OCRPagesTotal.Inc() }
func (ExtractionMetrics) Fallback()     { OCRFallbacksTotal.Inc() }
func (ExtractionMetrics) FieldFailure() { FieldFailuresTotal.Inc() }
func (ExtractionMetrics) Supersede()    { SessionSupersedesTotal.Inc() }
