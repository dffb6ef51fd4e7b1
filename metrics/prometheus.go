// Package metrics exposes Prometheus instrumentation for super-chunk containers.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/schunk/errs"
)

// Operation labels.
const (
	OpAppend     = "append"
	OpDecompress = "decompress"
)

// Recorder holds the container metrics registered on one Registerer.
//
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	chunksAppended     *prometheus.CounterVec
	bytesAppended      *prometheus.CounterVec
	verbatimChunks     *prometheus.CounterVec
	chunksDecompressed *prometheus.CounterVec
	errors             *prometheus.CounterVec
	encodeDuration     *prometheus.HistogramVec
	decodeDuration     *prometheus.HistogramVec
}

var durationBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// NewRecorder registers the container metrics on reg.
// It panics if the metrics are already registered on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		chunksAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schunk_chunks_appended_total",
			Help: "Chunks committed to a container",
		}, []string{"container"}),

		bytesAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schunk_bytes_appended_total",
			Help: "Bytes committed to a container, logical and compressed",
		}, []string{"container", "kind"}),

		verbatimChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schunk_verbatim_chunks_total",
			Help: "Chunks stored without compression",
		}, []string{"container"}),

		chunksDecompressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schunk_chunks_decompressed_total",
			Help: "Chunks decompressed from a container",
		}, []string{"container"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schunk_errors_total",
			Help: "Failed container operations by kind",
		}, []string{"container", "op", "kind"}),

		encodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schunk_encode_duration_seconds",
			Help:    "Time to filter and compress one append call",
			Buckets: durationBuckets,
		}, []string{"container"}),

		decodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schunk_decode_duration_seconds",
			Help:    "Time to decompress one decompress call",
			Buckets: durationBuckets,
		}, []string{"container"}),
	}
}

// ObserveAppend records one committed chunk.
func (r *Recorder) ObserveAppend(container string, logical, compressed int, verbatim bool) {
	if r == nil {
		return
	}

	r.chunksAppended.WithLabelValues(container).Inc()
	r.bytesAppended.WithLabelValues(container, "logical").Add(float64(logical))
	r.bytesAppended.WithLabelValues(container, "compressed").Add(float64(compressed))
	if verbatim {
		r.verbatimChunks.WithLabelValues(container).Inc()
	}
}

// ObserveDecompress records n decompressed chunks.
func (r *Recorder) ObserveDecompress(container string, n int) {
	if r == nil {
		return
	}

	r.chunksDecompressed.WithLabelValues(container).Add(float64(n))
}

// ObserveEncodeDuration records the time spent in one append call.
func (r *Recorder) ObserveEncodeDuration(container string, d time.Duration) {
	if r == nil {
		return
	}

	r.encodeDuration.WithLabelValues(container).Observe(d.Seconds())
}

// ObserveDecodeDuration records the time spent in one decompress call.
func (r *Recorder) ObserveDecodeDuration(container string, d time.Duration) {
	if r == nil {
		return
	}

	r.decodeDuration.WithLabelValues(container).Observe(d.Seconds())
}

// ObserveError counts a failed operation, labelled by ErrorKind.
func (r *Recorder) ObserveError(container, op string, err error) {
	if r == nil || err == nil {
		return
	}

	r.errors.WithLabelValues(container, op, ErrorKind(err)).Inc()
}

// ErrorKind maps an error to a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case errs.IsFilterError(err):
		return "filter"
	case errs.IsCodecError(err):
		return "codec"
	case errors.Is(err, errs.ErrIndexOutOfRange):
		return "index"
	case errors.Is(err, errs.ErrInvalidLength), errors.Is(err, errs.ErrSizeMismatch):
		return "length"
	case errors.Is(err, errs.ErrDestroyedHandle):
		return "destroyed"
	case errors.Is(err, errs.ErrInvalidHeader):
		return "header"
	default:
		return "other"
	}
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RunServer serves the metrics of g on addr under path until ctx is done.
func RunServer(ctx context.Context, addr, path string, g prometheus.Gatherer) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
