package estaterag

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query latency is dominated by the completion call, so buckets reach a minute.
var sdkDurationBuckets = []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	listings   *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estaterag",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation and outcome (ok, validation, embedding, completion, timeout, error).",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "estaterag",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency.",
			Buckets:   sdkDurationBuckets,
		}, []string{"operation"}),
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estaterag",
			Subsystem: "sdk",
			Name:      "ingested_listings_total",
			Help:      "Listings passed to Ingest by item status.",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.listings); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at an identical collector that
// another Client already registered on reg.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("estaterag: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("estaterag: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome buckets an operation error by the sentinel it wraps.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrEmbedding):
		return "embedding"
	case errors.Is(err, ErrCompletion):
		return "completion"
	default:
		return "error"
	}
}

// observer logs and counts SDK calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one call. attrs are slog key/value pairs added to the log line.
func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	res := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, res).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	args := append([]any{"op", op, "duration", dur}, attrs...)
	if err != nil {
		o.logger.Warn("operation failed", append(args, "outcome", res, "error", err)...)
		return
	}
	o.logger.Debug("operation completed", args...)
}

func (o *observer) ingested(r IngestReport) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.listings.WithLabelValues(string(StatusAdded)).Add(float64(r.Added))
	o.metrics.listings.WithLabelValues(string(StatusSkipped)).Add(float64(r.Skipped))
	o.metrics.listings.WithLabelValues(string(StatusFailed)).Add(float64(r.Failed))
}
