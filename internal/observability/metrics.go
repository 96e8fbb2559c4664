package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lnp-works/tlvstream/tlv"
)

var (
	registerOnce sync.Once

	decodeStreams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlvstream",
			Subsystem: "decode",
			Name:      "streams_total",
			Help:      "Total TLV stream decode attempts.",
		},
		[]string{"outcome"},
	)
	decodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlvstream",
			Subsystem: "decode",
			Name:      "failures_total",
			Help:      "TLV stream decode failures by error kind.",
		},
		[]string{"kind"},
	)
	decodeRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tlvstream",
			Subsystem: "decode",
			Name:      "records_total",
			Help:      "Records decoded from successful streams.",
		},
	)
	decodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tlvstream",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "TLV stream decode duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlvstream",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests to the inspector.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tlvstream",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Inspector HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			decodeStreams, decodeFailures, decodeRecords, decodeDuration,
			httpRequests, httpDuration,
		)
	})
}

// RecordDecode files one decode attempt under its outcome, mapping known
// stream-fatal errors to stable kind labels.
func RecordDecode(records int, duration time.Duration, err error) {
	RegisterMetrics()
	decodeDuration.Observe(duration.Seconds())
	if err == nil {
		decodeStreams.WithLabelValues("ok").Inc()
		decodeRecords.Add(float64(records))
		return
	}
	decodeStreams.WithLabelValues("error").Inc()
	decodeFailures.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind names a decode failure for metric labels and API responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, tlv.ErrMalformedVarInt):
		return "malformed_varint"
	case errors.Is(err, tlv.ErrWrongOrder):
		return "wrong_order"
	case errors.Is(err, tlv.ErrDuplicateItem):
		return "duplicate_item"
	case errors.Is(err, tlv.ErrEvenUnknownType):
		return "even_unknown_type"
	case errors.Is(err, tlv.ErrOversizedLength):
		return "oversized_length"
	case errors.Is(err, tlv.ErrTruncatedRecord):
		return "truncated_record"
	default:
		return "decoder_error"
	}
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
