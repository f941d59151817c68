package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Registry holds the client's analysis counters. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	submittedText   atomic.Uint64
	submittedSample atomic.Uint64
	completed       atomic.Uint64
	failed          atomic.Uint64
	rejected        atomic.Uint64

	duration *histogram
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		duration: newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}),
	}
}

// IncSubmitted counts a submission that entered the analyzing phase.
func (r *Registry) IncSubmitted(sample bool) {
	if sample {
		r.submittedSample.Add(1)
		return
	}
	r.submittedText.Add(1)
}

func (r *Registry) IncCompleted() { r.completed.Add(1) }

func (r *Registry) IncFailed() { r.failed.Add(1) }

// IncRejected counts a submission refused because one was already in flight.
func (r *Registry) IncRejected() { r.rejected.Add(1) }

// ObserveDurationMs records a backend round trip in milliseconds.
func (r *Registry) ObserveDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	r.duration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, r.Render())
	}
}

// Render renders metrics in Prometheus text format.
func (r *Registry) Render() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# HELP analysis_submitted_total Total analyses submitted\n")
	fmt.Fprintf(&buf, "# TYPE analysis_submitted_total counter\n")
	fmt.Fprintf(&buf, "analysis_submitted_total{mode=\"sample\"} %d\n", r.submittedSample.Load())
	fmt.Fprintf(&buf, "analysis_submitted_total{mode=\"text\"} %d\n", r.submittedText.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", r.completed.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", r.failed.Load())
	writeCounter(&buf, "analysis_rejected_total", "Submissions rejected while another was in flight", r.rejected.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis backend round trip in milliseconds", r.duration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

// writeHistogram emits cumulative buckets; counts hold per-bucket hits.
func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
