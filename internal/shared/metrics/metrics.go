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

// Calendar sync results. Every reconciliation ends in exactly one of these.
const (
	SyncCreated = "created"
	SyncUpdated = "updated"
	SyncSkipped = "skipped"
	SyncFailed  = "failed"
)

var (
	calendarSyncTotal = map[string]*atomic.Uint64{
		SyncCreated: {},
		SyncUpdated: {},
		SyncSkipped: {},
		SyncFailed:  {},
	}
	calendarStaleEventsTotal atomic.Uint64
	calendarTokenRefreshes   atomic.Uint64
	applicationMutations     atomic.Uint64

	calendarSyncDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncCalendarSync counts a finished reconciliation by result.
func IncCalendarSync(result string) {
	if c, ok := calendarSyncTotal[result]; ok {
		c.Add(1)
	}
}

// IncCalendarStaleEvent counts remote events found missing during reconciliation.
func IncCalendarStaleEvent() {
	calendarStaleEventsTotal.Add(1)
}

// IncCalendarTokenRefresh counts tokens minted by the OAuth layer mid-call.
func IncCalendarTokenRefresh() {
	calendarTokenRefreshes.Add(1)
}

// IncApplicationMutation counts successful create/update/delete calls.
func IncApplicationMutation() {
	applicationMutations.Add(1)
}

// ObserveCalendarSyncDurationMs records a reconciliation duration in milliseconds.
func ObserveCalendarSyncDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	calendarSyncDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# HELP calendar_sync_total Calendar reconciliations by result\n")
	fmt.Fprintf(&buf, "# TYPE calendar_sync_total counter\n")
	for _, result := range []string{SyncCreated, SyncUpdated, SyncSkipped, SyncFailed} {
		fmt.Fprintf(&buf, "calendar_sync_total{result=\"%s\"} %d\n", result, calendarSyncTotal[result].Load())
	}
	writeCounter(&buf, "calendar_stale_events_total", "Remote events missing at reconciliation time", calendarStaleEventsTotal.Load())
	writeCounter(&buf, "calendar_token_refresh_total", "Calendar tokens refreshed mid-call", calendarTokenRefreshes.Load())
	writeCounter(&buf, "application_mutations_total", "Application create/update/delete calls", applicationMutations.Load())
	writeHistogram(&buf, "calendar_sync_duration_ms", "Calendar reconciliation duration in milliseconds", calendarSyncDuration.Snapshot())
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
	// counts are per-bucket; writeHistogram accumulates them.
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
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

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
