package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	blueprintStartedTotal   atomic.Uint64
	blueprintCompletedTotal atomic.Uint64
	blueprintFailedTotal    atomic.Uint64

	chapterStartedTotal   atomic.Uint64
	chapterCompletedTotal atomic.Uint64
	chapterFailedTotal    atomic.Uint64

	exportStartedTotal   atomic.Uint64
	exportCompletedTotal atomic.Uint64
	exportFailedTotal    atomic.Uint64

	exportJobsReceivedTotal             atomic.Uint64
	exportJobsCompletedTotal            atomic.Uint64
	exportJobsFailedTotal               atomic.Uint64
	exportJobsDeletedUnrecoverableTotal atomic.Uint64

	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncBlueprintStarted increments the blueprint started counter.
func IncBlueprintStarted() {
	blueprintStartedTotal.Add(1)
}

// IncBlueprintCompleted increments the blueprint completed counter.
func IncBlueprintCompleted() {
	blueprintCompletedTotal.Add(1)
}

// IncBlueprintFailed increments the blueprint failed counter.
func IncBlueprintFailed() {
	blueprintFailedTotal.Add(1)
}

// IncChapterStarted increments the chapter generation started counter.
func IncChapterStarted() {
	chapterStartedTotal.Add(1)
}

// IncChapterCompleted increments the chapter generation completed counter.
func IncChapterCompleted() {
	chapterCompletedTotal.Add(1)
}

// IncChapterFailed increments the chapter generation failed counter.
func IncChapterFailed() {
	chapterFailedTotal.Add(1)
}

// IncExportStarted increments the export started counter.
func IncExportStarted() {
	exportStartedTotal.Add(1)
}

// IncExportCompleted increments the export completed counter.
func IncExportCompleted() {
	exportCompletedTotal.Add(1)
}

// IncExportFailed increments the export failed counter.
func IncExportFailed() {
	exportFailedTotal.Add(1)
}

// IncExportJobsReceived increments the worker jobs received counter.
func IncExportJobsReceived() {
	exportJobsReceivedTotal.Add(1)
}

// IncExportJobsCompleted increments the worker jobs completed counter.
func IncExportJobsCompleted() {
	exportJobsCompletedTotal.Add(1)
}

// IncExportJobsFailed increments the worker jobs failed counter.
func IncExportJobsFailed() {
	exportJobsFailedTotal.Add(1)
}

// IncExportJobsDeletedUnrecoverable counts queue messages dropped because
// they can never succeed.
func IncExportJobsDeletedUnrecoverable() {
	exportJobsDeletedUnrecoverableTotal.Add(1)
}

// ObserveGenerationDurationMs records a model generation duration in
// milliseconds. Blueprint and chapter calls share one histogram.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
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
	writeCounter(&buf, "blueprint_generation_started_total", "Total blueprint generations started", blueprintStartedTotal.Load())
	writeCounter(&buf, "blueprint_generation_completed_total", "Total blueprint generations completed", blueprintCompletedTotal.Load())
	writeCounter(&buf, "blueprint_generation_failed_total", "Total blueprint generations failed", blueprintFailedTotal.Load())
	writeCounter(&buf, "chapter_generation_started_total", "Total chapter generations started", chapterStartedTotal.Load())
	writeCounter(&buf, "chapter_generation_completed_total", "Total chapter generations completed", chapterCompletedTotal.Load())
	writeCounter(&buf, "chapter_generation_failed_total", "Total chapter generations failed", chapterFailedTotal.Load())
	writeCounter(&buf, "export_started_total", "Total exports started", exportStartedTotal.Load())
	writeCounter(&buf, "export_completed_total", "Total exports completed", exportCompletedTotal.Load())
	writeCounter(&buf, "export_failed_total", "Total exports failed", exportFailedTotal.Load())
	writeCounter(&buf, "export_jobs_received_total", "Total export jobs received by the worker", exportJobsReceivedTotal.Load())
	writeCounter(&buf, "export_jobs_completed_total", "Total export jobs completed by the worker", exportJobsCompletedTotal.Load())
	writeCounter(&buf, "export_jobs_failed_total", "Total export jobs failed in the worker", exportJobsFailedTotal.Load())
	writeCounter(&buf, "export_jobs_deleted_unrecoverable_total", "Total export jobs dropped as unrecoverable", exportJobsDeletedUnrecoverableTotal.Load())
	writeHistogram(&buf, "generation_duration_ms", "Model generation duration in milliseconds", generationDuration.Snapshot())
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
