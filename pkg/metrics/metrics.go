// Package metrics keeps operational counters and gauges in an embedded
// tstorage time series under the application workdir. It backs the
// overview sparklines and the background monitor jobs.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	ApiRequestTotal  = "api_request_total"
	OrderCreateTotal = "order_create_total"
	OrderPaidTotal   = "order_paid_total"
	RevenueCents     = "revenue_cents"
	SystemCpuuse     = "system_cpuuse"
	SystemMemuse     = "system_memuse"
	ProcessCpuuse    = "storeadmin_cpuuse"
	ProcessMemuse    = "storeadmin_memuse"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// Point is one sample returned by Series.
type Point struct {
	Timestamp int64 `json:"timestamp"`
	Value     int64 `json:"value"`
}

// InitMetrics opens the time series store under workdir. It must be
// called once before any writes; writes before init are dropped.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func insert(name string, value int64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// SetGauge records the current value of a gauge metric.
func SetGauge(name string, value int64) { insert(name, value) }

// AddCounter records an increment for a counter metric. Range queries
// sum the increments.
func AddCounter(name string, delta int64) { insert(name, delta) }

// Series returns the raw points of a metric between from and to,
// both inclusive at second precision.
func Series(name string, from, to time.Time) []Point {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil
	}
	// Select treats the end bound as exclusive.
	points, err := s.Select(name, nil, from.Unix(), to.Unix()+1)
	if err != nil {
		return nil
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{Timestamp: p.Timestamp, Value: int64(p.Value)})
	}
	return out
}

// RangeSum sums counter increments between from and to.
func RangeSum(name string, from, to time.Time) int64 {
	var sum int64
	for _, p := range Series(name, from, to) {
		sum += p.Value
	}
	return sum
}

// Latest returns the newest sample of a metric within the past hour.
func Latest(name string) (int64, bool) {
	points := Series(name, time.Now().Add(-time.Hour), time.Now())
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}

// Close flushes and closes the underlying store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
