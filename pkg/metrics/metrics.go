package metrics

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nakabonne/tstorage"
)

// Metric names used across the application.
const (
	MetricHTTPRequest      = "quickbasket_http_request_total"
	MetricSearchRequest    = "quickbasket_search_request_total"
	MetricProductTotal     = "quickbasket_product_total"
	MetricCategoryTotal    = "quickbasket_category_total"
	MetricSubCategoryTotal = "quickbasket_sub_category_total"
	MetricDanglingRefs     = "quickbasket_dangling_reference_total"
	MetricPriceMean        = "quickbasket_product_price_mean"
	MetricPriceMedian      = "quickbasket_product_price_median"
	MetricSystemCPUUse     = "system_cpuuse"
	MetricSystemMemUse     = "system_memuse"
	MetricProcessCPUUse    = "quickbasket_cpuuse"
	MetricProcessMemUse    = "quickbasket_memuse"
)

var (
	mu       sync.RWMutex
	storage  tstorage.Storage
	counters sync.Map
)

// InitMetrics opens the embedded time-series store under workdir.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func insert(name string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// SetGauge records an instantaneous value.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// SetGaugeFloat records an instantaneous float value.
func SetGaugeFloat(name string, value float64) {
	insert(name, value)
}

// CounterIncrement bumps a monotonically increasing counter and
// records its new value.
func CounterIncrement(name string) {
	v, _ := counters.LoadOrStore(name, new(int64))
	n := atomic.AddInt64(v.(*int64), 1)
	insert(name, float64(n))
}

// CounterValue returns the in-process counter value.
func CounterValue(name string) int64 {
	v, ok := counters.Load(name)
	if !ok {
		return 0
	}
	return atomic.LoadInt64(v.(*int64))
}

// Latest returns the most recent datapoint for a metric within the
// past hour, or zero when none exists.
func Latest(name string) float64 {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return 0
	}
	now := time.Now().Unix()
	points, err := s.Select(name, nil, now-3600, now+1)
	if err != nil || len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}

// Close flushes and closes the store.
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
