package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/metrics"
)

// registerSystemRoutes registers the system metrics endpoint.
func registerSystemRoutes() {
	webserver.ApiGET("/system/metrics", systemMetrics)
}

type systemMetricsResponse struct {
	SystemCPUPercent   float64         `json:"system_cpu_percent"`
	SystemMemMB        int64           `json:"system_mem_mb"`
	ProcessCPUPercent  float64         `json:"process_cpu_percent"`
	ProcessMemMB       int64           `json:"process_mem_mb"`
	APIRequestsToday   int64           `json:"api_requests_today"`
	OrdersCreatedToday int64           `json:"orders_created_today"`
	OrdersPaidToday    int64           `json:"orders_paid_today"`
	RevenueCentsToday  int64           `json:"revenue_cents_today"`
	PaidSparkline      []metrics.Point `json:"paid_sparkline"`
}

// systemMetrics reports the monitor gauges and today's counters from
// the embedded time series store. Values are zero until the store is
// initialized and the monitor jobs have run.
func systemMetrics(c echo.Context) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	resp := systemMetricsResponse{
		APIRequestsToday:   metrics.RangeSum(metrics.ApiRequestTotal, dayStart, now),
		OrdersCreatedToday: metrics.RangeSum(metrics.OrderCreateTotal, dayStart, now),
		OrdersPaidToday:    metrics.RangeSum(metrics.OrderPaidTotal, dayStart, now),
		RevenueCentsToday:  metrics.RangeSum(metrics.RevenueCents, dayStart, now),
		PaidSparkline:      metrics.Series(metrics.OrderPaidTotal, now.Add(-7*24*time.Hour), now),
	}

	// CPU gauges are stored as percentage * 100 by the monitor tasks.
	if v, okm := metrics.Latest(metrics.SystemCpuuse); okm {
		resp.SystemCPUPercent = float64(v) / 100
	}
	if v, okm := metrics.Latest(metrics.SystemMemuse); okm {
		resp.SystemMemMB = v
	}
	if v, okm := metrics.Latest(metrics.ProcessCpuuse); okm {
		resp.ProcessCPUPercent = float64(v) / 100
	}
	if v, okm := metrics.Latest(metrics.ProcessMemuse); okm {
		resp.ProcessMemMB = v
	}

	return ok(c, resp)
}
