package adminapi

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/internal/webserver"
	"github.com/quickbasket/quickbasket/pkg/metrics"
)

var startTime = time.Now()

func registerStatusRoutes() {
	webserver.ApiGET("/system/status", systemStatus)
}

// systemStatus reports process uptime, host load and catalog counts
// for the admin dashboard.
func systemStatus(c echo.Context) error {
	status := map[string]interface{}{
		"uptime_sec": int64(time.Since(startTime).Seconds()),
		"pid":        os.Getpid(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["mem_used_mb"] = vm.Used / 1024 / 1024
		status["mem_percent"] = vm.UsedPercent
	}
	if info, err := host.Info(); err == nil {
		status["hostname"] = info.Hostname
		status["os"] = info.Platform
	}

	var productTotal, categoryTotal, subCategoryTotal int64
	GetDB(c).Model(&domain.Product{}).Count(&productTotal)
	GetDB(c).Model(&domain.Category{}).Count(&categoryTotal)
	GetDB(c).Model(&domain.SubCategory{}).Count(&subCategoryTotal)
	status["products"] = productTotal
	status["categories"] = categoryTotal
	status["sub_categories"] = subCategoryTotal

	status["http_requests"] = metrics.CounterValue(metrics.MetricHTTPRequest)
	status["search_requests"] = metrics.CounterValue(metrics.MetricSearchRequest)
	status["dangling_refs"] = metrics.Latest(metrics.MetricDanglingRefs)

	return ok(c, status)
}
