package app

import (
	"fmt"
	"os"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	snapshotSpec := fmt.Sprintf("@every %dm", a.CatalogSettings().SnapshotIntervalMin)
	_, err = a.sched.AddFunc(snapshotSpec, func() {
		a.SchedCatalogSnapshotTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		days := a.configManager.GetInt("system", "OprLogRetentionDays")
		if days == 0 {
			days = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(days))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge(metrics.MetricSystemCPUUse, int64(_cpuuse[0]*100))
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(metrics.MetricSystemMemUse, int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge(metrics.MetricProcessCPUUse, int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge(metrics.MetricProcessMemUse, int64(meminfo.RSS/1024/1024))
	}
}

// SchedCatalogSnapshotTask records catalog gauges: entity counts,
// price aggregates over priced products and the count of dangling
// category references left behind by non-cascading deletes.
func (a *Application) SchedCatalogSnapshotTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	var productTotal, categoryTotal, subCategoryTotal int64
	a.gormDB.Model(&domain.Product{}).Count(&productTotal)
	a.gormDB.Model(&domain.Category{}).Count(&categoryTotal)
	a.gormDB.Model(&domain.SubCategory{}).Count(&subCategoryTotal)
	metrics.SetGauge(metrics.MetricProductTotal, productTotal)
	metrics.SetGauge(metrics.MetricCategoryTotal, categoryTotal)
	metrics.SetGauge(metrics.MetricSubCategoryTotal, subCategoryTotal)

	var prices []float64
	if err := a.gormDB.Model(&domain.Product{}).
		Where("price IS NOT NULL").Pluck("price", &prices).Error; err == nil && len(prices) > 0 {
		if mean, err := stats.Mean(prices); err == nil {
			metrics.SetGaugeFloat(metrics.MetricPriceMean, mean)
		}
		if median, err := stats.Median(prices); err == nil {
			metrics.SetGaugeFloat(metrics.MetricPriceMedian, median)
		}
	}

	var dangling int64
	a.gormDB.Raw(`SELECT count(*) FROM catalog_product_category pc
WHERE NOT EXISTS (SELECT 1 FROM catalog_category c WHERE c.id = pc.category_id)`).Scan(&dangling)
	metrics.SetGauge(metrics.MetricDanglingRefs, dangling)

	zap.L().Debug("catalog snapshot recorded",
		zap.Int64("products", productTotal),
		zap.Int64("categories", categoryTotal),
		zap.Int64("dangling_refs", dangling),
	)
}
