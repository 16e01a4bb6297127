package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/merchkit/storeadmin/internal/checkout"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	// Initialize checkout session service
	a.initCheckoutService()

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedTrimOprLogTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedBackupTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 6h", func() {
		a.SchedSweepWebhookEventsTask()
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

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge(metrics.SystemCpuuse, int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(metrics.SystemMemuse, int64(_meminfo.Used/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}

	// Collect process CPU usage
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge(metrics.ProcessCpuuse, int64(cpuuse*100)) // Store as percentage * 100
	}

	// Collect process memory usage
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge(metrics.ProcessMemuse, int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedTrimOprLogTask trims operation log history past the configured
// retention window.
func (a *Application) SchedTrimOprLogTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	idays := a.ConfigMgr().GetInt("system", "oplog_days")
	if idays == 0 {
		idays = 365
	}
	a.gormDB.
		Where("opt_time < ? ", time.Now().
			Add(-time.Hour*24*time.Duration(idays))).Delete(domain.SysOprLog{})
}

// SchedSweepWebhookEventsTask drops webhook event ids old enough that
// the provider will never redeliver them.
func (a *Application) SchedSweepWebhookEventsTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if a.dedupe == nil {
		return
	}
	if err := a.dedupe.Sweep(30 * 24 * time.Hour); err != nil {
		zap.S().Errorf("webhook event sweep error %s", err.Error())
	}
}

// initCheckoutService initializes the checkout service and its unpaid
// order sweeper.
func (a *Application) initCheckoutService() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error("checkout service initialization panic:", err)
		}
	}()

	orderRepo := checkout.NewGormOrderRepository(a.gormDB)
	productRepo := checkout.NewGormProductRepository(a.gormDB)

	svc := checkout.NewService(
		a.gormDB,
		orderRepo,
		productRepo,
		a.eventBus,
		a.dedupe,
		a,
		a.appConfig.Web.PublicURL,
		time.Duration(a.appConfig.Checkout.OrderTTL)*time.Minute,
	)

	sweepEvery := time.Duration(a.appConfig.Checkout.SweepInterval) * time.Minute
	if sweepEvery <= 0 {
		sweepEvery = 10 * time.Minute
	}
	svc.Start(context.Background(), sweepEvery)

	// Release stops the sweeper through this reference.
	a.checkoutSvc = svc

	zap.L().Info("checkout service initialized", zap.String("namespace", "checkout"))
}
