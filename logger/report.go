package logger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Run-wide progress counters. Long exports (multi-century windows bisected
// into many Horizons requests) are otherwise silent between bodies, so the
// report loop gives operators a heartbeat.
var (
	requestsIssued int64
	bytesFetched   int64
	windowSplits   int64
	samplesParsed  int64
	tablesWritten  int64
	warnCount      int64
	errorCount     int64
	components     sync.Map // map[string]*componentStat
)

type componentStat struct {
	warns  int64
	errors int64
}

func recordWarn(component string) {
	atomic.AddInt64(&warnCount, 1)
	v, _ := components.LoadOrStore(component, &componentStat{})
	atomic.AddInt64(&v.(*componentStat).warns, 1)
}

func recordError(component string) {
	atomic.AddInt64(&errorCount, 1)
	v, _ := components.LoadOrStore(component, &componentStat{})
	atomic.AddInt64(&v.(*componentStat).errors, 1)
}

// IncrementRequest records one Horizons retrieval and its response size.
func IncrementRequest(size int) {
	atomic.AddInt64(&requestsIssued, 1)
	atomic.AddInt64(&bytesFetched, int64(size))
}

// IncrementSplit records one size-limit bisection of a request window.
func IncrementSplit() {
	atomic.AddInt64(&windowSplits, 1)
}

// AddSamplesParsed records rows accepted by the sample parser.
func AddSamplesParsed(n int) {
	atomic.AddInt64(&samplesParsed, int64(n))
}

// IncrementTableWritten records one binary table flushed to disk.
func IncrementTableWritten() {
	atomic.AddInt64(&tablesWritten, 1)
}

// StartReport begins periodic logging of system and run statistics until the
// context is cancelled.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(log)
			}
		}
	}()
}

func logReport(log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	fields := Fields{
		"requests_issued": atomic.LoadInt64(&requestsIssued),
		"bytes_fetched":   atomic.LoadInt64(&bytesFetched),
		"window_splits":   atomic.LoadInt64(&windowSplits),
		"samples_parsed":  atomic.LoadInt64(&samplesParsed),
		"tables_written":  atomic.LoadInt64(&tablesWritten),
		"warns":           atomic.LoadInt64(&warnCount),
		"errors":          atomic.LoadInt64(&errorCount),
	}
	if len(cpuPercent) > 0 {
		fields["cpu_percent"] = cpuPercent[0]
	}
	if memStats != nil {
		fields["mem_used_percent"] = memStats.UsedPercent
	}
	if diskStats != nil {
		fields["disk_used_percent"] = diskStats.UsedPercent
	}

	components.Range(func(k, v any) bool {
		cs := v.(*componentStat)
		if w := atomic.LoadInt64(&cs.warns); w > 0 {
			fields["warns_"+k.(string)] = w
		}
		if e := atomic.LoadInt64(&cs.errors); e > 0 {
			fields["errors_"+k.(string)] = e
		}
		return true
	})

	log.WithComponent("report").WithFields(fields).Info("run report")
}
