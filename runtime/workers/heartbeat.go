package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"agroconnect/observability"
)

// HeartbeatWorker samples the client's own resource usage every tick
// and pushes it into the monitoring manager, where the debug inspector
// and logs can read it.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewHeartbeatWorker(monitoring *observability.MonitoringManager,
	interval time.Duration, log *slog.Logger) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		monitoring: monitoring,
		interval:   interval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			w.monitoring.SetProcessStats(observability.ProcessStats{
				RSSBytes:   rss,
				CPUPercent: cpu,
				AllocMemMb: mem.Alloc / 1024 / 1024,
				NumGC:      mem.NumGC,
			})

			stats := w.monitoring.Snapshot()
			w.log.Debug("Client heartbeat",
				"cpu_percent", cpu,
				"rss_bytes", rss,
				"synced_mutations", stats.SyncedMutations,
				"local_only_mutations", stats.LocalOnlyMutations,
				"poll_failures", stats.PollFailures)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
