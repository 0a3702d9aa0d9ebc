package observability

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessStats is the heartbeat sample of the client process itself.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
}

// Stats aggregates everything the debug inspector shows.
type Stats struct {
	SyncedMutations    uint64       `json:"synced_mutations"`
	LocalOnlyMutations uint64       `json:"local_only_mutations"`
	RejectedMutations  uint64       `json:"rejected_mutations"`
	PollFailures       uint64       `json:"poll_failures"`
	AlertsRaised       uint64       `json:"alerts_raised"`
	MessagesSent       uint64       `json:"messages_sent"`
	Process            ProcessStats `json:"process"`
	Since              time.Time    `json:"since"`
}

// MonitoringManager keeps real-time counters about the sync behavior
// of the cart and the pollers. Counters are atomic; the process sample
// is guarded by a mutex.
type MonitoringManager struct {
	log *slog.Logger
	mu  sync.RWMutex

	syncedMutations    uint64
	localOnlyMutations uint64
	rejectedMutations  uint64
	pollFailures       uint64
	alertsRaised       uint64
	messagesSent       uint64

	process ProcessStats
	since   time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, since: time.Now().UTC()}
}

func (mm *MonitoringManager) IncrSyncedMutations() {
	atomic.AddUint64(&mm.syncedMutations, 1)
}

func (mm *MonitoringManager) IncrLocalOnlyMutations() {
	atomic.AddUint64(&mm.localOnlyMutations, 1)
}

func (mm *MonitoringManager) IncrRejectedMutations() {
	atomic.AddUint64(&mm.rejectedMutations, 1)
}

func (mm *MonitoringManager) IncrPollFailures() {
	atomic.AddUint64(&mm.pollFailures, 1)
}

func (mm *MonitoringManager) IncrAlertsRaised() {
	atomic.AddUint64(&mm.alertsRaised, 1)
}

func (mm *MonitoringManager) IncrMessagesSent() {
	atomic.AddUint64(&mm.messagesSent, 1)
}

func (mm *MonitoringManager) SetProcessStats(stats ProcessStats) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.process = stats
}

func (mm *MonitoringManager) Snapshot() Stats {
	mm.mu.RLock()
	process := mm.process
	mm.mu.RUnlock()

	return Stats{
		SyncedMutations:    atomic.LoadUint64(&mm.syncedMutations),
		LocalOnlyMutations: atomic.LoadUint64(&mm.localOnlyMutations),
		RejectedMutations:  atomic.LoadUint64(&mm.rejectedMutations),
		PollFailures:       atomic.LoadUint64(&mm.pollFailures),
		AlertsRaised:       atomic.LoadUint64(&mm.alertsRaised),
		MessagesSent:       atomic.LoadUint64(&mm.messagesSent),
		Process:            process,
		Since:              mm.since,
	}
}
