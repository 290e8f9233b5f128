package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats is the snapshot served by the health endpoint.
type MonitoringStats struct {
	// --- ROOM ---
	Joins          uint64 `json:"joins"`
	JoinConflicts  uint64 `json:"join_conflicts"`
	Heartbeats     uint64 `json:"heartbeats"`
	MessagesPosted uint64 `json:"messages_posted"`

	// --- SWEEPER ---
	Evictions       uint64 `json:"evictions"`
	SweepFailures   uint64 `json:"sweep_failures"`
	TrimmedMessages uint64 `json:"trimmed_messages"`
	LastSweep       string `json:"last_sweep,omitempty"`

	// --- SYSTEM ---
	Uptime       string  `json:"uptime"`
	AllocMemMb   uint64  `json:"alloc_mem_mb"`
	NumGC        uint32  `json:"num_gc"`
	NumGoroutine int     `json:"num_goroutine"`
	RssBytes     uint64  `json:"rss_bytes"`
	CpuPercent   float64 `json:"cpu_percent"`
}

// MonitoringManager counts room activity. Counters are updated lock-free
// from request handlers and the sweeper.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	joins           uint64
	joinConflicts   uint64
	heartbeats      uint64
	messagesPosted  uint64
	evictions       uint64
	sweepFailures   uint64
	trimmedMessages uint64

	mu        sync.RWMutex
	lastSweep time.Time
	self      *process.Process
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	mm := &MonitoringManager{log: log, startedAt: time.Now()}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process stats unavailable", "err", err)
	} else {
		mm.self = p
	}
	return mm
}

func (mm *MonitoringManager) IncrJoins()          { atomic.AddUint64(&mm.joins, 1) }
func (mm *MonitoringManager) IncrJoinConflicts()  { atomic.AddUint64(&mm.joinConflicts, 1) }
func (mm *MonitoringManager) IncrHeartbeats()     { atomic.AddUint64(&mm.heartbeats, 1) }
func (mm *MonitoringManager) IncrMessagesPosted() { atomic.AddUint64(&mm.messagesPosted, 1) }
func (mm *MonitoringManager) IncrEvictions()      { atomic.AddUint64(&mm.evictions, 1) }
func (mm *MonitoringManager) IncrSweepFailures()  { atomic.AddUint64(&mm.sweepFailures, 1) }

func (mm *MonitoringManager) AddTrimmedMessages(n int) {
	if n > 0 {
		atomic.AddUint64(&mm.trimmedMessages, uint64(n))
	}
}

func (mm *MonitoringManager) MarkSweep(at time.Time) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.lastSweep = at
}

// GetLatest assembles counters with Go runtime and process figures.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := MonitoringStats{
		Joins:           atomic.LoadUint64(&mm.joins),
		JoinConflicts:   atomic.LoadUint64(&mm.joinConflicts),
		Heartbeats:      atomic.LoadUint64(&mm.heartbeats),
		MessagesPosted:  atomic.LoadUint64(&mm.messagesPosted),
		Evictions:       atomic.LoadUint64(&mm.evictions),
		SweepFailures:   atomic.LoadUint64(&mm.sweepFailures),
		TrimmedMessages: atomic.LoadUint64(&mm.trimmedMessages),
		Uptime:          time.Since(mm.startedAt).Round(time.Second).String(),
		AllocMemMb:      mem.Alloc / 1024 / 1024,
		NumGC:           mem.NumGC,
		NumGoroutine:    runtime.NumGoroutine(),
	}

	mm.mu.RLock()
	if !mm.lastSweep.IsZero() {
		stats.LastSweep = mm.lastSweep.UTC().Format(time.RFC3339)
	}
	mm.mu.RUnlock()

	if mm.self != nil {
		if memInfo, err := mm.self.MemoryInfo(); err == nil {
			stats.RssBytes = memInfo.RSS
		} else {
			mm.log.Debug("Failed to read process memory", "err", err)
		}
		if cpu, err := mm.self.CPUPercent(); err == nil {
			stats.CpuPercent = cpu
		}
	}
	return stats
}
