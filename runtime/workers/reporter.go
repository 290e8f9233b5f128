package workers

import (
	"chat-room/observability"
	"context"
	"log/slog"
	"time"
)

// ReporterWorker logs a snapshot of the room activity at a fixed interval.
type ReporterWorker struct {
	monitoring *observability.MonitoringManager
	log        *slog.Logger
	interval   time.Duration
}

func NewReporterWorker(monitoring *observability.MonitoringManager, log *slog.Logger, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{monitoring: monitoring, log: log, interval: interval}
}

// Run reports until context cancellation, with a last report on the way out.
func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.monitoring.GetLatest()
	w.log.Info("Room activity",
		"uptime", stats.Uptime,
		"joins", stats.Joins,
		"join_conflicts", stats.JoinConflicts,
		"heartbeats", stats.Heartbeats,
		"messages", stats.MessagesPosted,
		"evictions", stats.Evictions,
		"sweep_failures", stats.SweepFailures,
		"trimmed", stats.TrimmedMessages,
		"alloc_mb", stats.AllocMemMb,
		"goroutines", stats.NumGoroutine,
	)
}
