package workers

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/observability"
	"chat-room/repositories"
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SweepReport sums up one tick of the sweeper.
type SweepReport struct {
	Scanned  int
	Evicted  []string
	Failures int
	Trimmed  int
}

// InactivitySweeper periodically removes participants that stopped sending
// heartbeats and announces their departure.
type InactivitySweeper struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        domain.RoomClock
	monitoring   *observability.MonitoringManager
	log          *slog.Logger
	interval     time.Duration
	threshold    time.Duration
	retention    *int
}

func NewInactivitySweeper(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock domain.RoomClock,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
	interval, threshold time.Duration,
	retention *int,
) *InactivitySweeper {
	return &InactivitySweeper{
		participants: participants,
		messages:     messages,
		clock:        clock,
		monitoring:   monitoring,
		log:          log,
		interval:     interval,
		threshold:    threshold,
		retention:    retention,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (w *InactivitySweeper) Run(ctx context.Context) error {
	w.log.Info("Starting inactivity sweeper", "interval", w.interval, "threshold", w.threshold)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := w.Sweep(ctx)
			if err != nil {
				w.log.Error("Sweep interrupted", "err", err, "evicted", len(report.Evicted))
				continue
			}
			if len(report.Evicted) > 0 || report.Trimmed > 0 {
				w.log.Info("Sweep done", "scanned", report.Scanned, "evicted", len(report.Evicted), "trimmed", report.Trimmed)
			}
		}
	}
}

// Sweep evicts every participant inactive at the current instant, in scan order.
// A candidate that fails is skipped. An error is returned only when the store
// itself is gone or ctx is done, in which case the tick stops early.
func (w *InactivitySweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := w.clock.Now()
	defer w.monitoring.MarkSweep(now)

	participants, err := w.participants.List(ctx)
	if err != nil {
		w.monitoring.IncrSweepFailures()
		return report, err
	}
	report.Scanned = len(participants)
	cutoff := domain.InactivityCutoff(now, w.threshold)

	for _, participant := range participants {
		if !participant.IsInactive(now, w.threshold) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		deleted, err := w.participants.DeleteIfInactive(ctx, participant.Name, cutoff)
		if err != nil {
			report.Failures++
			w.monitoring.IncrSweepFailures()
			if isSystemic(ctx, err) {
				return report, err
			}
			w.log.Warn("Failed to evict participant", "name", participant.Name, "err", err)
			continue
		}
		if !deleted {
			w.log.Debug("Participant came back before eviction", "name", participant.Name)
			continue
		}
		report.Evicted = append(report.Evicted, participant.Name)
		w.monitoring.IncrEvictions()

		event := domain.NewStatusEvent(participant, domain.LeaveVerb, w.clock, w.clock.Now())
		event.ID = uuid.New()
		if err := w.messages.StoreMessage(ctx, event); err != nil {
			report.Failures++
			w.monitoring.IncrSweepFailures()
			if isSystemic(ctx, err) {
				return report, err
			}
			w.log.Warn("Failed to announce departure", "name", participant.Name, "err", err)
		}
	}

	if w.retention != nil {
		trimmed, err := w.messages.Trim(ctx, *w.retention)
		if err != nil {
			w.monitoring.IncrSweepFailures()
			return report, err
		}
		report.Trimmed = trimmed
		w.monitoring.AddTrimmedMessages(trimmed)
	}
	return report, nil
}

func isSystemic(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		stderrors.Is(err, errors.ErrStorageUnavailable) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}
