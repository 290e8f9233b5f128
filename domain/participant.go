// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a registered chat identity with a liveness timestamp.
// Names are unique inside the room.
type Participant struct {
	Name       string
	LastStatus time.Time
}

func NewParticipant(name string, at time.Time) Participant {
	return Participant{Name: name, LastStatus: at}
}

// IsInactive reports whether the last heartbeat is strictly older than threshold at now.
func (p Participant) IsInactive(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastStatus) > threshold
}

// InactivityCutoff is the instant before which a LastStatus is considered stale.
func InactivityCutoff(now time.Time, threshold time.Duration) time.Time {
	return now.Add(-threshold)
}
