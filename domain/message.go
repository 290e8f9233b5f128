// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	PublicMessage  MessageType = "message"
	PrivateMessage MessageType = "private_message"
	StatusMessage  MessageType = "status"
)

// Everyone is the recipient of broadcast room events.
const Everyone = "Todos"

// ClockLayout renders the room-local wall clock as HH:MM:SS.
const ClockLayout = "15:04:05"

// Message represents an immutable chat entry.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Type MessageType
	Time string
}

// Clock returns the current instant. Services receive it so tests can freeze time.
type Clock func() time.Time

// RoomClock formats instants in the room's time zone.
type RoomClock struct {
	Now      Clock
	Location *time.Location
}

func NewRoomClock(now Clock, location *time.Location) RoomClock {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return RoomClock{Now: now, Location: location}
}

func (c RoomClock) Format(at time.Time) string {
	return at.In(c.Location).Format(ClockLayout)
}

// IsClientType tells whether clients are allowed to post this type.
// Status messages are only produced by the room itself.
func (t MessageType) IsClientType() bool {
	return t == PublicMessage || t == PrivateMessage
}
