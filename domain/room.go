package domain

import (
	"fmt"
	"time"
)

// RoomVerb is the phrase announcing a room action.
type RoomVerb string

const (
	JoinVerb  RoomVerb = "entra na"
	LeaveVerb RoomVerb = "sai da"
)

// NewStatusEvent builds the broadcast announcing that participant performed verb.
// The caller persists it.
func NewStatusEvent(participant Participant, verb RoomVerb, clock RoomClock, at time.Time) Message {
	return Message{
		From: participant.Name,
		To:   Everyone,
		Text: fmt.Sprintf("%s sala...", verb),
		Type: StatusMessage,
		Time: clock.Format(at),
	}
}
