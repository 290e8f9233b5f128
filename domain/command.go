package domain

// JoinCommand asks the room to register a display name.
type JoinCommand struct {
	Name string `json:"name" validate:"required"`
}

// PostMessageCommand is a message sent by a participant.
// From comes from the request identity, never from the body.
type PostMessageCommand struct {
	From string      `json:"-"`
	To   string      `json:"to" validate:"required"`
	Text string      `json:"text" validate:"required"`
	Type MessageType `json:"type" validate:"required,oneof=message private_message"`
}

// ListMessagesQuery selects the history seen by Requester.
// Limit <= 0 means no truncation.
type ListMessagesQuery struct {
	Requester string
	Limit     int
}
