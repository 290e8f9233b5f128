package domain

import "github.com/samber/lo"

// IsVisibleTo applies the room visibility rule: public messages and room events
// are seen by everyone, private messages only by their sender and recipient.
func (m Message) IsVisibleTo(requester string) bool {
	switch {
	case m.Type == PublicMessage, m.Type == StatusMessage:
		return true
	case m.From == requester, m.To == requester:
		return true
	default:
		return false
	}
}

// VisibleMessages keeps the messages requester may see, in their original order.
// A positive limit keeps only the most recent limit entries.
func VisibleMessages(messages []Message, requester string, limit int) []Message {
	visible := lo.Filter(messages, func(m Message, _ int) bool {
		return m.IsVisibleTo(requester)
	})
	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible
}
