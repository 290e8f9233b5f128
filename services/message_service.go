//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/moderation"
	"chat-room/observability"
	"chat-room/repositories"
	"chat-room/validation"
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type IMessageService interface {
	Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	List(ctx context.Context, query domain.ListMessagesQuery) ([]domain.Message, error)
}

type MessageService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	moderator    moderation.Moderator
	clock        domain.RoomClock
	monitoring   *observability.MonitoringManager
	log          *slog.Logger
}

func NewMessageService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	moderator moderation.Moderator,
	clock domain.RoomClock,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *MessageService {
	return &MessageService{
		participants: participants,
		messages:     messages,
		moderator:    moderator,
		clock:        clock,
		monitoring:   monitoring,
		log:          log,
	}
}

// Post stores a client message. The sender must be in the room when posting,
// the recipient does not have to be.
func (s *MessageService) Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	if err := validation.ValidatePostMessage(cmd); err != nil {
		return domain.Message{}, err
	}
	_, found, err := s.participants.FindByName(ctx, cmd.From)
	if err != nil {
		return domain.Message{}, err
	}
	if !found {
		return domain.Message{}, errors.ErrUnknownSender
	}

	text, censored := s.moderator.Censor(cmd.Text)
	if len(censored) > 0 {
		s.log.Info("Message censored", "from", cmd.From, "words", len(censored))
	}

	message := domain.Message{
		ID:   uuid.New(),
		From: cmd.From,
		To:   cmd.To,
		Text: text,
		Type: cmd.Type,
		Time: s.clock.Format(s.clock.Now()),
	}
	if err := s.messages.StoreMessage(ctx, message); err != nil {
		return domain.Message{}, err
	}
	s.monitoring.IncrMessagesPosted()
	return message, nil
}

// List returns the history visible to the requester, oldest first.
func (s *MessageService) List(ctx context.Context, query domain.ListMessagesQuery) ([]domain.Message, error) {
	messages, err := s.messages.GetMessages(ctx)
	if err != nil {
		return nil, err
	}
	return domain.VisibleMessages(messages, query.Requester, query.Limit), nil
}
