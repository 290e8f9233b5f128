//go:generate go run go.uber.org/mock/mockgen -source=participant_service.go -destination=../mocks/mock_participant_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/observability"
	"chat-room/repositories"
	"chat-room/validation"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type IParticipantService interface {
	Join(ctx context.Context, cmd domain.JoinCommand) (domain.Participant, error)
	List(ctx context.Context) ([]domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	FindByName(ctx context.Context, name string) (domain.Participant, bool, error)
}

type ParticipantService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        domain.RoomClock
	monitoring   *observability.MonitoringManager
	log          *slog.Logger
}

func NewParticipantService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock domain.RoomClock,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		messages:     messages,
		clock:        clock,
		monitoring:   monitoring,
		log:          log,
	}
}

// Join registers the name then announces it to the room.
// The participant stays registered even if the announcement cannot be stored.
func (s *ParticipantService) Join(ctx context.Context, cmd domain.JoinCommand) (domain.Participant, error) {
	if err := validation.ValidateJoin(cmd); err != nil {
		return domain.Participant{}, err
	}
	now := s.clock.Now()
	participant := domain.NewParticipant(cmd.Name, now)
	if err := s.participants.Create(ctx, participant); err != nil {
		if stderrors.Is(err, errors.ErrParticipantAlreadyExists) {
			s.monitoring.IncrJoinConflicts()
		}
		return domain.Participant{}, err
	}
	s.monitoring.IncrJoins()

	event := domain.NewStatusEvent(participant, domain.JoinVerb, s.clock, now)
	event.ID = uuid.New()
	if err := s.messages.StoreMessage(ctx, event); err != nil {
		return participant, fmt.Errorf("announce %q: %w", participant.Name, err)
	}
	s.log.Debug("Participant joined", "name", participant.Name)
	return participant, nil
}

func (s *ParticipantService) List(ctx context.Context) ([]domain.Participant, error) {
	return s.participants.List(ctx)
}

func (s *ParticipantService) Heartbeat(ctx context.Context, name string) error {
	if err := s.participants.Touch(ctx, name, s.clock.Now()); err != nil {
		return err
	}
	s.monitoring.IncrHeartbeats()
	return nil
}

func (s *ParticipantService) FindByName(ctx context.Context, name string) (domain.Participant, bool, error) {
	return s.participants.FindByName(ctx, name)
}
