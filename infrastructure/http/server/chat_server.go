package server

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/observability"
	"chat-room/services"
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/lo"
)

// UserHeader carries the claimed identity of the caller.
const UserHeader = "user"

const unknownSenderBody = "Sender is not in the room."

type ParticipantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type MessageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type ChatServer struct {
	participantService services.IParticipantService
	messageService     services.IMessageService
	monitoring         *observability.MonitoringManager
	log                *slog.Logger
}

func NewChatServer(
	participantService services.IParticipantService,
	messageService services.IMessageService,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *ChatServer {
	return &ChatServer{
		participantService: participantService,
		messageService:     messageService,
		monitoring:         monitoring,
		log:                log,
	}
}

// App builds the fiber application with every route of the room.
func (s *ChatServer) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestLogger(s.log))
	app.Use(cors.New())

	app.Post("/participants", s.join)
	app.Get("/participants", s.listParticipants)
	app.Post("/messages", s.postMessage)
	app.Get("/messages", s.listMessages)
	app.Post("/status", s.heartbeat)
	app.Get("/health", s.health)
	return app
}

func (s *ChatServer) join(c *fiber.Ctx) error {
	var cmd domain.JoinCommand
	if err := c.BodyParser(&cmd); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if _, err := s.participantService.Join(c.UserContext(), cmd); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (s *ChatServer) listParticipants(c *fiber.Ctx) error {
	participants, err := s.participantService.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toParticipantResponses(participants))
}

func (s *ChatServer) postMessage(c *fiber.Ctx) error {
	var cmd domain.PostMessageCommand
	if err := c.BodyParser(&cmd); err != nil {
		return errors.NewValidationError(err.Error())
	}
	cmd.From = c.Get(UserHeader)
	if _, err := s.messageService.Post(c.UserContext(), cmd); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (s *ChatServer) listMessages(c *fiber.Ctx) error {
	messages, err := s.messageService.List(c.UserContext(), domain.ListMessagesQuery{
		Requester: c.Get(UserHeader),
		Limit:     parseLimit(c.Query("limit")),
	})
	if err != nil {
		return err
	}
	return c.JSON(toMessageResponses(messages))
}

func (s *ChatServer) heartbeat(c *fiber.Ctx) error {
	if err := s.participantService.Heartbeat(c.UserContext(), c.Get(UserHeader)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *ChatServer) health(c *fiber.Ctx) error {
	return c.JSON(s.monitoring.GetLatest())
}

// parseLimit is lenient: anything that is not an integer means no limit.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// errorHandler is the single place where domain errors become HTTP statuses.
func (s *ChatServer) errorHandler(c *fiber.Ctx, err error) error {
	var validationErr *errors.ValidationError
	var fiberErr *fiber.Error
	switch {
	case stderrors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(validationErr.Details)
	case stderrors.Is(err, errors.ErrUnknownSender):
		return c.Status(fiber.StatusUnprocessableEntity).SendString(unknownSenderBody)
	case stderrors.Is(err, errors.ErrParticipantAlreadyExists):
		return c.SendStatus(fiber.StatusConflict)
	case stderrors.Is(err, errors.ErrParticipantNotFound):
		return c.SendStatus(fiber.StatusNotFound)
	case stderrors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).SendString(fiberErr.Message)
	default:
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet, guess the final status from the error
			var fiberErr *fiber.Error
			if stderrors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		log.Debug("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"user", c.Get(UserHeader),
			"status", status,
			"latency", time.Since(start),
			"err", err,
		)
		return err
	}
}

func toParticipantResponses(participants []domain.Participant) []ParticipantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) ParticipantResponse {
		return ParticipantResponse{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()}
	})
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:   m.ID.String(),
			From: m.From,
			To:   m.To,
			Text: m.Text,
			Type: string(m.Type),
			Time: m.Time,
		}
	})
}
