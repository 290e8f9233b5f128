package server

import (
	"chat-room/domain"
	"chat-room/mocks"
	"chat-room/moderation"
	"chat-room/observability"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type room struct {
	app     *fiber.App
	sweeper *workers.InactivitySweeper
	now     *time.Time
}

func newRoom(t *testing.T) room {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	participants := repositories.NewParticipantRepository(db, log)
	messages, err := repositories.NewMessageRepository(db, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	now := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	clock := domain.NewRoomClock(func() time.Time { return now }, time.UTC)
	monitoring := observability.NewMonitoringManager(log)
	moderator, err := moderation.NewModerator(nil, '*', log)
	require.NoError(t, err)

	chat := NewChatServer(
		services.NewParticipantService(participants, messages, clock, monitoring, log),
		services.NewMessageService(participants, messages, moderator, clock, monitoring, log),
		monitoring,
		log,
	)
	sweeper := workers.NewInactivitySweeper(participants, messages, clock, monitoring, log, 15*time.Second, 10*time.Second, nil)
	return room{app: chat.App(), sweeper: sweeper, now: &now}
}

func (r room) do(t *testing.T, method, target, user, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := r.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func (r room) participants(t *testing.T) []ParticipantResponse {
	status, body := r.do(t, http.MethodGet, "/participants", "", "")
	require.Equal(t, http.StatusOK, status)
	var participants []ParticipantResponse
	require.NoError(t, json.Unmarshal([]byte(body), &participants))
	return participants
}

func (r room) messages(t *testing.T, user, query string) []MessageResponse {
	status, body := r.do(t, http.MethodGet, "/messages"+query, user, "")
	require.Equal(t, http.StatusOK, status)
	var messages []MessageResponse
	require.NoError(t, json.Unmarshal([]byte(body), &messages))
	return messages
}

func TestChatServer_Join_Twice_Conflicts(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, _ := r.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, status)

	status, _ = r.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusConflict, status)

	participants := r.participants(t)
	req.Len(participants, 1)
	req.Equal("Alice", participants[0].Name)
	req.Equal(r.now.UnixMilli(), participants[0].LastStatus)
}

func TestChatServer_Join_Announces_Participant(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, _ := r.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, status)

	messages := r.messages(t, "Zoe", "")
	req.Len(messages, 1)
	req.Equal("Alice", messages[0].From)
	req.Equal("Todos", messages[0].To)
	req.Equal("status", messages[0].Type)
	req.Equal("entra na sala...", messages[0].Text)
	req.Equal("14:00:00", messages[0].Time)
	req.NotEmpty(messages[0].ID)
}

func TestChatServer_Join_Invalid_Name(t *testing.T) {
	tests := []struct {
		description string
		body        string
	}{
		{"Empty name", `{"name":""}`},
		{"Null name", `{"name":null}`},
		{"Missing name", `{}`},
		{"Not JSON", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			r := newRoom(t)

			status, body := r.do(t, http.MethodPost, "/participants", "", tt.body)

			req.Equal(http.StatusUnprocessableEntity, status)
			var details []string
			req.NoError(json.Unmarshal([]byte(body), &details))
			req.NotEmpty(details)
			req.Empty(r.participants(t))
			req.Empty(r.messages(t, "Alice", ""))
		})
	}
}

func TestChatServer_Post_Message_Validation_Accumulates(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, body := r.do(t, http.MethodPost, "/messages", "Alice", `{"type":"status"}`)

	req.Equal(http.StatusUnprocessableEntity, status)
	var details []string
	req.NoError(json.Unmarshal([]byte(body), &details))
	req.Len(details, 3)
}

func TestChatServer_Post_Message_Unknown_Sender(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, body := r.do(t, http.MethodPost, "/messages", "Ghost", `{"to":"Todos","text":"boo","type":"message"}`)

	req.Equal(http.StatusUnprocessableEntity, status)
	req.Equal("Sender is not in the room.", body)
}

func TestChatServer_Heartbeat(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, _ := r.do(t, http.MethodPost, "/status", "Ghost", "")
	req.Equal(http.StatusNotFound, status)
	req.Empty(r.participants(t))

	status, _ = r.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, status)
	*r.now = r.now.Add(5 * time.Second)

	status, _ = r.do(t, http.MethodPost, "/status", "Alice", "")
	req.Equal(http.StatusOK, status)
	req.Equal(r.now.UnixMilli(), r.participants(t)[0].LastStatus)
}

func TestChatServer_Private_Messages_And_Limit(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	for _, name := range []string{"A", "B", "C"} {
		status, _ := r.do(t, http.MethodPost, "/participants", "", fmt.Sprintf(`{"name":%q}`, name))
		req.Equal(http.StatusCreated, status)
	}
	status, _ := r.do(t, http.MethodPost, "/messages", "A", `{"to":"B","text":"secret","type":"private_message"}`)
	req.Equal(http.StatusCreated, status)
	status, _ = r.do(t, http.MethodPost, "/messages", "A", `{"to":"Todos","text":"hello","type":"message"}`)
	req.Equal(http.StatusCreated, status)

	texts := func(messages []MessageResponse) []string {
		return lo.Map(messages, func(m MessageResponse, _ int) string { return m.Text })
	}
	// Three join events, then the private and the public messages
	req.Contains(texts(r.messages(t, "A", "")), "secret")
	req.Contains(texts(r.messages(t, "B", "")), "secret")
	req.NotContains(texts(r.messages(t, "C", "")), "secret")
	req.Len(r.messages(t, "C", ""), 4)

	req.Equal([]string{"secret", "hello"}, texts(r.messages(t, "B", "?limit=2")))
	req.Len(r.messages(t, "B", "?limit=abc"), 5)
	req.Len(r.messages(t, "B", "?limit=0"), 5)
}

func TestChatServer_Bob_Survives_Early_Sweep(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	// Given Bob joined and posted
	status, _ := r.do(t, http.MethodPost, "/participants", "", `{"name":"Bob"}`)
	req.Equal(http.StatusCreated, status)
	status, _ = r.do(t, http.MethodPost, "/messages", "Bob", `{"to":"Todos","text":"oi","type":"message"}`)
	req.Equal(http.StatusCreated, status)

	// When a sweep runs before the threshold elapses
	*r.now = r.now.Add(3 * time.Second)
	_, err := r.sweeper.Sweep(context.Background())
	req.NoError(err)

	// Then Bob is still listed
	participants := r.participants(t)
	req.Len(participants, 1)
	req.Equal("Bob", participants[0].Name)

	// And once he is silent for too long he leaves the room
	*r.now = r.now.Add(time.Minute)
	_, err = r.sweeper.Sweep(context.Background())
	req.NoError(err)
	req.Empty(r.participants(t))
	messages := r.messages(t, "Alice", "?limit=1")
	req.Equal("sai da sala...", messages[0].Text)
	req.Equal("Bob", messages[0].From)
}

func TestChatServer_Empty_Lists_Are_Arrays(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	_, body := r.do(t, http.MethodGet, "/participants", "", "")
	req.Equal("[]", body)
	_, body = r.do(t, http.MethodGet, "/messages", "Alice", "")
	req.Equal("[]", body)
}

func TestChatServer_Storage_Failure_Is_500(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	participantService := mocks.NewMockIParticipantService(ctrl)
	messageService := mocks.NewMockIMessageService(ctrl)
	app := NewChatServer(participantService, messageService, observability.NewMonitoringManager(log), log).App()

	participantService.EXPECT().List(gomock.Any()).Return(nil, fmt.Errorf("connection refused"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/participants", nil))
	req.NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)

	req.Equal(http.StatusInternalServerError, resp.StatusCode)
	req.Equal("connection refused", string(body))
}

func TestChatServer_Panic_Is_Recovered(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	participantService := mocks.NewMockIParticipantService(ctrl)
	messageService := mocks.NewMockIMessageService(ctrl)
	app := NewChatServer(participantService, messageService, observability.NewMonitoringManager(log), log).App()

	messageService.EXPECT().List(gomock.Any(), domain.ListMessagesQuery{Requester: "Alice", Limit: 3}).
		DoAndReturn(func(context.Context, domain.ListMessagesQuery) ([]domain.Message, error) {
			panic("boom")
		})

	httpReq := httptest.NewRequest(http.MethodGet, "/messages?limit=3", nil)
	httpReq.Header.Set(UserHeader, "Alice")
	resp, err := app.Test(httpReq)
	req.NoError(err)
	req.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func TestChatServer_Health(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	status, _ := r.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, status)

	status, body := r.do(t, http.MethodGet, "/health", "", "")
	req.Equal(http.StatusOK, status)
	var stats observability.MonitoringStats
	req.NoError(json.Unmarshal([]byte(body), &stats))
	req.Equal(uint64(1), stats.Joins)
}
