package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNameTaken      = stderrors.New("name already taken")
	ErrNotInRoom      = stderrors.New("not in the room anymore")
	ErrUnexpectedCode = stderrors.New("unexpected response")
)

type Participant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// RoomClient talks to the chat room HTTP API on behalf of one participant.
type RoomClient struct {
	baseURL string
	name    string
	timeout time.Duration
}

func NewRoomClient(baseURL, name string, timeout time.Duration) *RoomClient {
	return &RoomClient{baseURL: strings.TrimRight(baseURL, "/"), name: name, timeout: timeout}
}

func (c *RoomClient) Join() error {
	code, body, err := send(fiber.Post(c.baseURL + "/participants").
		Timeout(c.timeout).
		JSON(map[string]string{"name": c.name}))
	if err != nil {
		return err
	}
	switch code {
	case fiber.StatusCreated:
		return nil
	case fiber.StatusConflict:
		return fmt.Errorf("%q: %w", c.name, ErrNameTaken)
	default:
		return unexpected(code, body)
	}
}

func (c *RoomClient) Heartbeat() error {
	code, body, err := send(fiber.Post(c.baseURL+"/status").
		Timeout(c.timeout).
		Set("user", c.name))
	if err != nil {
		return err
	}
	switch code {
	case fiber.StatusOK:
		return nil
	case fiber.StatusNotFound:
		return ErrNotInRoom
	default:
		return unexpected(code, body)
	}
}

// Post sends text to recipient. An empty recipient or "Todos" makes it public.
func (c *RoomClient) Post(to, text string) error {
	kind := "private_message"
	if to == "" || to == "Todos" {
		to, kind = "Todos", "message"
	}
	code, body, err := send(fiber.Post(c.baseURL+"/messages").
		Timeout(c.timeout).
		Set("user", c.name).
		JSON(map[string]string{"to": to, "text": text, "type": kind}))
	if err != nil {
		return err
	}
	if code != fiber.StatusCreated {
		return unexpected(code, body)
	}
	return nil
}

func (c *RoomClient) Messages(limit int) ([]Message, error) {
	agent := fiber.Get(c.baseURL+"/messages").Timeout(c.timeout).Set("user", c.name)
	if limit > 0 {
		agent = agent.QueryString(fmt.Sprintf("limit=%d", limit))
	}
	var messages []Message
	return messages, fetch(agent, &messages)
}

func (c *RoomClient) Participants() ([]Participant, error) {
	var participants []Participant
	return participants, fetch(fiber.Get(c.baseURL+"/participants").Timeout(c.timeout), &participants)
}

func fetch(agent *fiber.Agent, v any) error {
	code, body, err := send(agent)
	if err != nil {
		return err
	}
	if code != fiber.StatusOK {
		return unexpected(code, body)
	}
	return json.Unmarshal(body, v)
}

func send(agent *fiber.Agent) (int, []byte, error) {
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return code, body, stderrors.Join(errs...)
	}
	return code, body, nil
}

func unexpected(code int, body []byte) error {
	return fmt.Errorf("%w: %d %s", ErrUnexpectedCode, code, strings.TrimSpace(string(body)))
}
