package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL         string        `envconfig:"CHAT_SERVER_URL" default:"http://localhost:5000"`
	Name              string        `envconfig:"CHAT_NAME" required:"true"`
	HeartbeatInterval time.Duration `envconfig:"CHAT_HEARTBEAT_INTERVAL" default:"5s"`
	PollInterval      time.Duration `envconfig:"CHAT_POLL_INTERVAL" default:"3s"`
	RequestTimeout    time.Duration `envconfig:"CHAT_REQUEST_TIMEOUT" default:"5s"`
	HistoryLimit      int           `envconfig:"CHAT_HISTORY_LIMIT" default:"100"`
	Colours           bool          `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	color.Enable = config.Colours

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Join the room
	client := NewRoomClient(config.ServerURL, config.Name, config.RequestTimeout)
	if err := client.Join(); err != nil {
		return exitRuntime, err
	}
	color.Green.Printf(">>> Joined %s as %s (Ctrl+C to quit, /help for commands)\n", config.ServerURL, config.Name)

	// 3. Keep the participant alive and display new messages
	go heartbeat(ctx, client, config.HeartbeatInterval, log, stop)
	go poll(ctx, client, config.PollInterval, config.HistoryLimit, log)

	// 4. Read commands from stdin until EOF or a signal
	lines := make(chan string)
	go readLines(os.Stdin, lines)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nBye.")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if err := handle(client, line, os.Stdout); err != nil {
				color.Red.Printf("! %v\n", err)
			}
		}
	}
}

func heartbeat(ctx context.Context, client *RoomClient, interval time.Duration, log *slog.Logger, stop context.CancelFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := client.Heartbeat()
			if stderrors.Is(err, ErrNotInRoom) {
				color.Red.Println("! You were removed from the room for inactivity")
				stop()
				return
			}
			if err != nil {
				log.Warn("Heartbeat failed", "err", err)
			}
		}
	}
}

func poll(ctx context.Context, client *RoomClient, interval time.Duration, limit int, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	seen := make(map[string]struct{})
	for {
		messages, err := client.Messages(limit)
		if err != nil {
			log.Warn("Polling failed", "err", err)
		}
		for _, message := range messages {
			if _, ok := seen[message.ID]; ok {
				continue
			}
			seen[message.ID] = struct{}{}
			fmt.Println(render(message, client.name))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// handle runs one line typed by the user.
// "/to Bob hi" sends a private message, "/who" lists participants, anything else is public.
func handle(client *RoomClient, line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case line == "/help":
		fmt.Fprintln(out, "/to <name> <text>  private message\n/who               participants\n<text>             public message")
		return nil
	case line == "/who":
		participants, err := client.Participants()
		if err != nil {
			return err
		}
		renderParticipants(out, participants, time.Now())
		return nil
	case strings.HasPrefix(line, "/to "):
		fields := strings.SplitN(strings.TrimPrefix(line, "/to "), " ", 2)
		if len(fields) != 2 || strings.TrimSpace(fields[1]) == "" {
			return fmt.Errorf("usage: /to <name> <text>")
		}
		return client.Post(fields[0], strings.TrimSpace(fields[1]))
	default:
		return client.Post("", line)
	}
}

func render(message Message, me string) string {
	switch message.Type {
	case "status":
		return color.Gray.Sprintf("(%s) %s %s", message.Time, message.From, message.Text)
	case "private_message":
		if message.To == me {
			return color.Magenta.Sprintf("(%s) %s whispers: %s", message.Time, message.From, message.Text)
		}
		return color.Magenta.Sprintf("(%s) you whisper to %s: %s", message.Time, message.To, message.Text)
	default:
		return fmt.Sprintf("(%s) %s: %s", message.Time, color.Cyan.Sprint(message.From), message.Text)
	}
}

func renderParticipants(out io.Writer, participants []Participant, now time.Time) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "Last seen"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(participants, func(p Participant, _ int) []string {
		ago := now.Sub(time.UnixMilli(p.LastStatus)).Truncate(time.Second)
		return []string{p.Name, fmt.Sprintf("%s ago", ago)}
	}))
	table.Render()
}
