package main

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", "./data/chat-room", "Path to badger DB")
	what := flag.String("show", "all", "participants, messages or all")
	limit := flag.Int("limit", 0, "Only the last N messages (0 = all)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	ctx := context.Background()
	if *what == "all" || *what == "participants" {
		participants, err := repositories.NewParticipantRepository(db, logs.GetLoggerFromLevel(slog.LevelError)).List(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nParticipants (%d)\n", len(participants))
		renderParticipants(os.Stdout, participants, time.Now())
	}
	if *what == "all" || *what == "messages" {
		messages, err := repositories.ReadMessages(ctx, db)
		if err != nil {
			log.Fatal(err)
		}
		if *limit > 0 && len(messages) > *limit {
			messages = messages[len(messages)-*limit:]
		}
		fmt.Printf("\nMessages (%d)\n", len(messages))
		renderMessages(os.Stdout, messages)
	}
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderParticipants(out io.Writer, participants []domain.Participant, now time.Time) {
	table := newTable(out, "Name", "Last status", "Idle")
	table.AppendBulk(lo.Map(participants, func(p domain.Participant, _ int) []string {
		return []string{
			p.Name,
			p.LastStatus.Format(time.RFC3339),
			now.Sub(p.LastStatus).Truncate(time.Second).String(),
		}
	}))
	table.Render()
}

func renderMessages(out io.Writer, messages []domain.Message) {
	table := newTable(out, "Time", "Type", "From", "To", "Text", "ID")
	table.AppendBulk(lo.Map(messages, func(m domain.Message, _ int) []string {
		// First 8 characters of the id are enough to tell entries apart
		id := m.ID.String()
		if len(id) > 8 {
			id = id[:8]
		}
		return []string{m.Time, string(m.Type), m.From, m.To, m.Text, id}
	}))
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A store that was not closed cleanly needs a writable open to truncate its log
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
