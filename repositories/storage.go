package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// maxConflictRetries bounds the replays of a badger transaction that lost
// a serializable conflict against a concurrent writer.
const maxConflictRetries = 3

type participantRecord struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageRecord struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// update runs fn in a read-write transaction. A transaction aborted by
// badger.ErrConflict is replayed, so fn observes the winner's write.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return storageErr(err)
		}
	}
	return storageErr(err)
}

func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return storageErr(db.View(fn))
}

// storageErr flags failures meaning the backend itself is gone, so callers
// can tell them apart from per-record errors.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var opErr *net.OpError
	switch {
	case stderrors.Is(err, badger.ErrDBClosed),
		stderrors.Is(err, redis.ErrClosed),
		stderrors.As(err, &opErr):
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	default:
		return err
	}
}

func encodeParticipant(p domain.Participant) ([]byte, error) {
	return json.Marshal(participantRecord{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()})
}

func decodeParticipant(data []byte) (domain.Participant, error) {
	var record participantRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Participant{}, fmt.Errorf("decode participant: %w", err)
	}
	return domain.Participant{Name: record.Name, LastStatus: time.UnixMilli(record.LastStatus)}, nil
}

func encodeMessage(m domain.Message) ([]byte, error) {
	return json.Marshal(messageRecord{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.Time,
	})
}

func decodeMessage(data []byte) (domain.Message, error) {
	var record messageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Message{}, fmt.Errorf("decode message: %w", err)
	}
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message id %q: %w", record.ID, err)
	}
	return domain.Message{
		ID:   id,
		From: record.From,
		To:   record.To,
		Text: record.Text,
		Type: domain.MessageType(record.Type),
		Time: record.Time,
	}, nil
}
