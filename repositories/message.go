//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessages(ctx context.Context) ([]domain.Message, error)
	Trim(ctx context.Context, keep int) (int, error)
}

const (
	messagePrefix      = "msg:"
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 100
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

// NewMessageRepository leases a durable sequence used to number messages.
// Close must be called to hand back the unused part of the lease.
func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", storageErr(err))
	}
	return &MessageRepository{db: db, log: log, seq: seq}, nil
}

// StoreMessage persists a message under "msg:{sequence_padded}".
// The 20-digit zero padding keeps lexicographical key order equal to
// insertion order, including for messages sharing the same clock second.
func (m *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	data, err := encodeMessage(message)
	if err != nil {
		return err
	}
	next, err := m.seq.Next()
	if err != nil {
		return storageErr(err)
	}
	key := []byte(fmt.Sprintf("%s%020d", messagePrefix, next))
	return update(ctx, m.db, func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// GetMessages returns the whole history in insertion order.
func (m *MessageRepository) GetMessages(ctx context.Context) ([]domain.Message, error) {
	return ReadMessages(ctx, m.db)
}

// ReadMessages scans the history without leasing a sequence, so it also
// works on a database opened read-only.
func ReadMessages(ctx context.Context, db *badger.DB) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := view(ctx, db, func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				message, err := decodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Trim drops the oldest messages so that at most keep remain.
// keep <= 0 disables trimming.
func (m *MessageRepository) Trim(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	var keys [][]byte
	err := view(ctx, m.db, func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}
	stale := keys[:len(keys)-keep]
	batch := m.db.NewWriteBatch()
	for _, key := range stale {
		if err = batch.Delete(key); err != nil {
			batch.Cancel()
			return 0, storageErr(err)
		}
	}
	if err = batch.Flush(); err != nil {
		return 0, storageErr(err)
	}
	m.log.Debug(fmt.Sprintf("Trimmed %d messages", len(stale)))
	return len(stale), nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}
