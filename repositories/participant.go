//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IParticipantRepository interface {
	Create(ctx context.Context, participant domain.Participant) error
	FindByName(ctx context.Context, name string) (domain.Participant, bool, error)
	List(ctx context.Context) ([]domain.Participant, error)
	Touch(ctx context.Context, name string, at time.Time) error
	DeleteIfInactive(ctx context.Context, name string, cutoff time.Time) (bool, error)
}

const participantPrefix = "participant:"

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) ParticipantRepository {
	return ParticipantRepository{db: db, log: log}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Create inserts the participant under "participant:{name}".
// The existence check and the write share one transaction: two concurrent
// joins with the same name cannot both commit, the loser is replayed and
// gets ErrParticipantAlreadyExists.
func (r ParticipantRepository) Create(ctx context.Context, participant domain.Participant) error {
	data, err := encodeParticipant(participant)
	if err != nil {
		return err
	}
	key := participantKey(participant.Name)
	return update(ctx, r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrParticipantAlreadyExists
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
}

func (r ParticipantRepository) FindByName(ctx context.Context, name string) (domain.Participant, bool, error) {
	var participant domain.Participant
	found := false
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(name))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			participant, err = decodeParticipant(val)
			found = err == nil
			return err
		})
	})
	if err != nil {
		return domain.Participant{}, false, err
	}
	return participant, found, nil
}

// List scans every participant in key order.
func (r ParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	participants := make([]domain.Participant, 0)
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				participant, err := decodeParticipant(val)
				if err != nil {
					return err
				}
				participants = append(participants, participant)
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
	return participants, nil
}

func (r ParticipantRepository) Touch(ctx context.Context, name string, at time.Time) error {
	key := participantKey(name)
	data, err := encodeParticipant(domain.NewParticipant(name, at))
	if err != nil {
		return err
	}
	return update(ctx, r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrParticipantNotFound
		}
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// DeleteIfInactive removes the participant only when its LastStatus is still
// before cutoff, so a heartbeat landing after the sweeper's scan wins.
// It reports whether a record was removed.
func (r ParticipantRepository) DeleteIfInactive(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	key := participantKey(name)
	var deleted bool
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		deleted = false
		item, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var participant domain.Participant
		err = item.Value(func(val []byte) error {
			participant, err = decodeParticipant(val)
			return err
		})
		if err != nil {
			return err
		}
		if !participant.LastStatus.Before(cutoff) {
			r.log.Debug("Participant refreshed since scan, keeping it", "name", name)
			return nil
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
