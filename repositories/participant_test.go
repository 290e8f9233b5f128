package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParticipantRepository_Badger(t *testing.T) {
	runParticipantRepositoryContract(t, func(t *testing.T) IParticipantRepository {
		return NewParticipantRepository(openBadger(t), slog.Default())
	})
}

func TestParticipantRepository_Badger_Concurrent_Create_Same_Name(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openBadger(t), slog.Default())
	ctx := context.Background()

	// Given many joins racing for the same name
	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repository.Create(ctx, domain.NewParticipant("Alice", time.Now()))
		}()
	}
	wg.Wait()
	close(results)

	// Then exactly one of them wins
	created := 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		req.ErrorIs(err, errors.ErrParticipantAlreadyExists)
	}
	req.Equal(1, created)

	participants, err := repository.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
}

func TestParticipantRepository_Badger_Closed_Store_Is_Unavailable(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository := NewParticipantRepository(db, slog.Default())
	req.NoError(db.Close())

	_, err = repository.List(context.Background())

	req.ErrorIs(err, errors.ErrStorageUnavailable)
}

// runParticipantRepositoryContract checks the behaviour every backend must share.
func runParticipantRepositoryContract(t *testing.T, newRepository func(t *testing.T) IParticipantRepository) {
	ctx := context.Background()
	now := time.UnixMilli(time.Now().UnixMilli())

	t.Run("create then find", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)

		req.NoError(repository.Create(ctx, domain.NewParticipant("Alice", now)))

		participant, found, err := repository.FindByName(ctx, "Alice")
		req.NoError(err)
		req.True(found)
		req.Equal("Alice", participant.Name)
		req.True(now.Equal(participant.LastStatus))
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		req.NoError(repository.Create(ctx, domain.NewParticipant("Alice", now)))

		err := repository.Create(ctx, domain.NewParticipant("Alice", now.Add(time.Second)))

		req.ErrorIs(err, errors.ErrParticipantAlreadyExists)
		participant, _, err := repository.FindByName(ctx, "Alice")
		req.NoError(err)
		req.True(now.Equal(participant.LastStatus))
	})

	t.Run("unknown name is absent, not an error", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)

		_, found, err := repository.FindByName(ctx, "Ghost")

		req.NoError(err)
		req.False(found)
	})

	t.Run("list returns every participant", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)

		participants, err := repository.List(ctx)
		req.NoError(err)
		req.Empty(participants)

		for _, name := range []string{"Alice", "Bob", "Clara"} {
			req.NoError(repository.Create(ctx, domain.NewParticipant(name, now)))
		}

		participants, err = repository.List(ctx)
		req.NoError(err)
		req.ElementsMatch([]string{"Alice", "Bob", "Clara"}, names(participants))
	})

	t.Run("touch refreshes last status", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		req.NoError(repository.Create(ctx, domain.NewParticipant("Alice", now)))
		later := now.Add(5 * time.Second)

		req.NoError(repository.Touch(ctx, "Alice", later))

		participant, _, err := repository.FindByName(ctx, "Alice")
		req.NoError(err)
		req.True(later.Equal(participant.LastStatus))
	})

	t.Run("touch unknown participant creates nothing", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)

		err := repository.Touch(ctx, "Ghost", now)

		req.ErrorIs(err, errors.ErrParticipantNotFound)
		_, found, err := repository.FindByName(ctx, "Ghost")
		req.NoError(err)
		req.False(found)
	})

	t.Run("delete if inactive", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		req.NoError(repository.Create(ctx, domain.NewParticipant("Stale", now.Add(-time.Minute))))
		req.NoError(repository.Create(ctx, domain.NewParticipant("Fresh", now)))
		cutoff := now.Add(-10 * time.Second)

		deleted, err := repository.DeleteIfInactive(ctx, "Stale", cutoff)
		req.NoError(err)
		req.True(deleted)

		deleted, err = repository.DeleteIfInactive(ctx, "Fresh", cutoff)
		req.NoError(err)
		req.False(deleted)

		deleted, err = repository.DeleteIfInactive(ctx, "Ghost", cutoff)
		req.NoError(err)
		req.False(deleted)

		participants, err := repository.List(ctx)
		req.NoError(err)
		req.Equal([]string{"Fresh"}, names(participants))
	})
}

func names(participants []domain.Participant) []string {
	result := make([]string, 0, len(participants))
	for _, p := range participants {
		result = append(result, p.Name)
	}
	return result
}
