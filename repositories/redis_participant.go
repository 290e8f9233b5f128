package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// touchScript refreshes a heartbeat only for an existing participant.
var touchScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// evictScript deletes a participant whose heartbeat is older than ARGV[2].
var evictScript = redis.NewScript(`
local last = redis.call('HGET', KEYS[1], ARGV[1])
if not last then
	return 0
end
if tonumber(last) < tonumber(ARGV[2]) then
	redis.call('HDEL', KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// RedisParticipantRepository keeps participants in one hash
// "{prefix}:participants" mapping name to last status in unix milliseconds.
type RedisParticipantRepository struct {
	client *redis.Client
	log    *slog.Logger
	key    string
}

func NewRedisParticipantRepository(client *redis.Client, log *slog.Logger, prefix string) RedisParticipantRepository {
	return RedisParticipantRepository{client: client, log: log, key: prefix + ":participants"}
}

// Create relies on HSETNX, which fails atomically when the name is taken.
func (r RedisParticipantRepository) Create(ctx context.Context, participant domain.Participant) error {
	created, err := r.client.HSetNX(ctx, r.key, participant.Name, participant.LastStatus.UnixMilli()).Result()
	if err != nil {
		return storageErr(err)
	}
	if !created {
		return errors.ErrParticipantAlreadyExists
	}
	return nil
}

func (r RedisParticipantRepository) FindByName(ctx context.Context, name string) (domain.Participant, bool, error) {
	value, err := r.client.HGet(ctx, r.key, name).Result()
	if stderrors.Is(err, redis.Nil) {
		return domain.Participant{}, false, nil
	}
	if err != nil {
		return domain.Participant{}, false, storageErr(err)
	}
	participant, err := toParticipant(name, value)
	if err != nil {
		return domain.Participant{}, false, err
	}
	return participant, true, nil
}

// List returns participants sorted by name, hashes having no order of their own.
func (r RedisParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, storageErr(err)
	}
	var decodeErr error
	participants := lo.MapToSlice(values, func(name string, value string) domain.Participant {
		participant, err := toParticipant(name, value)
		if err != nil && decodeErr == nil {
			decodeErr = err
		}
		return participant
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	slices.SortFunc(participants, func(a, b domain.Participant) int {
		return strings.Compare(a.Name, b.Name)
	})
	return participants, nil
}

func (r RedisParticipantRepository) Touch(ctx context.Context, name string, at time.Time) error {
	updated, err := touchScript.Run(ctx, r.client, []string{r.key}, name, at.UnixMilli()).Int()
	if err != nil {
		return storageErr(err)
	}
	if updated == 0 {
		return errors.ErrParticipantNotFound
	}
	return nil
}

func (r RedisParticipantRepository) DeleteIfInactive(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	// Heartbeats are stored in milliseconds, so the cutoff is rounded up to
	// evict whoever is older than it at full precision.
	ceiled := cutoff.Add(time.Millisecond - time.Nanosecond).UnixMilli()
	deleted, err := evictScript.Run(ctx, r.client, []string{r.key}, name, ceiled).Int()
	if err != nil {
		return false, storageErr(err)
	}
	if deleted == 0 {
		r.log.Debug("Participant not evicted", "name", name)
	}
	return deleted == 1, nil
}

func toParticipant(name, value string) (domain.Participant, error) {
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("decode participant %q: %w", name, err)
	}
	return domain.NewParticipant(name, time.UnixMilli(millis)), nil
}
