package repositories

import (
	"chat-room/domain"
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisMessageRepository appends messages to the list "{prefix}:messages",
// whose order is the insertion order.
type RedisMessageRepository struct {
	client *redis.Client
	log    *slog.Logger
	key    string
}

func NewRedisMessageRepository(client *redis.Client, log *slog.Logger, prefix string) RedisMessageRepository {
	return RedisMessageRepository{client: client, log: log, key: prefix + ":messages"}
}

func (r RedisMessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	data, err := encodeMessage(message)
	if err != nil {
		return err
	}
	return storageErr(r.client.RPush(ctx, r.key, data).Err())
}

func (r RedisMessageRepository) GetMessages(ctx context.Context) ([]domain.Message, error) {
	values, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, storageErr(err)
	}
	messages := make([]domain.Message, 0, len(values))
	for _, value := range values {
		message, err := decodeMessage([]byte(value))
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Trim keeps the keep most recent entries of the list.
func (r RedisMessageRepository) Trim(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	count, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, storageErr(err)
	}
	if count <= int64(keep) {
		return 0, nil
	}
	if err = r.client.LTrim(ctx, r.key, int64(-keep), -1).Err(); err != nil {
		return 0, storageErr(err)
	}
	r.log.Debug("Trimmed messages", "count", count-int64(keep))
	return int(count - int64(keep)), nil
}
