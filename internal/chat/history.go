package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"libralink/internal/platform/genai"
)

// RedisHistory keeps each member's recent conversation in a Redis list.
type RedisHistory struct {
	client redis.Cmdable
	max    int
	ttl    time.Duration
}

func NewRedisHistory(client redis.Cmdable, limit int, ttl time.Duration) *RedisHistory {
	return &RedisHistory{client: client, max: limit, ttl: ttl}
}

func historyKey(userID string) string {
	return "chat:history:" + userID
}

func (h *RedisHistory) Load(ctx context.Context, userID string) ([]genai.Message, error) {
	raw, err := h.client.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("loading chat history: %w", err)
	}
	msgs := make([]genai.Message, 0, len(raw))
	for _, item := range raw {
		var m genai.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Append adds msgs, trims the list to the newest max entries and refreshes
// its expiry in one transaction.
func (h *RedisHistory) Append(ctx context.Context, userID string, msgs ...genai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, raw)
	}

	key := historyKey(userID)
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-h.max), -1)
		pipe.Expire(ctx, key, h.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving chat history: %w", err)
	}
	return nil
}

func (h *RedisHistory) Clear(ctx context.Context, userID string) error {
	return h.client.Del(ctx, historyKey(userID)).Err()
}
