package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// ResultQueue is the Redis list that buffers quiz results awaiting a database write.
type ResultQueue struct {
	rdb *redis.Client
	key string
}

// NewResultQueue creates a queue on the default results list.
func NewResultQueue(rdb *redis.Client) *ResultQueue {
	return &ResultQueue{rdb: rdb, key: config.WorkerKey.PersistQuizResultsQueue}
}

// Enqueue appends res to the tail of the queue.
func (q *ResultQueue) Enqueue(ctx context.Context, res model.QuizResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return q.rdb.RPush(ctx, q.key, raw).Err()
}

// Pop blocks up to timeout for the next result. ok is false when the wait
// timed out with nothing queued.
func (q *ResultQueue) Pop(ctx context.Context, timeout time.Duration) (res model.QuizResult, ok bool, err error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return res, false, nil
		}
		return res, false, err
	}
	if len(item) < 2 {
		return res, false, nil
	}
	if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
		return res, false, fmt.Errorf("decode result: %w", err)
	}
	return res, true, nil
}

// Len returns how many results are waiting.
func (q *ResultQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
