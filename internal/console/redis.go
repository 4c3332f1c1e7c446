package console

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamMessage is the JSON document stored in the "message" field of each
// stream entry.
type StreamMessage struct {
	RunID string `json:"run_id"`
	Entry
}

// RedisStream appends every entry to a Redis stream with XADD. A failed write
// is logged once and remembered; later entries are dropped so a dead Redis
// never slows a run down.
type RedisStream struct {
	rdb    *redis.Client
	ctx    context.Context
	stream string
	runID  string

	mu  sync.Mutex
	err error
}

// NewRedisStream creates a sink writing to stream, tagging entries with runID.
func NewRedisStream(ctx context.Context, rdb *redis.Client, stream, runID string) *RedisStream {
	return &RedisStream{rdb: rdb, ctx: ctx, stream: stream, runID: runID}
}

// Emit implements Sink.
func (s *RedisStream) Emit(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}

	data, err := json.Marshal(StreamMessage{RunID: s.runID, Entry: e})
	if err != nil {
		s.err = fmt.Errorf("marshal console entry: %w", err)
		return
	}
	if err := s.rdb.XAdd(s.ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"message": string(data)},
	}).Err(); err != nil {
		s.err = fmt.Errorf("XADD %s: %w", s.stream, err)
		log.Printf("console: %v (further entries dropped)", s.err)
	}
}

// Err returns the first write error, if any.
func (s *RedisStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Tail reads entries from stream starting after lastID ("$" for new entries
// only, "0-0" for the whole stream) and passes each to fn until ctx is done.
func Tail(ctx context.Context, rdb *redis.Client, stream, lastID string, fn func(StreamMessage)) error {
	for {
		streams, err := rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   100,
			Block:   2 * time.Second,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == redis.Nil {
				continue
			}
			return fmt.Errorf("XREAD %s: %w", stream, err)
		}

		for _, st := range streams {
			for _, msg := range st.Messages {
				lastID = msg.ID
				raw, ok := msg.Values["message"].(string)
				if !ok {
					continue
				}
				var sm StreamMessage
				if err := json.Unmarshal([]byte(raw), &sm); err != nil {
					continue
				}
				fn(sm)
			}
		}
	}
}
