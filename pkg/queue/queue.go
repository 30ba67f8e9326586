// Package queue hands pipeline runs to background workers over Redis, the
// same surface the serving layer would otherwise call inline: enqueue a
// payload, poll for the result by task id.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	taskList  = "scribe:tasks"
	resultKey = "scribe:result:"
)

type QueueConfig struct {
	Addr      string
	Password  string
	DB        int
	ResultTTL time.Duration
}

// Handler processes one dequeued payload and returns the result to store.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

type Queue struct {
	config QueueConfig
	client *redis.Client
}

func NewWithConfig(config QueueConfig) (*Queue, error) {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}
	if config.ResultTTL == 0 {
		config.ResultTTL = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{config: config, client: client}, nil
}

type task struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type taskResult struct {
	Status string          `json:"status"` // "done" or "failed"
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Enqueue pushes a payload onto the task list and returns its id.
func (q *Queue) Enqueue(ctx context.Context, payload []byte) (string, error) {
	t := task{ID: uuid.NewString(), Payload: payload}
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, taskList, data).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	return t.ID, nil
}

// Result returns the stored outcome for a task id. The boolean reports
// whether the task has finished; pending tasks return (nil, false, nil).
func (q *Queue) Result(ctx context.Context, taskID string) ([]byte, bool, error) {
	data, err := q.client.Get(ctx, resultKey+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch task result: %w", err)
	}
	return data, true, nil
}

// Work blocks on the task list and runs handler for each dequeued task until
// the context is canceled. Handler failures are recorded in the task result,
// not fatal to the worker.
func (q *Queue) Work(ctx context.Context, handler Handler) error {
	log.Printf("worker listening on %s", taskList)
	for {
		vals, err := q.client.BRPop(ctx, 5*time.Second, taskList).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to dequeue task: %w", err)
		}

		var t task
		if err := json.Unmarshal([]byte(vals[1]), &t); err != nil {
			log.Printf("discarding malformed task: %v", err)
			continue
		}

		res := taskResult{Status: "done"}
		out, err := handler(ctx, t.Payload)
		if err != nil {
			res = taskResult{Status: "failed", Error: err.Error()}
		} else {
			res.Result = out
		}

		data, err := json.Marshal(res)
		if err != nil {
			log.Printf("failed to encode result for task %s: %v", t.ID, err)
			continue
		}
		if err := q.client.Set(ctx, resultKey+t.ID, data, q.config.ResultTTL).Err(); err != nil {
			log.Printf("failed to store result for task %s: %v", t.ID, err)
		}
	}
}

func (q *Queue) Close() {
	if q.client != nil {
		q.client.Close()
	}
}
