// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vckeeper/vckeeper/internal/voice"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the lifecycle records are pushed to;
// the admin console drains it for its activity feed.
var DefaultQueueName = "vckeeper_lifecycle"

// LifecycleRecord is one lifecycle transition as queued for the console.
type LifecycleRecord struct {
	EventID   uuid.UUID `json:"event_id"`
	Event     string    `json:"event"`
	SessionID int64     `json:"session_id"`
	ChannelID string    `json:"channel_id"`
	OwnerID   string    `json:"owner_id"`
	Locked    bool      `json:"locked"`
	Hidden    bool      `json:"hidden"`
	Timestamp int64     `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment
// variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Publisher queues lifecycle notifications. It implements voice.Notifier;
// a push failure is logged and dropped, the lifecycle never waits on the
// queue.
type Publisher struct {
	queue string
	log   *logrus.Logger
}

func NewPublisher(log *logrus.Logger) *Publisher {
	return &Publisher{
		queue: getEnv("LIFECYCLE_QUEUE_NAME", DefaultQueueName),
		log:   log,
	}
}

func (p *Publisher) NotifySession(ctx context.Context, n voice.Notification) {
	record := LifecycleRecord{
		EventID:   uuid.New(),
		Event:     n.Event,
		SessionID: n.SessionID,
		ChannelID: n.ChannelID,
		OwnerID:   n.OwnerID,
		Locked:    n.Locked,
		Hidden:    n.Hidden,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		p.log.WithError(err).Warn("lifecycle record marshal failed")
		return
	}
	if err := Rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		p.log.WithError(err).WithField("queue", p.queue).Warn("lifecycle record push failed")
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
