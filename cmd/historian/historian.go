// cmd/historian/historian.go is an asynchronous service that pops room
// lifecycle records from the Redis queue and persists them to PostgreSQL
// for the admin console's activity feed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/vckeeper/vckeeper/internal/cache"
	"github.com/vckeeper/vckeeper/internal/database"
)

// HistorianService drains the lifecycle queue in batches and enforces the
// retention window on persisted events.
type HistorianService struct {
	redisClient *redis.Client
	queueName   string
	batchSize   int
	flushDelay  time.Duration
	retention   time.Duration

	batchMu  sync.Mutex
	batch    []cache.LifecycleRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	retentionDays := getEnvInt("LIFECYCLE_RETENTION_DAYS", 30)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		queueName:   getEnv("LIFECYCLE_QUEUE_NAME", cache.DefaultQueueName),
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		batch:       make([]cache.LifecycleRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run starts the two main loops:
//  1. A loop that reads from the Redis queue, accumulates records in a
//     batch, and flushes them to the DB.
//  2. A periodic sweep that drops events older than the retention window.
func (hs *HistorianService) Run() {
	database.ConnectDB()
	if err := database.InitSchema(context.Background()); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	go hs.readRedisLoop()
	go hs.retentionLoop()

	log.Println("lifecycle historian started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("lifecycle historian shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve records from the queue.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// On a quiet queue the pop blocks for its full timeout before
			// the select sees the ticker again, so the pop timeout bounds
			// how late a flush can run.
			res, err := hs.redisClient.BLPop(hs.ctx, hs.popTimeout(), hs.queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record cache.LifecycleRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid lifecycle record: %v\n", err)
				continue
			}
			hs.appendToBatch(record)
		}
	}
}

// popTimeout is how long a BLPop on an empty queue may block: one flush
// interval, floored so a tiny HISTORIAN_FLUSH_MS does not hot-poll Redis.
func (hs *HistorianService) popTimeout() time.Duration {
	if hs.flushDelay < 100*time.Millisecond {
		return 100 * time.Millisecond
	}
	return hs.flushDelay
}

// appendToBatch adds a record to the in-memory batch and flushes if the
// threshold is reached.
func (hs *HistorianService) appendToBatch(record cache.LifecycleRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushLocked()
	}
}

func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked()
}

// flushLocked writes the current batch in a single transaction. The caller
// holds batchMu.
func (hs *HistorianService) flushLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]cache.LifecycleRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := beginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertLifecycleEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertLifecycleEventTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush: %v\n", err)
	} else {
		log.Printf("Flushed %d lifecycle events to DB.\n", len(batchCopy))
	}
}

// retentionLoop periodically deletes events past the retention window.
func (hs *HistorianService) retentionLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-hs.retention)
			tag, err := database.DB.Exec(hs.ctx,
				`DELETE FROM lifecycle_events WHERE occurred_at < $1`, cutoff)
			if err != nil {
				log.Printf("retention sweep failed: %v", err)
				continue
			}
			if tag.RowsAffected() > 0 {
				log.Printf("retention sweep removed %d events.", tag.RowsAffected())
			}
		}
	}
}

// insertLifecycleEventTx inserts a single record. The event id is the
// primary key, so a record redelivered by the queue is dropped silently.
func insertLifecycleEventTx(ctx context.Context, tx pgx.Tx, rec cache.LifecycleRecord) error {
	q := `
		INSERT INTO lifecycle_events (
			event_id, event, session_id, channel_id, owner_id, is_locked, is_hidden, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := tx.Exec(ctx, q,
		rec.EventID, rec.Event, rec.SessionID, rec.ChannelID, rec.OwnerID,
		rec.Locked, rec.Hidden, time.UnixMilli(rec.Timestamp),
	)
	return err
}

// beginTxFunc starts a transaction, calls f with it, and commits or rolls
// back as needed.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
