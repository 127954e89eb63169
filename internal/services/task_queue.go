package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/collabdesk/backend/internal/config"
	"github.com/collabdesk/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeNotify = "notify:deliver"
)

// Notification kinds carried by NotifyTask.
const (
	NotifyKindInvited = "invited"
	NotifyKindNewPost = "new_post"
)

// NotifyTask represents a queued notification delivery.
type NotifyTask struct {
	Kind        string `json:"kind"` // invited, new_post
	RecipientID uint   `json:"recipient_id,omitempty"`
	ProjectID   uint   `json:"project_id"`
	InviteType  string `json:"invite_type,omitempty"`
	PostID      uint   `json:"post_id,omitempty"`
}

// TaskQueue defines the interface for notification dispatch
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *NotifyTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a notification task to the async queue
func (q *AsyncQueue) Enqueue(task *NotifyTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	_, err = q.client.Enqueue(asynq.NewTask(TaskTypeNotify, payload), asynq.MaxRetry(3))
	return err
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error { return q.client.Close() }

// SyncQueue implements TaskQueue without Redis: tasks run on a background
// goroutine so enqueueing never blocks the request, but there is no retry
// and no persistence.
type SyncQueue struct {
	processor func(context.Context, *NotifyTask) error
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that handles tasks
func (q *SyncQueue) SetProcessor(processor func(context.Context, *NotifyTask) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *NotifyTask) error {
	if q.processor == nil {
		logger.Warnf("[TaskQueue] No processor set, dropping %s task", task.Kind)
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.processor(context.Background(), task); err != nil {
			logger.Errorf("[TaskQueue] Task processing failed: %v", err)
		}
	}()
	return nil
}

func (q *SyncQueue) IsAsync() bool { return false }

func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
