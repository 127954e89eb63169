package services

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestTaskTypeNotify_Constant(t *testing.T) {
	if TaskTypeNotify != "notify:deliver" {
		t.Errorf("TaskTypeNotify = %q, expected %q", TaskTypeNotify, "notify:deliver")
	}
}

func TestNotifyTask_Structure(t *testing.T) {
	task := NotifyTask{
		Kind:        NotifyKindInvited,
		RecipientID: 7,
		ProjectID:   3,
		InviteType:  "manage",
	}

	if task.Kind != NotifyKindInvited {
		t.Errorf("Kind = %q, expected %q", task.Kind, NotifyKindInvited)
	}
	if task.RecipientID != 7 {
		t.Errorf("RecipientID = %d, expected 7", task.RecipientID)
	}
	if task.ProjectID != 3 {
		t.Errorf("ProjectID = %d, expected 3", task.ProjectID)
	}
	if task.InviteType != "manage" {
		t.Errorf("InviteType = %q, expected %q", task.InviteType, "manage")
	}
	if task.PostID != 0 {
		t.Errorf("PostID = %d, expected 0", task.PostID)
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &NotifyTask{Kind: NotifyKindNewPost, ProjectID: 1, PostID: 2}

	if err := queue.Enqueue(task); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_ProcessesEnqueuedTasks(t *testing.T) {
	queue := NewSyncQueue()

	var processed int32
	queue.SetProcessor(func(ctx context.Context, task *NotifyTask) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	if err := queue.Enqueue(&NotifyTask{Kind: NotifyKindInvited, RecipientID: 1, ProjectID: 1}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := queue.Enqueue(&NotifyTask{Kind: NotifyKindNewPost, ProjectID: 1, PostID: 1}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// Close waits for in-flight tasks.
	if err := queue.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := atomic.LoadInt32(&processed); got != 2 {
		t.Errorf("processed = %d, expected 2", got)
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
