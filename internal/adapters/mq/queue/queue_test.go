package queue

import (
	"context"
	"testing"

	"github.com/hrsignal/attrition/internal/domain/model"
)

func testJob(name string) Job {
	return NewJob([]model.EmployeeRecord{{EmployeeID: 1, EmployeeName: name}})
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	job := testJob("alice")
	if !q.Enqueue(ctx, job) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobChan := q.Dequeue(ctx)
	got := <-jobChan
	if got.ID != job.ID {
		t.Errorf("expected job %s, got %s", job.ID, got.ID)
	}
	if len(got.Records) != 1 || got.Records[0].EmployeeName != "alice" {
		t.Errorf("unexpected job payload: %+v", got.Records)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, testJob("a")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, testJob("b")) {
		t.Error("expected enqueue to succeed")
	}

	// Full queue rejects without blocking.
	if q.Enqueue(ctx, testJob("c")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, testJob("a")) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	if q.Enqueue(ctx, testJob("b")) {
		t.Error("expected enqueue to fail after close")
	}

	// Buffered jobs drain, then the channel closes.
	jobChan := q.Dequeue(ctx)
	if _, ok := <-jobChan; !ok {
		t.Error("expected buffered job before close")
	}
	if _, ok := <-jobChan; ok {
		t.Error("expected channel to be closed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected idempotent close, got %v", err)
	}
}
