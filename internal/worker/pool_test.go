package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"neobridge/internal/worker"
)

func TestSubmitRunsTask(t *testing.T) {
	pool := worker.NewPool(2, nil)
	defer pool.Close()

	var ran atomic.Bool
	if err := pool.Submit(context.Background(), func() { ran.Store(true) }).Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if !ran.Load() {
		t.Fatal("expected task to run")
	}
}

func TestNewPoolDefaultsSize(t *testing.T) {
	pool := worker.NewPool(0, nil)
	defer pool.Close()
	if pool.Size() != worker.DefaultSize {
		t.Fatalf("Size() = %d, want %d", pool.Size(), worker.DefaultSize)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	pool := worker.NewPool(1, nil)
	defer pool.Close()

	err := pool.Submit(context.Background(), func() { panic("boom") }).Wait()
	if !errors.Is(err, worker.ErrPanicked) {
		t.Fatalf("expected ErrPanicked, got %v", err)
	}

	// The slot must be released after a panic.
	if err := pool.Submit(context.Background(), func() {}).Wait(); err != nil {
		t.Fatalf("follow-up task failed: %v", err)
	}
}

func TestSubmitAfterCloseFails(t *testing.T) {
	pool := worker.NewPool(1, nil)
	pool.Close()

	var ran atomic.Bool
	task := pool.Submit(context.Background(), func() { ran.Store(true) })
	if err := task.Wait(); !errors.Is(err, worker.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if ran.Load() {
		t.Fatal("task ran on a closed pool")
	}
}

func TestSubmitHonoursContextWhileSaturated(t *testing.T) {
	pool := worker.NewPool(1, nil)
	defer pool.Close()

	release := make(chan struct{})
	blocker := pool.Submit(context.Background(), func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {}).Wait()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	close(release)
	if err := blocker.Wait(); err != nil {
		t.Fatalf("blocker failed: %v", err)
	}
}

func TestTasksRunConcurrently(t *testing.T) {
	const n = 8
	pool := worker.NewPool(n, nil)
	defer pool.Close()

	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	tasks := make([]*worker.Task, n)
	for i := range tasks {
		tasks[i] = pool.Submit(context.Background(), func() {
			started.Done()
			<-release
		})
	}

	waitOrFail(t, &started, time.Second)
	close(release)
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			t.Fatalf("task failed: %v", err)
		}
	}
}

func TestCloseWaitsForInFlight(t *testing.T) {
	pool := worker.NewPool(1, nil)

	var finished atomic.Bool
	started := make(chan struct{})
	pool.Submit(context.Background(), func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	<-started
	pool.Close()
	if !finished.Load() {
		t.Fatal("Close returned before the in-flight task finished")
	}
}

func TestDoneChannelCloses(t *testing.T) {
	pool := worker.NewPool(1, nil)
	defer pool.Close()

	task := pool.Submit(context.Background(), func() {})
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not complete")
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for tasks to start")
	}
}
