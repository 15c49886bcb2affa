package shutdownqueue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddNilTaskIsNoop(t *testing.T) {
	t.Parallel()

	q := New()

	q.Add(nil)

	// Verify that Shutdown runs with no tasks and returns nil.
	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("expected nil after adding nil task; got %v", err)
	}
}

func TestLIFOOrder(t *testing.T) {
	t.Parallel()

	q := New()

	var (
		orderMu sync.Mutex
		order   []int
	)

	makeTask := func(n int) Task {
		return func(ctx context.Context) error {
			orderMu.Lock()

			order = append(order, n)

			orderMu.Unlock()

			return nil
		}
	}

	for i := 1; i <= 3; i++ {
		q.Add(makeTask(i))
	}

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order len mismatch: got %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

func TestPanicRecoveryIncludedAndContinues(t *testing.T) {
	t.Parallel()

	q := New()

	var ranAfterPanic atomic.Bool

	panicTask := func(ctx context.Context) error {
		panic("boom")
	}

	after := func(ctx context.Context) error {
		ranAfterPanic.Store(true)

		return nil
	}

	before := func(ctx context.Context) error { return nil }

	q.Add(before)
	q.Add(panicTask)
	q.Add(after)

	shErr := q.Shutdown(t.Context())
	if shErr == nil {
		t.Fatalf("expected aggregated error with panic; got nil")
	}

	if !strings.Contains(shErr.Error(), "panic in shutdown task: boom") {
		t.Fatalf("expected panic message in error; got: %q", shErr.Error())
	}

	if !ranAfterPanic.Load() {
		t.Fatalf("expected tasks after the panic to still run")
	}
}

func TestAggregatedErrorsAndEarlyCancel(t *testing.T) {
	t.Parallel()

	q := New()

	errA := errors.New("taskA")

	var ranB atomic.Bool

	taskA := func(ctx context.Context) error { return errA }
	taskB := func(ctx context.Context) error {
		ranB.Store(true)

		return nil
	}

	// Gate blocks until ctx is canceled. That ensures cancellation is active
	// before Shutdown proceeds to taskB.
	gateReady := make(chan struct{})
	gate := func(ctx context.Context) error {
		close(gateReady) // signal we've entered the gate
		<-ctx.Done()     // block until the test cancels

		return nil
	}

	q.Add(taskA)
	q.Add(taskB)
	q.Add(gate) // LIFO: gate, B, A

	// Use test-scoped context, wrap with cancel so we control when it ends.
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- q.Shutdown(ctx)
	}()

	// Wait until gate is running, then cancel so Shutdown stops before B.
	<-gateReady
	cancel()

	shErr := <-errCh
	if shErr == nil {
		t.Fatalf("expected error due to context cancel; got nil")
	}
	// Should include context cancellation.
	if !errors.Is(shErr, context.Canceled) {
		t.Fatalf("expected errors.Is(err, context.Canceled); got: %v", shErr)
	}
	// B must not have run; A must not have been reached.
	if ranB.Load() {
		t.Fatalf("expected taskB not to run after cancel")
	}

	if errors.Is(shErr, errA) {
		t.Fatalf("did not expect joined error to include taskA")
	}
}

func TestIdempotentAndRunsOnce(t *testing.T) {
	t.Parallel()

	q := New()

	var count atomic.Int32

	task := func(ctx context.Context) error {
		count.Add(1)

		return nil
	}

	q.Add(task)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := q.Shutdown(ctx)
	if err != nil {
		t.Fatalf("Shutdown #1 error: %v", err)
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count=1 after first shutdown; got %d", got)
	}

	err = q.Shutdown(ctx)
	if err != nil {
		t.Fatalf("Shutdown #2 expected nil; got %v", err)
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count to remain 1; got %d", got)
	}
}

func TestAddDuringShutdownIsIgnored(t *testing.T) {
	t.Parallel()

	q := New()

	started := make(chan struct{})
	unblock := make(chan struct{})
	blocker := func(ctx context.Context) error {
		close(started)
		<-unblock

		return nil
	}

	// Register a no-op then blocker; LIFO: blocker, noop.
	q.Add(func(ctx context.Context) error { return nil })
	q.Add(blocker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	go func() {
		_ = q.Shutdown(ctx)

		close(done)
	}()

	<-started

	var ran bool
	q.Add(func(ctx context.Context) error {
		ran = true
		return nil
	})

	close(unblock)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Shutdown did not finish")
	}

	// Ensure the task added after shutdown start did not run.
	if ran {
		t.Fatalf("task added after shutdown should not run")
	}
}

func TestTaskErrorsAreJoinedAndDetectable(t *testing.T) {
	t.Parallel()

	q := New()

	err1 := errors.New("alpha")
	err2 := errors.New("beta")

	q.Add(func(ctx context.Context) error { return err1 })
	q.Add(func(ctx context.Context) error { return err2 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	shErr := q.Shutdown(ctx)
	if shErr == nil {
		t.Fatalf("expected joined error; got nil")
	}

	if !errors.Is(shErr, err1) || !errors.Is(shErr, err2) {
		t.Fatalf("expected joined error to contain both; got: %v", shErr)
	}

	s := shErr.Error()
	if !strings.Contains(s, "alpha") || !strings.Contains(s, "beta") {
		t.Fatalf("expected combined error string to include both messages; got: %q", s)
	}
}

func TestShutdownWithNoTasksIsNil(t *testing.T) {
	t.Parallel()

	q := New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := q.Shutdown(ctx)
	if err != nil {
		t.Fatalf("expected nil when no tasks; got %v", err)
	}

	err = q.Shutdown(ctx)
	if err != nil {
		t.Fatalf("expected nil on repeated shutdown with no tasks; got %v", err)
	}
}

func TestNamedTaskErrorIsPrefixed(t *testing.T) {
	t.Parallel()

	q := New()
	errDB := errors.New("close pool")

	q.AddNamed("postgres", func(ctx context.Context) error { return errDB })
	q.Add(func(ctx context.Context) error { return nil })

	if q.Len() != 2 {
		t.Fatalf("expected 2 pending tasks; got %d", q.Len())
	}

	shErr := q.Shutdown(t.Context())
	if !errors.Is(shErr, errDB) {
		t.Fatalf("expected wrapped task error; got %v", shErr)
	}

	if !strings.Contains(shErr.Error(), "postgres: close pool") {
		t.Fatalf("expected name prefix; got %q", shErr.Error())
	}

	if q.Len() != 0 {
		t.Fatalf("expected queue drained; got %d", q.Len())
	}
}
