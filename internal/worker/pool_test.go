package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// jobFunc adapts a closure to the Job interface.
type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }

// testResult is the minimal Result carrier for pool tests.
type testResult struct {
	err error
}

func (r testResult) GetError() error { return r.err }

func okJob(counter *int32) jobFunc {
	return func(ctx context.Context) Result {
		if counter != nil {
			atomic.AddInt32(counter, 1)
		}
		return testResult{}
	}
}

func TestNewPool_ClampsWorkerCount(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"positive", 5, 5},
		{"zero", 0, 1},
		{"negative", -3, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPool(context.Background(), tc.in)
			if p.workers != tc.want {
				t.Errorf("NewPool(%d): workers = %d, want %d", tc.in, p.workers, tc.want)
			}
		})
	}
}

func TestPool_DeliversEveryResult(t *testing.T) {
	pool := NewPool(context.Background(), 3)
	pool.Start()

	var answered int32
	const questions = 12

	for i := 0; i < questions; i++ {
		pool.Submit(okJob(&answered))
	}

	results := pool.Wait()

	if len(results) != questions {
		t.Errorf("got %d results, want %d", len(results), questions)
	}
	if got := atomic.LoadInt32(&answered); got != questions {
		t.Errorf("executed %d jobs, want %d", got, questions)
	}
}

func TestPool_RespectsWorkerBound(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var inFlight, peak int32
	const questions = 24

	for i := 0; i < questions; i++ {
		pool.Submit(jobFunc(func(ctx context.Context) Result {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				seen := atomic.LoadInt32(&peak)
				if cur <= seen || atomic.CompareAndSwapInt32(&peak, seen, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return testResult{}
		}))
	}

	results := pool.Wait()

	if len(results) != questions {
		t.Fatalf("got %d results, want %d", len(results), questions)
	}
	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("%d jobs ran at once, worker bound is %d", p, workers)
	}
}

func TestPool_CarriesJobErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	wantErr := errors.New("search unavailable")
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		return testResult{err: wantErr}
	}))
	pool.Submit(okJob(nil))
	pool.Submit(okJob(nil))

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	failed := 0
	for _, res := range results {
		if err := res.GetError(); err != nil {
			failed++
			if !errors.Is(err, wantErr) {
				t.Errorf("unexpected job error: %v", err)
			}
		}
	}
	if failed != 1 {
		t.Errorf("%d results carry errors, want 1", failed)
	}
}

func TestPool_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 2)
	pool.Start()

	started := make(chan struct{})
	var once sync.Once

	for i := 0; i < 6; i++ {
		pool.Submit(jobFunc(func(ctx context.Context) Result {
			once.Do(func() { close(started) })
			select {
			case <-time.After(50 * time.Millisecond):
			case <-ctx.Done():
			}
			return testResult{err: ctx.Err()}
		}))
	}

	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool kept running after parent context cancel")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	// A late submission is dropped, not queued and not blocked on.
	done := make(chan struct{})
	go func() {
		pool.Submit(okJob(nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPool_ShutdownClosesResults(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		close(started)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
		}
		return testResult{err: ctx.Err()}
	}))

	<-started
	pool.Shutdown()

	drained := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(1 * time.Second):
		t.Fatal("results channel still open after Shutdown")
	}
}
