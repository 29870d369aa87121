package worker

import (
	"context"
	"testing"
)

func TestHostLimiter_New(t *testing.T) {
	limiter := NewHostLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewHostLimiter(10, -1)
	if l2.defaultBurst != 2 {
		t.Errorf("expected default burst 2 for negative input, got %d", l2.defaultBurst)
	}
}

func TestHostLimiter_IndependentHosts(t *testing.T) {
	limiter := NewHostLimiter(0.001, 1)

	if !limiter.Allow("https://a.example.com/x") {
		t.Error("first request to host a should be allowed")
	}
	if limiter.Allow("https://a.example.com/y") {
		t.Error("second immediate request to host a should be limited")
	}
	if !limiter.Allow("https://b.example.com/x") {
		t.Error("request to host b should be unaffected by host a")
	}
}

func TestHostLimiter_Wait_CancelledContext(t *testing.T) {
	limiter := NewHostLimiter(0.001, 1)

	// Drain the bucket, then a cancelled context must fail fast.
	_ = limiter.Allow("https://a.example.com/x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "https://a.example.com/y"); err == nil {
		t.Error("expected error from cancelled context, got nil")
	}
}

func TestHostLimiter_SetHostRate(t *testing.T) {
	limiter := NewHostLimiter(0.001, 1)
	limiter.SetHostRate("fast.example.com", 1000, 10)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("https://fast.example.com/x") {
			t.Fatalf("request %d to overridden host should be allowed", i)
		}
	}

	// Other hosts keep the default budget.
	_ = limiter.Allow("https://slow.example.com/x")
	if limiter.Allow("https://slow.example.com/y") {
		t.Error("default-rate host should be limited after its burst")
	}
}

func TestHostLimiter_MalformedURL(t *testing.T) {
	limiter := NewHostLimiter(10, 2)

	if limiter.Allow("not a url at all ://") {
		t.Error("malformed URL should not be allowed")
	}
	if err := limiter.Wait(context.Background(), "not a url at all ://"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
