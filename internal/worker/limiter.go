package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rations outbound requests per host. Each host gets its
// own token bucket, so a throttled agency site never starves requests
// against other hosts.
type HostLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewHostLimiter builds a limiter handing every new host the given
// requests-per-second budget. Burst values below one are clamped to a
// small allowance so the first request never blocks.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 2
	}

	return &HostLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the host named in rawURL has a token available or
// ctx is cancelled.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostFor(rawURL)
	if err != nil {
		return err
	}
	return l.limiterFor(host).Wait(ctx)
}

// Allow reports whether a request to rawURL may proceed right now,
// consuming a token when it may. Malformed URLs are denied.
func (l *HostLimiter) Allow(rawURL string) bool {
	host, err := hostFor(rawURL)
	if err != nil {
		return false
	}
	return l.limiterFor(host).Allow()
}

// SetHostRate pins a host to its own budget, used when a site declares
// a crawl delay. Setting the rate a host already has keeps the existing
// bucket, so accumulated pacing state is not reset.
func (l *HostLimiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.defaultBurst
	}
	limit := rate.Limit(requestsPerSecond)

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.limiters[host]; ok && existing.Limit() == limit && existing.Burst() == burst {
		return
	}
	l.limiters[host] = rate.NewLimiter(limit, burst)
}

// limiterFor returns the host's bucket, creating it under the write
// lock on first sight. The re-check after upgrading the lock keeps two
// racing creators from replacing each other's bucket.
func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter
	return limiter
}

func hostFor(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
