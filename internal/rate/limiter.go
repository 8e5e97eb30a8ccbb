package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds the number of tracked keys.
const DefaultMaxKeys = 1024

// Config holds limiter tuning parameters.
type Config struct {
	PerSecond float64
	Burst     int
	MaxKeys   int
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	maxKeys  int
	limiters map[string]*keyLimiter
	now      func() time.Time
}

// New creates a [Limiter]. Non-positive Burst is treated as 1.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultMaxKeys
	}
	return &Limiter{
		limit:    rate.Limit(cfg.PerSecond),
		burst:    cfg.Burst,
		maxKeys:  cfg.MaxKeys,
		limiters: make(map[string]*keyLimiter),
		now:      time.Now,
	}
}

// Allow consumes one token for key, or returns [ErrRateLimited].
// A nil Limiter allows everything.
func (l *Limiter) Allow(key string) error {
	if l == nil {
		return nil
	}
	kl := l.get(key)
	if !kl.limiter.AllowN(l.now(), 1) {
		return ErrRateLimited
	}
	return nil
}

// Reset forgets key so its next attempt starts with a full bucket.
func (l *Limiter) Reset(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *Limiter) get(key string) *keyLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if kl, ok := l.limiters[key]; ok {
		kl.lastAccess = now
		return kl
	}

	if len(l.limiters) >= l.maxKeys {
		l.evictOldest()
	}
	kl := &keyLimiter{
		limiter:    rate.NewLimiter(l.limit, l.burst),
		lastAccess: now,
	}
	l.limiters[key] = kl
	return kl
}

// evictOldest drops the least recently used key. Caller holds mu.
func (l *Limiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, kl := range l.limiters {
		if !found || kl.lastAccess.Before(oldest) {
			oldestKey, oldest, found = k, kl.lastAccess, true
		}
	}
	if found {
		delete(l.limiters, oldestKey)
	}
}
