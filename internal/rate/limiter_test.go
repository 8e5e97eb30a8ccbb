package rate

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAllowConsumesBurstThenLimits(t *testing.T) {
	l := New(Config{PerSecond: 1, Burst: 2})
	l.now = fixedClock(time.Unix(1000, 0))

	for i := 0; i < 2; i++ {
		if err := l.Allow("alice"); err != nil {
			t.Fatalf("attempt %d: expected allowed, got %v", i, err)
		}
	}
	if err := l.Allow("alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.Allow("bob"); err != nil {
		t.Fatalf("expected independent bucket for bob, got %v", err)
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(Config{PerSecond: 1, Burst: 1})
	l.now = func() time.Time { return now }

	if err := l.Allow("alice"); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	if err := l.Allow("alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	now = now.Add(1100 * time.Millisecond)
	if err := l.Allow("alice"); err != nil {
		t.Fatalf("expected refill after one second, got %v", err)
	}
}

func TestResetRestoresFullBucket(t *testing.T) {
	l := New(Config{PerSecond: 0.001, Burst: 1})
	l.now = fixedClock(time.Unix(1000, 0))

	_ = l.Allow("alice")
	if err := l.Allow("alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	l.Reset("alice")
	if err := l.Allow("alice"); err != nil {
		t.Fatalf("expected allowed after reset, got %v", err)
	}
}

func TestEvictsLeastRecentlyUsedKey(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(Config{PerSecond: 0.001, Burst: 1, MaxKeys: 2})
	l.now = func() time.Time { return now }

	_ = l.Allow("a")
	now = now.Add(time.Second)
	_ = l.Allow("b")
	now = now.Add(time.Second)
	_ = l.Allow("c")

	if l.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Len())
	}
	if err := l.Allow("a"); err != nil {
		t.Fatalf("expected evicted key a to start fresh, got %v", err)
	}
	if err := l.Allow("c"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected c still limited, got %v", err)
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	if err := l.Allow("x"); err != nil {
		t.Fatalf("expected nil limiter to allow, got %v", err)
	}
	l.Reset("x")
	if l.Len() != 0 {
		t.Fatal("expected zero length")
	}
}
