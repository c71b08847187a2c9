package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(1, time.Hour)
	key := "127.0.0.1"
	now := time.Now().UTC()

	limiter.recordFailure(key, now.Add(-2*time.Hour))
	if limiter.blocked(key, now) {
		t.Fatal("expected old attempt to be pruned from active window")
	}

	limiter.recordFailure(key, now.Add(-30*time.Minute))
	if !limiter.blocked(key, now) {
		t.Fatal("expected one recent attempt to hit limit 1")
	}

	limiter.reset(key)
	if limiter.blocked(key, now) {
		t.Fatal("expected no attempts after reset")
	}
}

func TestAttemptLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(2, time.Minute)
	now := time.Now().UTC()

	limiter.recordFailure("10.0.0.1", now)
	limiter.recordFailure("10.0.0.1", now)
	limiter.recordFailure("10.0.0.2", now)

	if !limiter.blocked("10.0.0.1", now) {
		t.Fatal("expected first key to be blocked after two failures")
	}
	if limiter.blocked("10.0.0.2", now) {
		t.Fatal("expected second key to stay below limit")
	}
	if limiter.blocked("10.0.0.1", now.Add(2*time.Minute)) {
		t.Fatal("expected failures to expire after the window")
	}
}
