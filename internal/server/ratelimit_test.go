package server

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl := newRateLimiter(5, 10*time.Millisecond)
	for i := 0; i < 50; i++ {
		if !rl.allow(fmt.Sprintf("10.0.0.%d", i)) {
			t.Fatalf("first request from client %d should be allowed", i)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rl.mu.Lock()
		n := len(rl.buckets)
		rl.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%d buckets still held after idle period", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(25 * time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Fatal("request after the window elapsed should be allowed")
	}
}
