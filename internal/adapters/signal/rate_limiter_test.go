package signal

import (
	"testing"
	"time"
)

func TestMessageRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewMessageRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatal("first two messages should pass")
	}
	if rl.Allow("c1") {
		t.Fatal("third message inside the window should be blocked")
	}
	if !rl.Allow("c2") {
		t.Fatal("limit must be per connection")
	}

	now = now.Add(11 * time.Second)
	if !rl.Allow("c1") {
		t.Fatal("window should have slid")
	}

	rl.Forget("c1")
	if _, ok := rl.history["c1"]; ok {
		t.Fatal("Forget kept history")
	}
}

func TestMessageRateLimiterDisabled(t *testing.T) {
	rl := NewMessageRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("c1") {
			t.Fatal("disabled limiter blocked")
		}
	}
}
