package pattern

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/asemenov/mqp/pkg/mqp"
	"github.com/asemenov/mqp/pkg/workerpool"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"user/+/profile", "user/123/profile", true},
		{"user/+/profile", "user/123/456/profile", false},
		{"user/#", "user", true},
		{"user/#", "user/123/profile", true},
		{"+/+/+", "a/b/c", true},
		{"#", "any/topic/here", true},
		{"a/b", "a/c", false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.topic); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.topic, got, c.want)
		}
	}
}

func TestValidateRejectsMisplacedHash(t *testing.T) {
	if err := Validate("a/#/b"); err == nil {
		t.Error("expected error for '#' not in last position")
	}
	if err := Validate(""); err == nil {
		t.Error("expected error for empty pattern")
	}
	if err := Validate("a/+/b"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistryPatternSubscribeMatchesExistingAndFutureTopics(t *testing.T) {
	pool := workerpool.New(4)
	r := New[string](pool)
	defer r.Close(context.Background())

	r.Publish("sensors/kitchen/temp", "20c") // published before the pattern subscriber exists

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	sub, err := r.SubscribePattern("sensors/+/temp", "C", mqp.ConsumerFunc[string, string](func(topic string, v string) {
		mu.Lock()
		got = append(got, topic+"="+v)
		n := len(got)
		mu.Unlock()
		if n == 2 {
			close(done)
		}
	}))
	if err != nil {
		t.Fatalf("SubscribePattern: %v", err)
	}
	defer sub.Unsubscribe()

	r.Publish("sensors/kitchen/temp", "21c")
	r.Publish("sensors/porch/temp", "18c")
	r.Publish("sensors/kitchen/humidity", "ignored") // does not match the pattern

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pattern deliveries")
	}

	mu.Lock()
	defer mu.Unlock()
	want := map[string]bool{"sensors/kitchen/temp=21c": true, "sensors/porch/temp=18c": true}
	if len(got) != 2 || !want[got[0]] || !want[got[1]] {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestRegistryPatternUnsubscribeDetaches(t *testing.T) {
	pool := workerpool.New(4)
	r := New[string](pool)
	defer r.Close(context.Background())

	var mu sync.Mutex
	var count int

	sub, err := r.SubscribePattern("topic/#", "C", mqp.ConsumerFunc[string, string](func(string, string) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	if err != nil {
		t.Fatalf("SubscribePattern: %v", err)
	}

	r.Publish("topic/a", "1")
	time.Sleep(50 * time.Millisecond)
	sub.Unsubscribe()
	r.Publish("topic/a", "2")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", count)
	}
}
