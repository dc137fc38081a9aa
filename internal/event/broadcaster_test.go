package event

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	bodies [][]byte
	got    chan struct{}
}

func (r *recordingSink) Publish(_ context.Context, body []byte) error {
	r.mu.Lock()
	r.bodies = append(r.bodies, append([]byte(nil), body...))
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func TestBroadcasterPublishesInEmissionOrder(t *testing.T) {
	sink := &recordingSink{got: make(chan struct{}, 16)}
	b := &Broadcaster{}
	b.startPublishLoop(sink)

	const n = 5
	for i := 1; i <= n; i++ {
		b.Emit(New(TypeOrderUpdated, uint64(i), map[string]int{"seq": i}))
	}
	for i := 0; i < n; i++ {
		select {
		case <-sink.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("publish %d never arrived", i+1)
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.bodies) != n {
		t.Fatalf("published %d events, want %d", len(sink.bodies), n)
	}
	for i, body := range sink.bodies {
		var ev struct {
			EntityID uint64 `json:"entityId"`
		}
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Fatalf("unmarshal event %d: %v", i, err)
		}
		if ev.EntityID != uint64(i+1) {
			t.Errorf("event %d has entityId %d, want %d", i, ev.EntityID, i+1)
		}
	}
}

func TestBroadcasterWithoutSinks(t *testing.T) {
	// no hub, no publisher: Emit must be a safe no-op
	b := NewBroadcaster(nil, nil)
	b.Emit(New(TypeOrderCreated, 1, nil))
}
