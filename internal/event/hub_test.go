package event

import (
	"testing"
	"time"
)

func TestHubFanOutOrdering(t *testing.T) {
	h := NewHub()
	go h.Run()

	c1 := &client{send: make(chan []byte, 8)}
	c2 := &client{send: make(chan []byte, 8)}
	h.register <- c1
	h.register <- c2
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want 2", h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}

	msgs := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, m := range msgs {
		h.Broadcast(m)
	}

	for ci, c := range []*client{c1, c2} {
		for _, want := range msgs {
			select {
			case got := <-c.send:
				if string(got) != string(want) {
					t.Errorf("client %d received %q, want %q", ci+1, got, want)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("client %d never received %q", ci+1, want)
			}
		}
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &client{send: make(chan []byte, 1)}
	h.register <- slow

	// the first fills the client's buffer, the second overflows it
	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("slow client still registered, count = %d", h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
