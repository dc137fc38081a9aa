package event

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const (
	publishBufferSize = 256
	publishTimeout    = 10 * time.Second
)

// queueSink is the broker side of the broadcaster; *Publisher implements it.
type queueSink interface {
	Publish(ctx context.Context, body []byte) error
}

// Broadcaster is the single emission point the services call after a
// transaction commits.  It marshals the event once and delivers it to both
// sinks: the WebSocket hub (best effort, non-blocking) and the broker queue.
// Queue publishes drain through one long-lived goroutine, so events reach
// the broker in emission order; when the buffer is full the event is dropped
// and logged rather than blocking the request.  Either sink may be absent.
type Broadcaster struct {
	hub   *Hub
	queue chan []byte
}

// NewBroadcaster wires the two sinks together and starts the publish drain
// when a publisher is configured.
func NewBroadcaster(hub *Hub, pub *Publisher) *Broadcaster {
	b := &Broadcaster{hub: hub}
	if pub != nil {
		b.startPublishLoop(pub)
	}
	return b
}

func (b *Broadcaster) startPublishLoop(out queueSink) {
	b.queue = make(chan []byte, publishBufferSize)
	go func() {
		for body := range b.queue {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			// error already logged by the publisher
			_ = out.Publish(ctx, body)
			cancel()
		}
	}()
}

// Emit delivers one event to all configured sinks.
func (b *Broadcaster) Emit(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("event: marshal %s failed: %v", ev.Type, err)
		return
	}
	if b.hub != nil {
		b.hub.Broadcast(body)
	}
	if b.queue != nil {
		select {
		case b.queue <- body:
		default:
			log.Printf("event: publish buffer full, dropping %s", ev.Type)
		}
	}
}
