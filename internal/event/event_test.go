package event

import (
	"encoding/json"
	"testing"
)

func TestNewMarshalsPayload(t *testing.T) {
	ev := New(TypeBillPaid, 42, map[string]int64{"paid_cents": 10000})
	if ev.Type != TypeBillPaid || ev.EntityID != 42 {
		t.Fatalf("envelope fields: %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Type     string          `json:"type"`
		EntityID uint64          `json:"entityId"`
		Payload  json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "bill.paid" || decoded.EntityID != 42 {
		t.Errorf("decoded envelope: %+v", decoded)
	}
	var payload map[string]int64
	if err := json.Unmarshal(decoded.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["paid_cents"] != 10000 {
		t.Errorf("payload = %v", payload)
	}
}

func TestNewUnmarshalablePayload(t *testing.T) {
	// channels cannot be marshaled; the event must still carry an object
	ev := New(TypeOrderCreated, 1, make(chan int))
	if string(ev.Payload) != `{}` {
		t.Errorf("payload = %s, want {}", ev.Payload)
	}
}
