package amqp

import (
	"strings"
	"testing"
)

func TestTransactionEventJSON(t *testing.T) {
	ev := NewTransactionEvent(EventTransactionCreated, "tx1", "u1", "expense", "12.50")
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"event":"transaction.created"`) {
		t.Fatalf("unexpected payload: %s", data)
	}

	got, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TransactionID != "tx1" || got.UserID != "u1" || got.Amount != "12.50" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp missing")
	}
}

func TestTransactionEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
