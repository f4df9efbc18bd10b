package amqp

import (
	"testing"
)

func TestExpenseEventMessageRoundTrip(t *testing.T) {
	msg := NewExpenseEventMessage(EventExpenseCreated, 42)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	decoded, err := ExpenseEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventMessageFromJSON() error: %v", err)
	}
	if decoded.Event != EventExpenseCreated {
		t.Errorf("Event = %q, want %q", decoded.Event, EventExpenseCreated)
	}
	if decoded.ExpenseID != 42 {
		t.Errorf("ExpenseID = %d, want 42", decoded.ExpenseID)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestExpenseEventMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExpenseEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
