package amqp

import (
	"testing"
	"time"
)

func TestExpenseEventJSON(t *testing.T) {
	ev := NewExpenseEvent(42, 7, ActionCreated)

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ExpenseEventFromJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExpenseID != 42 || got.AccountID != 7 || got.Action != ActionCreated {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Timestamp.IsZero() || time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("unexpected timestamp: %v", got.Timestamp)
	}
}

func TestExpenseEventFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
