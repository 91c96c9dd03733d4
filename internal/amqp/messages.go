package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried by expense messages.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// ExpenseEvent is a lightweight notification about one expense record.
// It carries ids only; consumers needing the full record fetch it themselves.
type ExpenseEvent struct {
	ExpenseID int64     `json:"expense_id"`
	AccountID int64     `json:"account_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates an event stamped with the current time.
func NewExpenseEvent(expenseID, accountID int64, action string) *ExpenseEvent {
	return &ExpenseEvent{
		ExpenseID: expenseID,
		AccountID: accountID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
