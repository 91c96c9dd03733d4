package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted form for user-supplied dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day without a time component, always UTC.
	Date struct {
		time.Time
	}

	// Account is an authenticated identity owning zero or more expenses.
	// Accounts are created once at registration and never updated.
	Account struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Expense is a single dated monetary outflow. OwnerID is immutable after
	// creation; CreatedAt is assigned server-side.
	Expense struct {
		ID          int64
		OwnerID     int64
		Amount      Money
		Category    string
		Description string
		SpentOn     Date
		CreatedAt   time.Time
	}

	// DateRange carries optional inclusive bounds for listings. A zero bound
	// means unbounded on that side.
	DateRange struct {
		Start Date
		End   Date
	}
)

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day, the default for omitted spent-on
// dates at creation.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// YearMonth returns the "YYYY-MM" grouping key for monthly aggregation.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// NormalizeEmail trims surrounding whitespace and lowercases, the canonical
// form under which email uniqueness is enforced.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Contains reports whether a day falls inside the range (bounds inclusive).
func (r DateRange) Contains(d Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start.Time) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End.Time) {
		return false
	}
	return true
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Validate checks the invariants the service must establish before a write.
// Category and description are deliberately unchecked: both are stored as
// provided.
func (e Expense) Validate() error {
	if e.OwnerID == 0 {
		return fmt.Errorf("%w: missing owner", ErrValidation)
	}
	if e.SpentOn.IsZero() {
		return fmt.Errorf("%w: spent-on date is required", ErrValidation)
	}
	return nil
}
