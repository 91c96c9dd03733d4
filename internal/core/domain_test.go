package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true}, // leap day
		{" 2024-01-15 ", true},
		{"2024-13-01", false},
		{"2024-02-30", false},
		{"15-01-2024", false},
		{"2024/01/15", false},
		{"not-a-date", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.String() != "2024-01-15" && d.String() != "2024-02-29" {
				t.Fatalf("%q parsed to unexpected %q", tc.in, d.String())
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"User@Example.COM", "user@example.com"},
		{"  a@b.c  ", "a@b.c"},
		{"plain@addr.io", "plain@addr.io"},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestDateRangeContains(t *testing.T) {
	d := NewDate(2024, 2, 1)
	cases := []struct {
		r    DateRange
		want bool
	}{
		{DateRange{}, true},
		{DateRange{Start: NewDate(2024, 2, 1)}, true}, // inclusive start
		{DateRange{Start: NewDate(2024, 2, 2)}, false},
		{DateRange{End: NewDate(2024, 2, 1)}, true}, // inclusive end
		{DateRange{End: NewDate(2024, 1, 31)}, false},
		{DateRange{Start: NewDate(2024, 1, 1), End: NewDate(2024, 12, 31)}, true},
	}
	for i, tc := range cases {
		if got := tc.r.Contains(d); got != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{OwnerID: 1, Amount: Money{Cents: 100}, Category: "Food", SpentOn: NewDate(2024, 1, 15)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Empty category and zero amount stay valid; only owner and date are
	// required.
	loose := Expense{OwnerID: 1, SpentOn: NewDate(2024, 1, 15)}
	if err := loose.Validate(); err != nil {
		t.Fatalf("expected ok for permissive fields, got %v", err)
	}

	bads := []Expense{
		{Amount: Money{Cents: 1}, Category: "c", SpentOn: NewDate(2024, 1, 15)}, // no owner
		{OwnerID: 1, Amount: Money{Cents: 1}, Category: "c"},                    // zero date
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
