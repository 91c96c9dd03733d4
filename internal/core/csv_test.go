package core

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func TestExportCSVHeaderAndRows(t *testing.T) {
	records := []Expense{
		{Amount: Money{Cents: 1250}, Category: "Food", Description: "lunch", SpentOn: NewDate(2024, 1, 15)},
		{Amount: Money{Cents: 725}, Category: "Food", SpentOn: NewDate(2024, 2, 1)},
	}

	out, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if lines[0] != "Amount,Category,Description,Spent On" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "12.50,Food,lunch,2024-01-15" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	// Missing description renders as an empty field.
	if lines[2] != "7.25,Food,,2024-02-01" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	records := []Expense{
		{Amount: Money{Cents: 1099}, Category: `quoted "cat"`, Description: "has, comma", SpentOn: NewDate(2024, 5, 2)},
		{Amount: Money{Cents: -50}, Category: "multi\nline", Description: "", SpentOn: NewDate(2024, 5, 3)},
		{Amount: Money{Cents: 0}, Category: "plain", Description: "x", SpentOn: NewDate(2023, 11, 30)},
	}

	out, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV failed to parse back: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("expected %d rows, got %d", len(records)+1, len(rows))
	}
	for i, e := range records {
		row := rows[i+1]
		if row[0] != e.Amount.String() {
			t.Fatalf("row %d amount: expected %q, got %q", i, e.Amount.String(), row[0])
		}
		if row[1] != e.Category {
			t.Fatalf("row %d category: expected %q, got %q", i, e.Category, row[1])
		}
		if row[2] != e.Description {
			t.Fatalf("row %d description: expected %q, got %q", i, e.Description, row[2])
		}
		if row[3] != e.SpentOn.String() {
			t.Fatalf("row %d date: expected %q, got %q", i, e.SpentOn.String(), row[3])
		}
	}
}

func TestExportCSVEmpty(t *testing.T) {
	out, err := ExportCSV(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimRight(string(out), "\n") != "Amount,Category,Description,Spent On" {
		t.Fatalf("expected header only, got %q", string(out))
	}
}

func TestExportCSVPreservesOrder(t *testing.T) {
	// The exporter must not re-sort: pass records newest-last on purpose.
	records := []Expense{
		{Amount: Money{Cents: 100}, Category: "a", SpentOn: NewDate(2024, 1, 1)},
		{Amount: Money{Cents: 200}, Category: "b", SpentOn: NewDate(2024, 6, 1)},
	}
	out, err := ExportCSV(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if !strings.HasPrefix(lines[1], "1.00,a") || !strings.HasPrefix(lines[2], "2.00,b") {
		t.Fatalf("order not preserved: %v", lines)
	}
}
