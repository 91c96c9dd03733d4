package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// csvHeader is the fixed first row of every export.
var csvHeader = []string{"Amount", "Category", "Description", "Spent On"}

// ExportCSV serializes records to UTF-8 CSV in the order given. Callers pass
// already-ordered, owner-filtered records; the exporter neither re-sorts nor
// re-filters. Amounts render as exact decimal strings, dates as YYYY-MM-DD,
// and fields containing delimiters, quotes or newlines are quoted per
// RFC 4180 by encoding/csv.
func ExportCSV(records []Expense) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range records {
		row := []string{
			e.Amount.String(),
			e.Category,
			e.Description,
			e.SpentOn.String(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
